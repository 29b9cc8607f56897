package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"vacuum_bridge/internal/capability"
	"vacuum_bridge/internal/logger"
)

var testCreds = capability.Credentials{Username: "user@example.com", Password: "secret"}

func TestDirectoryService_Discover(t *testing.T) {
	t.Parallel()

	cloud := &cloudStub{devices: []capability.CloudDevice{
		{ID: "1", Model: "roborock.vacuum.a15", LocalIP: "192.168.68.2", Token: "aa"},
		{ID: "2", Model: "yeelink.light.ceiling", LocalIP: "192.168.68.3", Token: "bb"},
		{ID: "3", Model: "roborock.vacuum.m1s", LocalIP: "", Token: ""},
		{ID: "4", Model: "roborock.vacuum.s5", LocalIP: "192.168.68.21", Token: "cc"},
		{ID: "", Model: "roborock.vacuum.s6", LocalIP: "192.168.68.22", Token: "dd"},
	}}
	dialer := &dialerStub{failFor: map[string]bool{"192.168.68.21": true}}
	d := NewDirectoryService(cloud, dialer, testCreds, "roborock.vacuum", logger.Nop())

	got := d.Discover(context.Background())
	if len(got) != 3 {
		t.Fatalf("expected 3 vacuums, got %d: %+v", len(got), got)
	}

	type row struct {
		ip, id     string
		controlled bool
	}
	var rows []row
	for _, v := range got {
		rows = append(rows, row{ip: v.IP, id: v.DeviceID, controlled: v.Control != nil})
	}
	want := []row{
		{ip: "192.168.68.2", id: "1", controlled: true},
		{ip: "unknown", id: "3", controlled: false},
		{ip: "192.168.68.21", id: "4", controlled: false},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("got %+v\nwant %+v", rows, want)
	}
	if !reflect.DeepEqual(dialer.dialed, []string{"192.168.68.2", "192.168.68.21"}) {
		t.Fatalf("only devices with tokens should be dialed, dialed=%v", dialer.dialed)
	}
}

func TestDirectoryService_Discover_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		cloud *cloudStub
		creds capability.Credentials
	}{
		{name: "missing credentials", cloud: &cloudStub{}, creds: capability.Credentials{Username: "u"}},
		{name: "login failure", cloud: &cloudStub{loginErr: capability.ErrAuth}, creds: testCreds},
		{name: "list failure", cloud: &cloudStub{listErr: errors.New("503")}, creds: testCreds},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d := NewDirectoryService(tc.cloud, &dialerStub{}, tc.creds, "roborock.vacuum", logger.Nop())
			if got := d.Discover(context.Background()); len(got) != 0 {
				t.Fatalf("expected empty result, got %+v", got)
			}
		})
	}
}

func TestVacuum_Label(t *testing.T) {
	t.Parallel()

	v := Vacuum{IP: "10.0.0.5", Model: "roborock.vacuum.a15"}
	if got := v.Label(); got != "10.0.0.5 (roborock.vacuum.a15)" {
		t.Fatalf("Label() = %q", got)
	}
}
