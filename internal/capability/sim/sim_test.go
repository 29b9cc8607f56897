package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"vacuum_bridge/internal/capability"
	"vacuum_bridge/internal/config"
	"vacuum_bridge/internal/logger"
	"vacuum_bridge/internal/models"
)

var creds = capability.Credentials{Username: "u", Password: "p"}

func newTestWorld() *World {
	return New(config.SimulationConfig{
		SessionTTL:       time.Hour,
		CleaningDuration: 10 * time.Minute,
		InitialAlarm:     "DISARMED",
		Devices: []config.SimulatedVacuum{
			{ID: "1", Model: "roborock.vacuum.a15", LocalIP: "192.168.68.2", Token: "aa"},
			{ID: "2", Model: "roborock.vacuum.m1s"},
		},
	}, logger.Nop())
}

func statusOf(t *testing.T, w *World, s capability.Session) string {
	t.Helper()
	st, err := w.AlarmClient().CurrentArmState(context.Background(), s)
	if err != nil {
		t.Fatalf("CurrentArmState: %v", err)
	}
	data := st.Raw["data"].(map[string]any)
	inst := data["installation"].(map[string]any)
	arm := inst["armState"].(map[string]any)
	return arm["statusType"].(string)
}

func TestAlarm_StateAndSessions(t *testing.T) {
	t.Parallel()

	w := newTestWorld()
	alarm := w.AlarmClient()
	ctx := context.Background()

	if _, err := alarm.Login(ctx, capability.Credentials{}, "Home"); !errors.Is(err, capability.ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}

	sess, err := alarm.Login(ctx, creds, "Home")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Installation() != "Home" {
		t.Fatalf("installation = %q", sess.Installation())
	}
	if got := statusOf(t, w, sess); got != "DISARMED" {
		t.Fatalf("initial status = %q", got)
	}

	if err := w.SetAlarmState(models.AlarmArmedAway); err != nil {
		t.Fatalf("SetAlarmState: %v", err)
	}
	if got := statusOf(t, w, sess); got != "ARMED_AWAY" {
		t.Fatalf("status = %q", got)
	}
	if err := w.SetAlarmState(models.AlarmUnknown); err == nil {
		t.Fatalf("expected error for UNKNOWN")
	}

	w.ExpireSessions()
	if _, err := alarm.CurrentArmState(ctx, sess); !errors.Is(err, capability.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestAlarm_SessionTTL(t *testing.T) {
	t.Parallel()

	w := newTestWorld()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	sess, _ := w.AlarmClient().Login(context.Background(), creds, "Home")
	now = now.Add(time.Hour)
	if _, err := w.AlarmClient().CurrentArmState(context.Background(), sess); !errors.Is(err, capability.ErrSessionExpired) {
		t.Fatalf("expected expiry after TTL, got %v", err)
	}
}

func TestCloud_ListDevices(t *testing.T) {
	t.Parallel()

	w := newTestWorld()
	cloud := w.CloudClient()
	sess, err := cloud.Login(context.Background(), creds)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	devs, err := cloud.ListDevices(context.Background(), sess)
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if len(devs) != 2 || devs[0].Token != "aa" || devs[1].LocalIP != "" {
		t.Fatalf("unexpected inventory %+v", devs)
	}
}

func TestDevice_CleaningCycle(t *testing.T) {
	t.Parallel()

	w := newTestWorld()
	ctx := context.Background()

	if _, err := w.Dialer().Dial("192.168.68.2", "wrong"); !errors.Is(err, capability.ErrDevice) {
		t.Fatalf("expected token rejection, got %v", err)
	}
	if _, err := w.Dialer().Dial("10.9.9.9", "aa"); !errors.Is(err, capability.ErrTransport) {
		t.Fatalf("expected unknown host error, got %v", err)
	}

	ctrl, err := w.Dialer().Dial("192.168.68.2", "aa")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if err := ctrl.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if st, _ := ctrl.Status(ctx); !st.IsRunning {
		t.Fatalf("expected running after start")
	}

	_ = ctrl.Pause(ctx)
	w.Advance(time.Hour)
	if st, _ := ctrl.Status(ctx); !st.IsPaused || st.IsRunning {
		t.Fatalf("paused device must not progress, got %+v", st)
	}

	_ = ctrl.Start(ctx)
	w.Advance(9 * time.Minute)
	if w.Phase("1") != PhaseCleaning {
		t.Fatalf("phase = %s, want CLEANING", w.Phase("1"))
	}
	w.Advance(time.Minute)
	if w.Phase("1") != PhaseReturning {
		t.Fatalf("phase = %s, want RETURNING", w.Phase("1"))
	}
	w.Advance(time.Second)
	if st, _ := ctrl.Status(ctx); st.IsRunning || st.IsPaused {
		t.Fatalf("expected idle after docking, got %+v", st)
	}
}

func TestDevice_HomeDocks(t *testing.T) {
	t.Parallel()

	w := newTestWorld()
	ctrl, _ := w.Dialer().Dial("192.168.68.2", "aa")
	_ = ctrl.Start(context.Background())
	_ = ctrl.Home(context.Background())
	if w.Phase("1") != PhaseReturning {
		t.Fatalf("phase = %s, want RETURNING", w.Phase("1"))
	}
	w.Advance(time.Second)
	if w.Phase("1") != PhaseDocked {
		t.Fatalf("phase = %s, want DOCKED", w.Phase("1"))
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	w := newTestWorld()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
