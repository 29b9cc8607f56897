package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"vacuum_bridge/internal/capability"
	"vacuum_bridge/internal/models"
)

// controllerStub is a scripted capability.DeviceController. Status answers are
// consumed in order; the last one repeats.
type controllerStub struct {
	mu       sync.Mutex
	calls    []string
	startErr error
	homeErr  error
	pauseErr error
	panicOn  string
	statuses []capability.DeviceStatus
	statErr  error
	polls    int
}

func (c *controllerStub) record(call string) {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()
	if c.panicOn == call {
		panic("adapter blew up")
	}
}

func (c *controllerStub) Start(context.Context) error { c.record("start"); return c.startErr }
func (c *controllerStub) Stop(context.Context) error  { c.record("stop"); return nil }
func (c *controllerStub) Pause(context.Context) error { c.record("pause"); return c.pauseErr }
func (c *controllerStub) Home(context.Context) error  { c.record("home"); return c.homeErr }

func (c *controllerStub) Status(context.Context) (capability.DeviceStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.polls++
	if c.statErr != nil {
		return capability.DeviceStatus{}, c.statErr
	}
	if len(c.statuses) == 0 {
		return capability.DeviceStatus{IsRunning: true}, nil
	}
	i := c.polls - 1
	if i >= len(c.statuses) {
		i = len(c.statuses) - 1
	}
	return c.statuses[i], nil
}

func (c *controllerStub) pollCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.polls
}

func (c *controllerStub) callList() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// directoryStub returns a fixed fleet.
type directoryStub struct {
	vacuums []Vacuum
}

func (d *directoryStub) Discover(context.Context) []Vacuum {
	return d.vacuums
}

// launcherStub records launched monitors.
type launcherStub struct {
	mu       sync.Mutex
	launched []string
}

func (l *launcherStub) Launch(v Vacuum) {
	l.mu.Lock()
	l.launched = append(l.launched, v.DeviceID)
	l.mu.Unlock()
}

// journalStub captures recorded events.
type journalStub struct {
	mu     sync.Mutex
	events []models.FleetEvent
}

func (j *journalStub) Record(_ context.Context, e models.FleetEvent) {
	j.mu.Lock()
	j.events = append(j.events, e)
	j.mu.Unlock()
}

func (j *journalStub) types() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, 0, len(j.events))
	for _, e := range j.events {
		out = append(out, e.Type)
	}
	return out
}

// fleetStub records the commands the watcher issues.
type fleetStub struct {
	applied []ApplyParams
	err     error
}

func (f *fleetStub) Apply(_ context.Context, p ApplyParams) ([]string, error) {
	f.applied = append(f.applied, p)
	return []string{"ok"}, f.err
}

type sessionStub struct{ installation string }

func (s sessionStub) Installation() string { return s.installation }

// alarmStub is a scripted capability.AlarmClient. Each CurrentArmState call
// consumes the next answer.
type alarmStub struct {
	mu        sync.Mutex
	loginErrs []error
	answers   []alarmAnswer
	logins    int
	reads     int
}

type alarmAnswer struct {
	state capability.ArmState
	err   error
}

func (a *alarmStub) Login(_ context.Context, _ capability.Credentials, installation string) (capability.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logins++
	if n := a.logins - 1; n < len(a.loginErrs) && a.loginErrs[n] != nil {
		return nil, a.loginErrs[n]
	}
	return sessionStub{installation: installation}, nil
}

func (a *alarmStub) CurrentArmState(context.Context, capability.Session) (capability.ArmState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reads++
	if a.reads > len(a.answers) {
		return capability.ArmState{}, errors.New("no scripted answer")
	}
	ans := a.answers[a.reads-1]
	return ans.state, ans.err
}

func (a *alarmStub) readsSafe() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reads
}

func status(s string) alarmAnswer {
	return alarmAnswer{state: capability.ArmState{Status: s}}
}

// cloudStub is a scripted capability.CloudClient.
type cloudStub struct {
	loginErr error
	listErr  error
	devices  []capability.CloudDevice
}

func (c *cloudStub) Login(context.Context, capability.Credentials) (capability.CloudSession, error) {
	if c.loginErr != nil {
		return nil, c.loginErr
	}
	return struct{}{}, nil
}

func (c *cloudStub) ListDevices(context.Context, capability.CloudSession) ([]capability.CloudDevice, error) {
	return c.devices, c.listErr
}

// dialerStub hands out controllerStubs, failing for the listed ips.
type dialerStub struct {
	failFor map[string]bool
	dialed  []string
}

func (d *dialerStub) Dial(ip, token string) (capability.DeviceController, error) {
	d.dialed = append(d.dialed, ip)
	if d.failFor[ip] {
		return nil, errors.New("dial refused")
	}
	return &controllerStub{}, nil
}

type proberStub struct{ up map[string]bool }

func (p proberStub) Reachable(_ context.Context, ip string) bool { return p.up[ip] }

// barrierProber reports a host up only when every expected ping is in flight
// at once; a lone ping gives up after wait and reports the host down.
type barrierProber struct {
	mu      sync.Mutex
	pending int
	all     chan struct{}
	wait    time.Duration
}

func newBarrierProber(n int, wait time.Duration) *barrierProber {
	return &barrierProber{pending: n, all: make(chan struct{}), wait: wait}
}

func (b *barrierProber) Reachable(ctx context.Context, _ string) bool {
	b.mu.Lock()
	b.pending--
	if b.pending == 0 {
		close(b.all)
	}
	b.mu.Unlock()

	select {
	case <-b.all:
		return true
	case <-time.After(b.wait):
		return false
	case <-ctx.Done():
		return false
	}
}
