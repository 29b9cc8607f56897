package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"vacuum_bridge/internal/capability"
	"vacuum_bridge/internal/logger"
	"vacuum_bridge/internal/models"
)

// armStatePath locates the status inside a raw arm-state response.
var armStatePath = []string{"data", "installation", "armState", "statusType"}

// FleetApplier is the part of the fleet the watcher drives.
type FleetApplier interface {
	Apply(ctx context.Context, p ApplyParams) ([]string, error)
}

// WatcherService polls the alarm and turns arm-state changes into fleet
// actions. Repeated identical states never refire.
type WatcherService struct {
	alarm        capability.AlarmClient
	creds        capability.Credentials
	installation string
	fleet        FleetApplier
	journal      Journal
	interval     time.Duration
	log          *logger.Logger
	now          func() time.Time

	mu           sync.RWMutex
	session      capability.Session
	last         models.AlarmState // empty until the first observation
	lastPollAt   time.Time
	lastChangeAt time.Time
	lastErr      string
	reauths      int
}

func NewWatcherService(alarm capability.AlarmClient, creds capability.Credentials, installation string, fleet FleetApplier, journal Journal, interval time.Duration, log *logger.Logger) *WatcherService {
	if journal == nil {
		journal = nopJournal{}
	}
	return &WatcherService{
		alarm:        alarm,
		creds:        creds,
		installation: installation,
		fleet:        fleet,
		journal:      journal,
		interval:     interval,
		log:          log,
		now:          time.Now,
	}
}

// Run polls immediately and then once per interval until ctx is canceled.
func (w *WatcherService) Run(ctx context.Context) {
	w.log.Infow("watcher_started", "installation", w.installation, "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	_ = w.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Infow("watcher_stopped")
			return
		case <-ticker.C:
			_ = w.Poll(ctx)
		}
	}
}

// Poll performs one cycle: read the arm state (re-authenticating once on
// expiry), detect a transition and act on it. The returned error is
// informational; the watcher itself never stops on it.
func (w *WatcherService) Poll(ctx context.Context) error {
	sess, err := w.ensureSession(ctx)
	if err != nil {
		alarmPollsTotal.WithLabelValues(resultAuthFailed).Inc()
		w.recordError("alarm_login_failed", err)
		return err
	}

	resp, err := w.alarm.CurrentArmState(ctx, sess)
	if errors.Is(err, capability.ErrSessionExpired) {
		w.log.Warnw("alarm_session_expired", "installation", w.installation)
		alarmPollsTotal.WithLabelValues(resultReauth).Inc()
		sess, err = w.relogin(ctx)
		if err != nil {
			alarmPollsTotal.WithLabelValues(resultAuthFailed).Inc()
			w.recordError("alarm_relogin_failed", err)
			return err
		}
		resp, err = w.alarm.CurrentArmState(ctx, sess)
	}
	if err != nil {
		if errors.Is(err, capability.ErrSessionExpired) {
			w.dropSession()
		}
		alarmPollsTotal.WithLabelValues(resultError).Inc()
		w.recordError("alarm_poll_failed", err)
		return err
	}

	alarmPollsTotal.WithLabelValues(resultOK).Inc()
	w.observe(ctx, deriveAlarmState(resp))
	return nil
}

func (w *WatcherService) ensureSession(ctx context.Context) (capability.Session, error) {
	w.mu.RLock()
	sess := w.session
	w.mu.RUnlock()
	if sess != nil {
		return sess, nil
	}
	return w.login(ctx)
}

func (w *WatcherService) login(ctx context.Context) (capability.Session, error) {
	sess, err := w.alarm.Login(ctx, w.creds, w.installation)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.session = sess
	w.mu.Unlock()
	w.log.Infow("alarm_logged_in", "installation", sess.Installation())
	return sess, nil
}

// relogin replaces the expired session with a fresh one.
func (w *WatcherService) relogin(ctx context.Context) (capability.Session, error) {
	w.mu.Lock()
	w.session = nil
	w.reauths++
	w.mu.Unlock()

	sess, err := w.login(ctx)
	desc := "Alarm session renewed"
	if err != nil {
		desc = "Alarm re-authentication failed: " + err.Error()
	}
	w.journal.Record(ctx, models.FleetEvent{Type: models.EventAuth, Description: desc})
	return sess, err
}

func (w *WatcherService) dropSession() {
	w.mu.Lock()
	w.session = nil
	w.mu.Unlock()
}

func (w *WatcherService) recordError(key string, err error) {
	w.mu.Lock()
	w.lastErr = err.Error()
	w.mu.Unlock()
	w.log.Errorw(key, "installation", w.installation, "err", err)
}

// observe compares state with the last observation and acts on a change.
func (w *WatcherService) observe(ctx context.Context, state models.AlarmState) {
	now := w.now().UTC()

	w.mu.Lock()
	prev := w.last
	w.lastPollAt = now
	w.lastErr = ""
	if state == prev {
		w.mu.Unlock()
		return
	}
	w.last = state
	w.lastChangeAt = now
	w.mu.Unlock()

	w.log.Infow("alarm_transition", "from", prev, "to", state)
	alarmTransitionsTotal.WithLabelValues(string(state)).Inc()
	w.journal.Record(ctx, models.FleetEvent{
		OccurredAt:  now,
		Type:        models.EventAlarmTransition,
		Description: "Alarm state " + string(state),
		Metadata:    map[string]any{"from": string(prev), "to": string(state)},
	})

	switch state {
	case models.AlarmArmedAway:
		w.act(ctx, ApplyParams{Action: models.ActionStart, AutoStart: true})
	case models.AlarmDisarmed:
		w.act(ctx, ApplyParams{Action: models.ActionStop})
	}
}

func (w *WatcherService) act(ctx context.Context, p ApplyParams) {
	results, err := w.fleet.Apply(ctx, p)
	if err != nil {
		w.log.Errorw("watcher_fleet_apply_failed", "action", p.Action, "err", err)
		return
	}
	w.log.Infow("watcher_fleet_applied", "action", p.Action, "auto_start", p.AutoStart, "results", results)
}

// Status reports the watcher's current view for the API.
func (w *WatcherService) Status() models.WatcherStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	st := models.WatcherStatus{
		State:          w.last,
		Installation:   w.installation,
		LastError:      w.lastErr,
		Authenticated:  w.session != nil,
		ReauthAttempts: w.reauths,
	}
	if st.State == "" {
		st.State = models.AlarmUnknown
	}
	if !w.lastPollAt.IsZero() {
		t := w.lastPollAt
		st.LastPollAt = &t
	}
	if !w.lastChangeAt.IsZero() {
		t := w.lastChangeAt
		st.LastChangeAt = &t
	}
	return st
}

// deriveAlarmState reads the status field, falling back to the nested raw
// response. Missing values map to UNKNOWN.
func deriveAlarmState(resp capability.ArmState) models.AlarmState {
	status := resp.Status
	if status == "" {
		status = nestedString(resp.Raw, armStatePath...)
	}
	return models.ParseAlarmState(status)
}

func nestedString(m map[string]any, path ...string) string {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[key]
	}
	s, _ := cur.(string)
	return s
}
