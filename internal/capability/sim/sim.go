// Package sim is an in-process stand-in for the alarm vendor, the device
// cloud and the vacuums themselves. It lets the bridge run end to end
// without real accounts or hardware.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vacuum_bridge/internal/capability"
	"vacuum_bridge/internal/config"
	"vacuum_bridge/internal/logger"
	"vacuum_bridge/internal/models"
)

// Vacuum phases.
const (
	PhaseDocked    = "DOCKED"
	PhaseCleaning  = "CLEANING"
	PhasePaused    = "PAUSED"
	PhaseReturning = "RETURNING"
)

// World holds the simulated alarm installation and vacuum fleet.
type World struct {
	log              *logger.Logger
	sessionTTL       time.Duration
	cleaningDuration time.Duration
	now              func() time.Time

	mu         sync.Mutex
	alarm      string
	sessionSeq int
	sessions   map[int]time.Time // session id -> expiry
	devices    []*device
}

type device struct {
	id        string
	model     string
	localIP   string
	token     string
	phase     string
	remaining time.Duration
}

// New builds a world from the simulation config.
func New(cfg config.SimulationConfig, log *logger.Logger) *World {
	w := &World{
		log:              log,
		sessionTTL:       cfg.SessionTTL,
		cleaningDuration: cfg.CleaningDuration,
		now:              time.Now,
		alarm:            vendorStatus(models.ParseAlarmState(cfg.InitialAlarm)),
		sessions:         make(map[int]time.Time),
	}
	for _, d := range cfg.Devices {
		w.devices = append(w.devices, &device{
			id:      d.ID,
			model:   d.Model,
			localIP: d.LocalIP,
			token:   d.Token,
			phase:   PhaseDocked,
		})
	}
	return w
}

// vendorStatus maps an AlarmState to the string the alarm vendor reports.
func vendorStatus(s models.AlarmState) string {
	switch s {
	case models.AlarmArmedAway:
		return "ARMED_AWAY"
	case models.AlarmDisarmed:
		return "DISARMED"
	case models.AlarmOther:
		return "ARMED_HOME"
	default:
		return ""
	}
}

// SetAlarmState changes the simulated installation's arm state.
func (w *World) SetAlarmState(state models.AlarmState) error {
	status := vendorStatus(state)
	if status == "" {
		return fmt.Errorf("%w: cannot simulate alarm state %q", capability.ErrData, state)
	}
	w.mu.Lock()
	w.alarm = status
	w.mu.Unlock()
	w.log.Infow("sim_alarm_set", "status", status)
	return nil
}

// ExpireSessions invalidates every alarm session handed out so far.
func (w *World) ExpireSessions() {
	w.mu.Lock()
	n := len(w.sessions)
	w.sessions = make(map[int]time.Time)
	w.mu.Unlock()
	w.log.Infow("sim_sessions_expired", "count", n)
}

// Phase reports a device's current phase, or "" for an unknown id.
func (w *World) Phase(deviceID string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if d := w.findByID(deviceID); d != nil {
		return d.phase
	}
	return ""
}

// Run advances cleaning jobs on every tick until ctx is canceled.
func (w *World) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	last := w.now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			w.Advance(now.Sub(last))
			last = now
		}
	}
}

// Advance moves simulated time forward by elapsed. A cleaning device whose
// job runs out heads home; a returning device docks one step later.
func (w *World) Advance(elapsed time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, d := range w.devices {
		switch d.phase {
		case PhaseReturning:
			d.phase = PhaseDocked
			w.log.Infow("sim_vacuum_docked", "device_id", d.id)
		case PhaseCleaning:
			if d.remaining > elapsed {
				d.remaining -= elapsed
				continue
			}
			d.remaining = 0
			d.phase = PhaseReturning
			w.log.Infow("sim_cleaning_complete", "device_id", d.id)
		}
	}
}

func (w *World) findByID(id string) *device {
	for _, d := range w.devices {
		if d.id == id {
			return d
		}
	}
	return nil
}

func (w *World) findByIP(ip string) *device {
	for _, d := range w.devices {
		if d.localIP != "" && d.localIP == ip {
			return d
		}
	}
	return nil
}
