package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/iter"

	"vacuum_bridge/internal/logger"
	"vacuum_bridge/internal/models"
)

const (
	msgNoVacuums     = "No vacuums found"
	statusStarted    = "Started"
	statusDocked     = "Stopped and sent to dock"
	statusPaused     = "Paused"
	statusNoControl  = "No control capability (no token available)"
	statusSkippedFmt = "Skipped (last cleaned %s)"
)

var errInvalidAction = errors.New("invalid action: must be start, stop, or pause")

// Directory resolves the current set of vacuums.
type Directory interface {
	Discover(ctx context.Context) []Vacuum
}

// MonitorLauncher starts background completion tracking for a vacuum.
type MonitorLauncher interface {
	Launch(v Vacuum)
}

// FleetService applies start/stop/pause to the fleet or a single vacuum.
type FleetService struct {
	directory Directory
	cooldown  *CooldownStore
	monitors  MonitorLauncher
	journal   Journal
	prober    Prober
	window    time.Duration
	log       *logger.Logger
	now       func() time.Time

	locks deviceLocks
}

func NewFleetService(directory Directory, cooldown *CooldownStore, monitors MonitorLauncher, journal Journal, prober Prober, window time.Duration, log *logger.Logger) *FleetService {
	if journal == nil {
		journal = nopJournal{}
	}
	return &FleetService{
		directory: directory,
		cooldown:  cooldown,
		monitors:  monitors,
		journal:   journal,
		prober:    prober,
		window:    window,
		log:       log,
		now:       time.Now,
	}
}

// Apply runs p against the discovered fleet and returns one outcome line per
// resolved device, in discovery order. Device failures become outcome
// lines; the only error is an invalid action.
func (f *FleetService) Apply(ctx context.Context, p ApplyParams) ([]string, error) {
	if !p.Action.Valid() {
		return nil, fmt.Errorf("%w: %q", errInvalidAction, p.Action)
	}

	vacuums := f.directory.Discover(ctx)
	if len(vacuums) == 0 {
		return []string{msgNoVacuums}, nil
	}

	if p.DeviceID != "" {
		target, ok := findVacuum(vacuums, p.DeviceID)
		if !ok {
			fleetOutcomesTotal.WithLabelValues(string(p.Action), resultNotFound).Inc()
			return []string{fmt.Sprintf("Vacuum with device_id %s: Not found", p.DeviceID)}, nil
		}
		vacuums = []Vacuum{target}
	}

	jctx := context.WithoutCancel(ctx)
	now := f.now().UTC()
	results := make([]string, 0, len(vacuums))
	for _, v := range vacuums {
		if p.Action == models.ActionStart && p.AutoStart {
			if ok, last := f.cooldown.Eligible(v.DeviceID, now, f.window); !ok {
				lastStr := last.Format(time.RFC3339)
				results = append(results, outcome(v, fmt.Sprintf(statusSkippedFmt, lastStr)))
				f.journal.Record(jctx, models.FleetEvent{
					Type:        models.EventSkip,
					DeviceID:    v.DeviceID,
					Description: "Auto start skipped, cooldown active",
					Metadata:    map[string]any{"last_cleaned": lastStr},
				})
				fleetOutcomesTotal.WithLabelValues(string(p.Action), resultSkipped).Inc()
				continue
			}
		}
		results = append(results, f.dispatch(ctx, jctx, p, v))
	}
	return results, nil
}

func (f *FleetService) dispatch(ctx, jctx context.Context, p ApplyParams, v Vacuum) (line string) {
	if v.Control == nil {
		fleetOutcomesTotal.WithLabelValues(string(p.Action), resultNoControl).Inc()
		return outcome(v, statusNoControl)
	}

	unlock := f.locks.lock(v.DeviceID)
	defer unlock()

	// A misbehaving adapter must not take the rest of the batch down.
	defer func() {
		if r := recover(); r != nil {
			line = f.failed(jctx, p, v, fmt.Errorf("panic: %v", r))
		}
	}()

	var (
		status    string
		eventType string
		err       error
	)
	switch p.Action {
	case models.ActionStart:
		status, eventType = statusStarted, models.EventStart
		err = v.Control.Start(ctx)
	case models.ActionStop:
		status, eventType = statusDocked, models.EventStop
		err = v.Control.Home(ctx)
	case models.ActionPause:
		status, eventType = statusPaused, models.EventPause
		err = v.Control.Pause(ctx)
	}
	if err != nil {
		return f.failed(jctx, p, v, err)
	}

	switch p.Action {
	case models.ActionStart:
		f.monitors.Launch(v)
	case models.ActionStop:
		at := f.now().UTC()
		f.cooldown.Record(v.DeviceID, at)
		f.log.Infow("fleet_docked", "device_id", v.DeviceID, "at", at.Format(time.RFC3339))
	}

	f.journal.Record(jctx, models.FleetEvent{
		Type:        eventType,
		DeviceID:    v.DeviceID,
		Description: outcome(v, status),
		Metadata:    map[string]any{"auto_start": p.AutoStart},
	})
	fleetOutcomesTotal.WithLabelValues(string(p.Action), resultOK).Inc()
	return outcome(v, status)
}

func (f *FleetService) failed(jctx context.Context, p ApplyParams, v Vacuum, err error) string {
	f.log.Errorw("fleet_device_error", "action", p.Action, "device_id", v.DeviceID, "ip", v.IP, "err", err)
	f.journal.Record(jctx, models.FleetEvent{
		Type:        models.EventError,
		DeviceID:    v.DeviceID,
		Description: fmt.Sprintf("%s failed: %v", p.Action, err),
	})
	fleetOutcomesTotal.WithLabelValues(string(p.Action), resultError).Inc()
	return outcome(v, "Error - "+err.Error())
}

// ListVacuums returns the discovered fleet with cooldown info. With probe
// set, each address is pinged.
func (f *FleetService) ListVacuums(ctx context.Context, probe bool) []models.VacuumInfo {
	vacuums := f.directory.Discover(ctx)
	out := make([]models.VacuumInfo, 0, len(vacuums))
	for _, v := range vacuums {
		info := models.VacuumInfo{
			IP:           v.IP,
			Model:        v.Model,
			DeviceID:     v.DeviceID,
			Controllable: v.Control != nil,
		}
		if last, ok := f.cooldown.LastFinished(v.DeviceID); ok {
			info.LastCleaningFinished = &last
		}
		out = append(out, info)
	}
	if !probe || f.prober == nil || len(out) == 0 {
		return out
	}

	// One ping per device in parallel; results keep discovery order.
	reach := iter.Map(out, func(info *models.VacuumInfo) bool {
		return f.prober.Reachable(ctx, info.IP)
	})
	for i := range out {
		r := reach[i]
		out[i].Reachable = &r
	}
	return out
}

func findVacuum(vacuums []Vacuum, deviceID string) (Vacuum, bool) {
	for _, v := range vacuums {
		if v.DeviceID == deviceID {
			return v, true
		}
	}
	return Vacuum{}, false
}

func outcome(v Vacuum, status string) string {
	return "Vacuum " + v.Label() + ": " + status
}

// deviceLocks serialises commands per device id.
type deviceLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (l *deviceLocks) lock(deviceID string) (unlock func()) {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*sync.Mutex)
	}
	mu, ok := l.m[deviceID]
	if !ok {
		mu = &sync.Mutex{}
		l.m[deviceID] = mu
	}
	l.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}
