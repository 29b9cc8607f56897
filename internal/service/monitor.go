package service

import (
	"context"
	"sync"
	"time"

	"vacuum_bridge/internal/logger"
	"vacuum_bridge/internal/models"
)

// MonitorService runs one completion monitor per started vacuum. A monitor
// waits an interval, reads the device status and records the finish time
// in the cooldown store once the device is neither running nor paused.
type MonitorService struct {
	cooldown *CooldownStore
	journal  Journal
	interval time.Duration
	maxPolls int
	log      *logger.Logger
	now      func() time.Time

	root   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	seq  uint64
	live map[string]*monitorRun
}

type monitorRun struct {
	id     uint64
	cancel context.CancelFunc
}

func NewMonitorService(cooldown *CooldownStore, journal Journal, interval time.Duration, maxPolls int, log *logger.Logger) *MonitorService {
	root, cancel := context.WithCancel(context.Background())
	if journal == nil {
		journal = nopJournal{}
	}
	return &MonitorService{
		cooldown: cooldown,
		journal:  journal,
		interval: interval,
		maxPolls: maxPolls,
		log:      log,
		now:      time.Now,
		root:     root,
		cancel:   cancel,
		live:     make(map[string]*monitorRun),
	}
}

// Launch starts monitoring v in the background. A monitor already running
// for the same device is canceled and replaced.
func (m *MonitorService) Launch(v Vacuum) {
	if v.Control == nil {
		m.log.Warnw("monitor_no_control", "device_id", v.DeviceID)
		return
	}

	m.mu.Lock()
	if prev, ok := m.live[v.DeviceID]; ok {
		prev.cancel()
		m.log.Infow("monitor_superseded", "device_id", v.DeviceID)
	}
	m.seq++
	ctx, cancel := context.WithCancel(m.root)
	run := &monitorRun{id: m.seq, cancel: cancel}
	m.live[v.DeviceID] = run
	m.wg.Add(1)
	m.mu.Unlock()

	monitorsActive.Inc()
	go func() {
		defer m.wg.Done()
		defer monitorsActive.Dec()
		defer m.release(v.DeviceID, run)
		m.watch(ctx, v)
	}()
}

func (m *MonitorService) release(deviceID string, run *monitorRun) {
	m.mu.Lock()
	if cur, ok := m.live[deviceID]; ok && cur == run {
		delete(m.live, deviceID)
	}
	m.mu.Unlock()
	run.cancel()
}

func (m *MonitorService) watch(ctx context.Context, v Vacuum) {
	timer := time.NewTimer(m.interval)
	defer timer.Stop()

	for poll := 1; poll <= m.maxPolls; poll++ {
		select {
		case <-ctx.Done():
			monitorResultsTotal.WithLabelValues(resultCanceled).Inc()
			return
		case <-timer.C:
		}

		st, err := v.Control.Status(ctx)
		if err != nil {
			if ctx.Err() != nil {
				monitorResultsTotal.WithLabelValues(resultCanceled).Inc()
				return
			}
			m.log.Errorw("monitor_status_failed", "device_id", v.DeviceID, "poll", poll, "err", err)
			monitorResultsTotal.WithLabelValues(resultError).Inc()
			return
		}

		if !st.IsRunning && !st.IsPaused {
			finishedAt := m.now().UTC()
			m.cooldown.Record(v.DeviceID, finishedAt)
			m.log.Infow("monitor_finished", "device_id", v.DeviceID, "finished_at", finishedAt.Format(time.RFC3339), "polls", poll)
			m.journal.Record(ctx, models.FleetEvent{
				OccurredAt:  finishedAt,
				Type:        models.EventCleaningFinished,
				DeviceID:    v.DeviceID,
				Description: "Vacuum " + v.Label() + " finished cleaning",
				Metadata:    map[string]any{"polls": poll},
			})
			monitorResultsTotal.WithLabelValues(resultFinished).Inc()
			return
		}
		timer.Reset(m.interval)
	}

	m.log.Warnw("monitor_budget_exhausted", "device_id", v.DeviceID, "polls", m.maxPolls)
	monitorResultsTotal.WithLabelValues(resultTimeout).Inc()
}

// Active returns the number of devices currently being monitored.
func (m *MonitorService) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Wait blocks until every launched monitor has returned.
func (m *MonitorService) Wait() {
	m.wg.Wait()
}

// Shutdown cancels all monitors and waits for them to return.
func (m *MonitorService) Shutdown() {
	m.cancel()
	m.wg.Wait()
}
