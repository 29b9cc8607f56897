package service

import (
	"sort"
	"sync"
	"time"

	"vacuum_bridge/internal/models"
)

// CooldownStore remembers when each device last finished cleaning.
// Entries are overwritten, never removed. Safe for concurrent use.
type CooldownStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewCooldownStore() *CooldownStore {
	return &CooldownStore{entries: make(map[string]time.Time)}
}

// Record stores finishedAt for deviceID. Last write wins.
func (s *CooldownStore) Record(deviceID string, finishedAt time.Time) {
	s.mu.Lock()
	s.entries[deviceID] = finishedAt.UTC()
	s.mu.Unlock()
}

// LastFinished returns the stored time for deviceID. A zero stored time
// counts as no entry.
func (s *CooldownStore) LastFinished(deviceID string) (time.Time, bool) {
	s.mu.RLock()
	at, ok := s.entries[deviceID]
	s.mu.RUnlock()
	if !ok || at.IsZero() {
		return time.Time{}, false
	}
	return at, true
}

// Eligible reports whether deviceID may be auto-started at now. It also
// returns the last finish time when one is known.
func (s *CooldownStore) Eligible(deviceID string, now time.Time, cooldown time.Duration) (bool, time.Time) {
	at, ok := s.LastFinished(deviceID)
	if !ok {
		return true, time.Time{}
	}
	return now.Sub(at) >= cooldown, at
}

// Snapshot returns all entries ordered by device id.
func (s *CooldownStore) Snapshot() []models.CooldownEntry {
	s.mu.RLock()
	out := make([]models.CooldownEntry, 0, len(s.entries))
	for id, at := range s.entries {
		out = append(out, models.CooldownEntry{DeviceID: id, FinishedAt: at})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out
}
