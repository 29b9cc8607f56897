package models

import "time"

// Action is a fleet command.
type Action string

const (
	ActionStart Action = "start"
	ActionStop  Action = "stop"
	ActionPause Action = "pause"
)

// Valid reports whether a is one of the known fleet actions.
func (a Action) Valid() bool {
	switch a {
	case ActionStart, ActionStop, ActionPause:
		return true
	}
	return false
}

// VacuumInfo is the public view of one discovered vacuum.
type VacuumInfo struct {
	IP                   string     `json:"ip"`
	Model                string     `json:"model"`
	DeviceID             string     `json:"device_id"`
	LastCleaningFinished *time.Time `json:"last_cleaning_finished"`
	Controllable         bool       `json:"controllable"`
	Reachable            *bool      `json:"reachable,omitempty"` // set only when probed
}

// CooldownEntry records when a device last finished cleaning.
type CooldownEntry struct {
	DeviceID   string    `json:"device_id"`
	FinishedAt time.Time `json:"finished_at"`
}

// FleetSnapshot is pushed to websocket subscribers.
type FleetSnapshot struct {
	Alarm          WatcherStatus   `json:"alarm"`
	Cooldowns      []CooldownEntry `json:"cooldowns"`
	ActiveMonitors int             `json:"active_monitors"`
}
