package models

import (
	"strings"
	"time"
)

// AlarmState is the arm mode of the monitored installation.
type AlarmState string

const (
	AlarmArmedAway AlarmState = "ARMED_AWAY"
	AlarmDisarmed  AlarmState = "DISARMED"
	AlarmUnknown   AlarmState = "UNKNOWN"
	AlarmOther     AlarmState = "OTHER"
)

// ParseAlarmState maps a vendor status string onto AlarmState.
// Recognised but non-actionable modes become OTHER; anything else UNKNOWN.
func ParseAlarmState(raw string) AlarmState {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ARMED_AWAY":
		return AlarmArmedAway
	case "DISARMED":
		return AlarmDisarmed
	case "ARMED_HOME", "OTHER":
		return AlarmOther
	default:
		return AlarmUnknown
	}
}

// WatcherStatus is what the alarm watcher last saw.
type WatcherStatus struct {
	State          AlarmState `json:"state"`
	Installation   string     `json:"installation"`
	LastPollAt     *time.Time `json:"last_poll_at"`
	LastChangeAt   *time.Time `json:"last_change_at"`
	LastError      string     `json:"last_error,omitempty"`
	Authenticated  bool       `json:"authenticated"`
	ReauthAttempts int        `json:"reauth_attempts"`
}
