package models

import "time"

// Journal event types.
const (
	EventAlarmTransition  = "ALARM_TRANSITION"
	EventStart            = "START"
	EventStop             = "STOP"
	EventPause            = "PAUSE"
	EventSkip             = "SKIP"
	EventError            = "ERROR"
	EventCleaningFinished = "CLEANING_FINISHED"
	EventAuth             = "AUTH"
)

// FleetEvent is a single journal entry.
type FleetEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`                // see Event* constants
	DeviceID    string    `json:"device_id,omitempty"` // empty for fleet-wide events
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
