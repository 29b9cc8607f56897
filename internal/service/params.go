package service

import (
	"time"

	"vacuum_bridge/internal/models"
)

// ApplyParams selects what the fleet controller does.
type ApplyParams struct {
	Action    models.Action
	DeviceID  string // empty means every discovered vacuum
	AutoStart bool   // cooldown gating; only meaningful for start
}

// LogFilter narrows journal queries by time range, type and device.
type LogFilter struct {
	From     time.Time // inclusive; zero means no lower bound
	To       time.Time // inclusive; zero means no upper bound
	Type     string    // "", or one of the models.Event* constants
	DeviceID string
}
