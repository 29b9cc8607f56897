// Package capability declares the capabilities the bridge consumes from the
// alarm vendor, the device cloud and the local device-control protocol.
// Adapters implement these interfaces; the bridge never speaks the
// underlying wire protocols itself.
package capability

import (
	"context"
	"errors"
)

// Error kinds. Adapters wrap one of these so callers can classify with
// errors.Is.
var (
	ErrAuth           = errors.New("authentication failed")
	ErrSessionExpired = errors.New("session expired")
	ErrDevice         = errors.New("device error")
	ErrTransport      = errors.New("transport error")
	ErrData           = errors.New("malformed vendor response")
)

// Credentials for a vendor account.
type Credentials struct {
	Username string
	Password string
}

// Empty reports whether either half of the credentials is missing.
func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// Session is an authenticated alarm API handle bound to one installation.
type Session interface {
	Installation() string
}

// ArmState is the alarm vendor's answer to an arm-state query. Status may
// be empty, in which case the state is read from Raw.
type ArmState struct {
	Status string
	Raw    map[string]any
}

// AlarmClient is the alarm vendor capability.
type AlarmClient interface {
	Login(ctx context.Context, creds Credentials, installation string) (Session, error)
	CurrentArmState(ctx context.Context, s Session) (ArmState, error)
}

// CloudSession is an authenticated device-cloud handle.
type CloudSession interface{}

// CloudDevice is one entry from the cloud device inventory.
type CloudDevice struct {
	ID      string
	Model   string
	LocalIP string
	Token   string
}

// CloudClient is the device-cloud discovery capability.
type CloudClient interface {
	Login(ctx context.Context, creds Credentials) (CloudSession, error)
	ListDevices(ctx context.Context, s CloudSession) ([]CloudDevice, error)
}

// DeviceStatus is the operational status of a vacuum.
type DeviceStatus struct {
	IsRunning bool
	IsPaused  bool
}

// DeviceController is a control handle for one device.
type DeviceController interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Pause(ctx context.Context) error
	Home(ctx context.Context) error
	Status(ctx context.Context) (DeviceStatus, error)
}

// DeviceDialer builds a control handle from a local address and token.
type DeviceDialer interface {
	Dial(ip, token string) (DeviceController, error)
}
