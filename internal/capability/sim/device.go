package sim

import (
	"context"
	"fmt"

	"vacuum_bridge/internal/capability"
)

type dialer struct{ w *World }

// Dialer returns the simulated local device protocol.
func (w *World) Dialer() capability.DeviceDialer { return dialer{w: w} }

func (d dialer) Dial(ip, token string) (capability.DeviceController, error) {
	w := d.w
	w.mu.Lock()
	defer w.mu.Unlock()
	dev := w.findByIP(ip)
	if dev == nil {
		return nil, fmt.Errorf("%w: no device at %s", capability.ErrTransport, ip)
	}
	if dev.token != token {
		return nil, fmt.Errorf("%w: token rejected by %s", capability.ErrDevice, ip)
	}
	return &controller{w: w, id: dev.id}, nil
}

type controller struct {
	w  *World
	id string
}

// apply runs fn against the device under the world lock.
func (c *controller) apply(ctx context.Context, op string, fn func(d *device) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", capability.ErrDevice, op, err)
	}
	c.w.mu.Lock()
	defer c.w.mu.Unlock()
	d := c.w.findByID(c.id)
	if d == nil {
		return fmt.Errorf("%w: %s: device %s vanished", capability.ErrDevice, op, c.id)
	}
	if err := fn(d); err != nil {
		return err
	}
	c.w.log.Debugw("sim_vacuum_command", "device_id", c.id, "op", op, "phase", d.phase)
	return nil
}

func (c *controller) Start(ctx context.Context) error {
	return c.apply(ctx, "start", func(d *device) error {
		if d.phase != PhasePaused || d.remaining <= 0 {
			d.remaining = c.w.cleaningDuration
		}
		d.phase = PhaseCleaning
		return nil
	})
}

func (c *controller) Stop(ctx context.Context) error {
	return c.apply(ctx, "stop", func(d *device) error {
		d.phase = PhaseDocked
		d.remaining = 0
		return nil
	})
}

func (c *controller) Pause(ctx context.Context) error {
	return c.apply(ctx, "pause", func(d *device) error {
		if d.phase == PhaseCleaning {
			d.phase = PhasePaused
		}
		return nil
	})
}

func (c *controller) Home(ctx context.Context) error {
	return c.apply(ctx, "home", func(d *device) error {
		d.remaining = 0
		if d.phase != PhaseDocked {
			d.phase = PhaseReturning
		}
		return nil
	})
}

func (c *controller) Status(ctx context.Context) (capability.DeviceStatus, error) {
	var st capability.DeviceStatus
	err := c.apply(ctx, "status", func(d *device) error {
		st = capability.DeviceStatus{
			IsRunning: d.phase == PhaseCleaning || d.phase == PhaseReturning,
			IsPaused:  d.phase == PhasePaused,
		}
		return nil
	})
	return st, err
}
