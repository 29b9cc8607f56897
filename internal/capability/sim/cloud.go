package sim

import (
	"context"
	"fmt"

	"vacuum_bridge/internal/capability"
)

type cloudSession struct{ user string }

type cloudClient struct{ w *World }

// CloudClient returns the simulated device cloud.
func (w *World) CloudClient() capability.CloudClient { return cloudClient{w: w} }

func (c cloudClient) Login(ctx context.Context, creds capability.Credentials) (capability.CloudSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", capability.ErrTransport, err)
	}
	if creds.Empty() {
		return nil, fmt.Errorf("%w: missing cloud credentials", capability.ErrAuth)
	}
	return cloudSession{user: creds.Username}, nil
}

func (c cloudClient) ListDevices(ctx context.Context, s capability.CloudSession) ([]capability.CloudDevice, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", capability.ErrTransport, err)
	}
	if _, ok := s.(cloudSession); !ok {
		return nil, fmt.Errorf("%w: foreign cloud session", capability.ErrAuth)
	}

	w := c.w
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]capability.CloudDevice, 0, len(w.devices))
	for _, d := range w.devices {
		out = append(out, capability.CloudDevice{ID: d.id, Model: d.model, LocalIP: d.localIP, Token: d.token})
	}
	return out, nil
}
