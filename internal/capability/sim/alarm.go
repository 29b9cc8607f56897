package sim

import (
	"context"
	"fmt"

	"vacuum_bridge/internal/capability"
)

type alarmSession struct {
	id           int
	installation string
}

func (s *alarmSession) Installation() string { return s.installation }

type alarmClient struct{ w *World }

// AlarmClient returns the simulated alarm capability.
func (w *World) AlarmClient() capability.AlarmClient { return alarmClient{w: w} }

func (c alarmClient) Login(ctx context.Context, creds capability.Credentials, installation string) (capability.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", capability.ErrTransport, err)
	}
	if creds.Empty() {
		return nil, fmt.Errorf("%w: missing alarm credentials", capability.ErrAuth)
	}

	w := c.w
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sessionSeq++
	w.sessions[w.sessionSeq] = w.now().Add(w.sessionTTL)
	if installation == "" {
		installation = "simulated"
	}
	return &alarmSession{id: w.sessionSeq, installation: installation}, nil
}

// CurrentArmState answers in the vendor's nested raw shape only, so callers
// exercise the fallback path.
func (c alarmClient) CurrentArmState(ctx context.Context, s capability.Session) (capability.ArmState, error) {
	if err := ctx.Err(); err != nil {
		return capability.ArmState{}, fmt.Errorf("%w: %v", capability.ErrTransport, err)
	}
	sess, ok := s.(*alarmSession)
	if !ok {
		return capability.ArmState{}, fmt.Errorf("%w: foreign session", capability.ErrAuth)
	}

	w := c.w
	w.mu.Lock()
	defer w.mu.Unlock()
	expiry, ok := w.sessions[sess.id]
	if !ok || !w.now().Before(expiry) {
		delete(w.sessions, sess.id)
		return capability.ArmState{}, capability.ErrSessionExpired
	}
	return capability.ArmState{Raw: map[string]any{
		"data": map[string]any{
			"installation": map[string]any{
				"armState": map[string]any{"statusType": w.alarm},
			},
		},
	}}, nil
}
