package wifi

import (
	"context"
	"fmt"
	"time"
)

// Status is a target state for Till to converge on.
type Status string

const (
	StatusOn           Status = "on"           // radio powered on
	StatusOff          Status = "off"          // radio powered off
	StatusConnected    Status = "connected"    // internet reachable
	StatusDisconnected Status = "disconnected" // internet unreachable
)

// DefaultPollInterval is used by Till when no interval is given.
const DefaultPollInterval = 500 * time.Millisecond

// Till polls until the target status is observed. The predicate is
// re-evaluated fresh on every iteration; nothing is cached, since the point
// is to observe transitions caused by processes outside this program.
//
// A zero timeout means wait unboundedly; cancel through ctx to abort early.
// A zero interval means DefaultPollInterval. When the timeout elapses first,
// Till returns a *WaitTimeoutError.
func (m *Manager) Till(ctx context.Context, target Status, timeout, interval time.Duration) error {
	predicate, err := m.predicateFor(target)
	if err != nil {
		return err
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if predicate(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return &WaitTimeoutError{Target: target, Timeout: timeout}
		case <-ticker.C:
		}
	}
}

func (m *Manager) predicateFor(target Status) (func(context.Context) bool, error) {
	switch target {
	case StatusOn:
		return func(ctx context.Context) bool {
			on, err := m.backend.IsWirelessEnabled(ctx)
			return err == nil && on
		}, nil
	case StatusOff:
		return func(ctx context.Context) bool {
			on, err := m.backend.IsWirelessEnabled(ctx)
			return err == nil && !on
		}, nil
	case StatusConnected:
		return m.ConnectedToInternet, nil
	case StatusDisconnected:
		return func(ctx context.Context) bool {
			return !m.ConnectedToInternet(ctx)
		}, nil
	default:
		return nil, fmt.Errorf("unknown target status %q: %w", target, ErrNotSupported)
	}
}
