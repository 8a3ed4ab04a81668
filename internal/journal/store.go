package journal

import (
	"context"
	"time"
)

// Store persists journal events.
type Store interface {
	// Append adds an event for runID.
	Append(ctx context.Context, runID, eventType string, payload []byte, metadata map[string]string) error

	// ByRun returns the events of runID in insertion order.
	ByRun(ctx context.Context, runID string) ([]Event, error)

	// Range returns events recorded within [start, end] in insertion order.
	Range(ctx context.Context, start, end time.Time) ([]Event, error)

	Close() error
}
