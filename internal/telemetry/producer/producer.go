// Package producer defines the interface for publishing recorded events to a message broker (Kafka).
package producer

import (
	"context"

	"eventlog/internal/event/domain"
)

// Producer publishes recorded events. Callers use it best-effort: log and ignore errors.
type Producer interface {
	// Emit sends a single event. Implementations may block briefly; call from a goroutine if needed.
	Emit(ctx context.Context, event *domain.Event) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
