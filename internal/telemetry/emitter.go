package telemetry

import (
	"context"
	"errors"

	"eventlog/internal/event/domain"
)

// EventEmitter fans a recorded event out to a downstream sink (OTel logs, Kafka).
// Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.Event) error
}

// MultiEmitter emits to every non-nil emitter and joins their errors.
type MultiEmitter []EventEmitter

// Emit calls each emitter in order; one failing emitter does not stop the others.
func (m MultiEmitter) Emit(ctx context.Context, event *domain.Event) error {
	var errs []error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
