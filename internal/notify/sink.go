package notify

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Sink delivers one event to one user. Delivery is best effort and never affects committed state.
type Sink interface {
	Notify(ctx context.Context, userID uuid.UUID, event string, payload map[string]any) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, userID uuid.UUID, event string, payload map[string]any) error

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, userID uuid.UUID, event string, payload map[string]any) error {
	return f(ctx, userID, event, payload)
}

// Fanout delivers to every sink and joins their errors.
type Fanout []Sink

// Notify implements Sink.
func (f Fanout) Notify(ctx context.Context, userID uuid.UUID, event string, payload map[string]any) error {
	var errs []error
	for _, s := range f {
		if err := s.Notify(ctx, userID, event, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
