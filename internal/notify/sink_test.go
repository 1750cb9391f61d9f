package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestFanoutJoinsErrors(t *testing.T) {
	var calls []string
	first := errors.New("first down")
	fanout := Fanout{
		SinkFunc(func(ctx context.Context, userID uuid.UUID, event string, payload map[string]any) error {
			calls = append(calls, "a")
			return first
		}),
		SinkFunc(func(ctx context.Context, userID uuid.UUID, event string, payload map[string]any) error {
			calls = append(calls, "b")
			return nil
		}),
	}

	err := fanout.Notify(context.Background(), uuid.New(), "event", nil)
	if !errors.Is(err, first) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("every sink must be called, got %v", calls)
	}

	if err := (Fanout{}).Notify(context.Background(), uuid.New(), "event", nil); err != nil {
		t.Fatalf("empty fanout must succeed, got %v", err)
	}
}
