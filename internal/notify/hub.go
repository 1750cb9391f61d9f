package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/adbroker/internal/domain/model"
)

const defaultSubscriberBuffer = 16

// Message is what a connected client receives.
type Message struct {
	Event   string
	Payload map[string]any
	SentAt  time.Time
}

type subscriber struct {
	ch chan Message
}

// Hub tracks which users hold a live stream and pushes events to them.
// Presence is best effort: an offline user simply misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[*subscriber]struct{}
	buffer int
	closed bool
	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[uuid.UUID]map[*subscriber]struct{}),
		buffer: defaultSubscriberBuffer,
		logger: logger,
	}
}

// Subscribe registers a stream for userID. The returned function removes it and closes the channel.
// The first stream of a user broadcasts online.changed to everyone else.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Message, func()) {
	sub := &subscriber{ch: make(chan Message, h.buffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	conns, ok := h.subs[userID]
	if !ok {
		conns = make(map[*subscriber]struct{})
		h.subs[userID] = conns
	}
	conns[sub] = struct{}{}
	first := len(conns) == 1
	if first {
		h.broadcastLocked(userID, true)
	}
	h.mu.Unlock()

	if first {
		h.logger.Debug("user online", slog.String("user_id", userID.String()))
	}

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() { h.unsubscribe(userID, sub) })
	}
}

func (h *Hub) unsubscribe(userID uuid.UUID, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.subs[userID]
	if !ok {
		return
	}
	if _, ok := conns[sub]; !ok {
		return
	}
	delete(conns, sub)
	close(sub.ch)
	if len(conns) == 0 {
		delete(h.subs, userID)
		h.broadcastLocked(userID, false)
		h.logger.Debug("user offline", slog.String("user_id", userID.String()))
	}
}

// IsOnline reports whether the user holds at least one stream.
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID]) > 0
}

// Online returns the number of users with a live stream.
func (h *Hub) Online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Notify pushes the event to every stream of the user. A full stream buffer drops the event for that stream.
func (h *Hub) Notify(_ context.Context, userID uuid.UUID, event string, payload map[string]any) error {
	msg := Message{Event: event, Payload: payload, SentAt: time.Now().UTC()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[userID] {
		h.send(userID, sub, msg)
	}
	return nil
}

// Close disconnects every stream.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for userID, conns := range h.subs {
		for sub := range conns {
			close(sub.ch)
		}
		delete(h.subs, userID)
	}
}

func (h *Hub) broadcastLocked(userID uuid.UUID, online bool) {
	msg := Message{
		Event: model.EventOnlineChanged,
		Payload: map[string]any{
			"userId": userID.String(),
			"online": online,
		},
		SentAt: time.Now().UTC(),
	}
	for other, conns := range h.subs {
		if other == userID {
			continue
		}
		for sub := range conns {
			h.send(other, sub, msg)
		}
	}
}

func (h *Hub) send(userID uuid.UUID, sub *subscriber, msg Message) {
	select {
	case sub.ch <- msg:
	default:
		h.logger.Warn("stream buffer full, event dropped",
			slog.String("user_id", userID.String()), slog.String("event", msg.Event))
	}
}
