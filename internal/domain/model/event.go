package model

import (
	"time"

	"github.com/google/uuid"
)

// Event names emitted after an atomic unit commits.
const (
	EventApplicationCreated  = "order.application.created"
	EventApplicationAccepted = "order.application.accepted"
	EventApplicationRejected = "order.application.rejected"
	EventOrderDelivered      = "order.delivered"
	EventPayoutReleased      = "order.payout.released"
	EventReviewRequested     = "review.requested"
	EventOrderCancelled      = "order.cancelled"
	EventOrderDeleted        = "order.deleted"
	EventReviewCreated       = "review.created"
	EventOnlineChanged       = "online.changed"
	EventMessageCreated      = "message.created"
	EventMessagesRead        = "message.read"
)

// Event is a notification addressed to one user.
type Event struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	Payload    map[string]any
	OccurredAt time.Time
}

// NewEvent builds an event and embeds its identifier into the payload for receiver-side deduplication.
func NewEvent(userID uuid.UUID, name string, payload map[string]any) Event {
	id := uuid.New()
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["eventId"] = id.String()
	return Event{ID: id, UserID: userID, Name: name, Payload: body, OccurredAt: time.Now().UTC()}
}
