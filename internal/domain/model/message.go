package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MessageKind string

const (
	MessageKindText  MessageKind = "TEXT"
	MessageKindImage MessageKind = "IMAGE"
	MessageKindFile  MessageKind = "FILE"
)

// ParseMessageKind maps an empty value to TEXT.
func ParseMessageKind(value string) (MessageKind, error) {
	switch k := MessageKind(value); k {
	case "":
		return MessageKindText, nil
	case MessageKindText, MessageKindImage, MessageKindFile:
		return k, nil
	default:
		return "", fmt.Errorf("unknown message kind %q", value)
	}
}

type MessageStatus string

const (
	MessageStatusUnread MessageStatus = "UNREAD"
	MessageStatusRead   MessageStatus = "READ"
)

// Message is a direct message between two users.
type Message struct {
	ID         uuid.UUID
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Kind       MessageKind
	Content    string
	Status     MessageStatus
	CreatedAt  time.Time
}

// Counterpart returns the other participant as seen by userID.
func (m Message) Counterpart(userID uuid.UUID) uuid.UUID {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Conversation summarises the thread with one contact.
type Conversation struct {
	ContactID   uuid.UUID
	LastMessage Message
	UnreadCount int
}

// MessageFilter narrows a message search. Zero values disable a criterion.
type MessageFilter struct {
	ContactID *uuid.UUID
	Status    MessageStatus
	Keyword   string
	Limit     int
	Offset    int
}
