package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/adbroker/internal/domain/model"
)

// MessageRepository stores direct messages.
type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Message, error)
	// List returns a page of the user's messages, newest first, and the total number of matches.
	List(ctx context.Context, userID uuid.UUID, filter model.MessageFilter) ([]model.Message, int, error)
	// Thread returns up to limit messages exchanged with contactID before the cursor, oldest first.
	Thread(ctx context.Context, userID, contactID uuid.UUID, limit int, before *time.Time) ([]model.Message, error)
	Conversations(ctx context.Context, userID uuid.UUID) ([]model.Conversation, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	// MarkThreadRead flags contactID's unread messages to readerID as read and reports how many changed.
	MarkThreadRead(ctx context.Context, readerID, contactID uuid.UUID) (int, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
