package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/domain/repository"
)

const (
	defaultMessagePageSize = 20
	maxMessagePageSize     = 100
)

// MessageUseCase carries direct messages between marketplace users.
type MessageUseCase struct {
	messages repository.MessageRepository
	users    repository.UserRepository
}

// NewMessageUseCase constructs MessageUseCase.
func NewMessageUseCase(messages repository.MessageRepository, users repository.UserRepository) *MessageUseCase {
	return &MessageUseCase{messages: messages, users: users}
}

type messageInput struct {
	Content string `validate:"required,max=4000"`
}

// SendMessage stores a message for receiverID and notifies them.
func (u *MessageUseCase) SendMessage(ctx context.Context, actor model.Actor, receiverID uuid.UUID, kind, content string) (*model.Message, []model.Event, error) {
	in := messageInput{Content: strings.TrimSpace(content)}
	if err := validateInput(in); err != nil {
		return nil, nil, err
	}
	msgKind, err := model.ParseMessageKind(strings.ToUpper(strings.TrimSpace(kind)))
	if err != nil {
		return nil, nil, domainErrors.New(domainErrors.ErrInvalidInput, "%s", err.Error())
	}
	if receiverID == actor.UserID {
		return nil, nil, domainErrors.New(domainErrors.ErrInvalidInput, "cannot message yourself")
	}
	if _, err := u.users.GetByID(ctx, receiverID); err != nil {
		return nil, nil, err
	}

	message := &model.Message{SenderID: actor.UserID, ReceiverID: receiverID, Kind: msgKind, Content: in.Content}
	if err := u.messages.Create(ctx, message); err != nil {
		return nil, nil, err
	}
	events := []model.Event{
		model.NewEvent(receiverID, model.EventMessageCreated, map[string]any{
			"messageId": message.ID.String(),
			"senderId":  actor.UserID.String(),
			"kind":      string(message.Kind),
		}),
	}
	return message, events, nil
}

// ListMessages searches the caller's messages, newest first, and reports the unpaged total.
func (u *MessageUseCase) ListMessages(ctx context.Context, actor model.Actor, filter model.MessageFilter) ([]model.Message, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultMessagePageSize
	}
	if filter.Limit > maxMessagePageSize {
		filter.Limit = maxMessagePageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	switch filter.Status {
	case "", model.MessageStatusUnread, model.MessageStatusRead:
	default:
		return nil, 0, domainErrors.New(domainErrors.ErrInvalidInput, "unknown message status %q", filter.Status)
	}
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	return u.messages.List(ctx, actor.UserID, filter)
}

// Conversations lists one entry per contact, most recent first.
func (u *MessageUseCase) Conversations(ctx context.Context, actor model.Actor) ([]model.Conversation, error) {
	return u.messages.Conversations(ctx, actor.UserID)
}

// Thread returns the exchange with contactID oldest first and marks the contact's messages read.
func (u *MessageUseCase) Thread(ctx context.Context, actor model.Actor, contactID uuid.UUID, limit int, before *time.Time) ([]model.Message, []model.Event, error) {
	if limit <= 0 {
		limit = defaultMessagePageSize
	}
	if limit > maxMessagePageSize {
		limit = maxMessagePageSize
	}
	if _, err := u.users.GetByID(ctx, contactID); err != nil {
		return nil, nil, err
	}

	thread, err := u.messages.Thread(ctx, actor.UserID, contactID, limit, before)
	if err != nil {
		return nil, nil, err
	}
	read, err := u.messages.MarkThreadRead(ctx, actor.UserID, contactID)
	if err != nil {
		return nil, nil, err
	}
	if read == 0 {
		return thread, nil, nil
	}
	for i := range thread {
		if thread[i].ReceiverID == actor.UserID {
			thread[i].Status = model.MessageStatusRead
		}
	}
	events := []model.Event{
		model.NewEvent(contactID, model.EventMessagesRead, map[string]any{
			"readerId": actor.UserID.String(),
			"count":    read,
		}),
	}
	return thread, events, nil
}

// MarkRead flags a single message as read. Only its receiver may do so.
func (u *MessageUseCase) MarkRead(ctx context.Context, actor model.Actor, messageID uuid.UUID) error {
	message, err := u.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.ReceiverID != actor.UserID {
		return domainErrors.New(domainErrors.ErrPermissionDenied, "message %s was not sent to you", message.ID)
	}
	if message.Status == model.MessageStatusRead {
		return nil
	}
	return u.messages.MarkRead(ctx, message.ID)
}

// UnreadCount reports how many messages wait for the caller.
func (u *MessageUseCase) UnreadCount(ctx context.Context, actor model.Actor) (int, error) {
	return u.messages.UnreadCount(ctx, actor.UserID)
}

// DeleteMessage removes a message. Only its sender may delete it.
func (u *MessageUseCase) DeleteMessage(ctx context.Context, actor model.Actor, messageID uuid.UUID) error {
	message, err := u.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.SenderID != actor.UserID {
		return domainErrors.New(domainErrors.ErrPermissionDenied, "message %s was sent by another user", message.ID)
	}
	return u.messages.Delete(ctx, message.ID)
}
