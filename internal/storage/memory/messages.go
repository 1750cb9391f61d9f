package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
)

type messageRepository Store

func (r *messageRepository) Create(_ context.Context, message *model.Message) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.users[message.ReceiverID]; !ok {
		return domainErrors.New(domainErrors.ErrNotFound, "user %s not found", message.ReceiverID)
	}
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	message.Status = model.MessageStatusUnread
	message.CreatedAt = s.now()
	s.st.messages[message.ID] = *message
	return nil
}

func (r *messageRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Message, error) {
	var (
		m  model.Message
		ok bool
	)
	(*Store)(r).read(func(st *state) { m, ok = st.messages[id] })
	if !ok {
		return nil, domainErrors.New(domainErrors.ErrNotFound, "message %s not found", id)
	}
	return &m, nil
}

func (r *messageRepository) List(_ context.Context, userID uuid.UUID, filter model.MessageFilter) ([]model.Message, int, error) {
	keyword := strings.ToLower(filter.Keyword)
	var matched []model.Message
	(*Store)(r).read(func(st *state) {
		for _, m := range st.messages {
			if m.SenderID != userID && m.ReceiverID != userID {
				continue
			}
			if filter.ContactID != nil && m.Counterpart(userID) != *filter.ContactID {
				continue
			}
			if filter.Status != "" && m.Status != filter.Status {
				continue
			}
			if keyword != "" && !strings.Contains(strings.ToLower(m.Content), keyword) {
				continue
			}
			matched = append(matched, m)
		}
	})
	sortMessagesNewestFirst(matched)

	total := len(matched)
	if filter.Offset >= total {
		return nil, total, nil
	}
	page := matched[filter.Offset:]
	if filter.Limit > 0 && len(page) > filter.Limit {
		page = page[:filter.Limit]
	}
	return page, total, nil
}

func (r *messageRepository) Thread(_ context.Context, userID, contactID uuid.UUID, limit int, before *time.Time) ([]model.Message, error) {
	var result []model.Message
	(*Store)(r).read(func(st *state) {
		for _, m := range st.messages {
			if !between(m, userID, contactID) {
				continue
			}
			if before != nil && !m.CreatedAt.Before(*before) {
				continue
			}
			result = append(result, m)
		}
	})
	sortMessagesNewestFirst(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}

func (r *messageRepository) Conversations(_ context.Context, userID uuid.UUID) ([]model.Conversation, error) {
	byContact := make(map[uuid.UUID]*model.Conversation)
	(*Store)(r).read(func(st *state) {
		for _, m := range st.messages {
			if m.SenderID != userID && m.ReceiverID != userID {
				continue
			}
			contact := m.Counterpart(userID)
			conv, ok := byContact[contact]
			if !ok {
				conv = &model.Conversation{ContactID: contact, LastMessage: m}
				byContact[contact] = conv
			} else if newer(m, conv.LastMessage) {
				conv.LastMessage = m
			}
			if m.ReceiverID == userID && m.Status == model.MessageStatusUnread {
				conv.UnreadCount++
			}
		}
	})

	result := make([]model.Conversation, 0, len(byContact))
	for _, conv := range byContact {
		result = append(result, *conv)
	}
	sort.Slice(result, func(i, j int) bool { return newer(result[i].LastMessage, result[j].LastMessage) })
	return result, nil
}

func (r *messageRepository) MarkRead(_ context.Context, id uuid.UUID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.st.messages[id]
	if !ok {
		return domainErrors.New(domainErrors.ErrNotFound, "message %s not found", id)
	}
	m.Status = model.MessageStatusRead
	s.st.messages[id] = m
	return nil
}

func (r *messageRepository) MarkThreadRead(_ context.Context, readerID, contactID uuid.UUID) (int, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for id, m := range s.st.messages {
		if m.SenderID == contactID && m.ReceiverID == readerID && m.Status == model.MessageStatusUnread {
			m.Status = model.MessageStatusRead
			s.st.messages[id] = m
			changed++
		}
	}
	return changed, nil
}

func (r *messageRepository) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	(*Store)(r).read(func(st *state) {
		for _, m := range st.messages {
			if m.ReceiverID == userID && m.Status == model.MessageStatusUnread {
				count++
			}
		}
	})
	return count, nil
}

func (r *messageRepository) Delete(_ context.Context, id uuid.UUID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.messages[id]; !ok {
		return domainErrors.New(domainErrors.ErrNotFound, "message %s not found", id)
	}
	delete(s.st.messages, id)
	return nil
}

func between(m model.Message, a, b uuid.UUID) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

func newer(a, b model.Message) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID.String() > b.ID.String()
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func sortMessagesNewestFirst(messages []model.Message) {
	sort.Slice(messages, func(i, j int) bool { return newer(messages[i], messages[j]) })
}
