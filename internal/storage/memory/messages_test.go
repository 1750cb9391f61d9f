package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
)

func tickingStore() *Store {
	s := New()
	current := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		current = current.Add(time.Second)
		return current
	}
	return s
}

func send(t *testing.T, s *Store, from, to uuid.UUID, content string) model.Message {
	t.Helper()
	m := &model.Message{SenderID: from, ReceiverID: to, Kind: model.MessageKindText, Content: content}
	if err := s.Messages().Create(context.Background(), m); err != nil {
		t.Fatalf("create message: %v", err)
	}
	return *m
}

func TestMessagesCreateAndGet(t *testing.T) {
	s := tickingStore()
	ctx := context.Background()
	alice := seedUser(t, s, "alice", model.RoleAdvertiser, 0)
	bob := seedUser(t, s, "bob", model.RoleCreator, 0)

	m := send(t, s, alice.ID, bob.ID, "hello")
	if m.ID == uuid.Nil || m.Status != model.MessageStatusUnread || m.CreatedAt.IsZero() {
		t.Fatalf("unexpected message %+v", m)
	}
	got, err := s.Messages().GetByID(ctx, m.ID)
	if err != nil || got.Content != "hello" {
		t.Fatalf("unexpected lookup %v %+v", err, got)
	}

	err = s.Messages().Create(ctx, &model.Message{SenderID: alice.ID, ReceiverID: uuid.New(), Content: "x"})
	if !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected missing receiver, got %v", err)
	}
	if _, err := s.Messages().GetByID(ctx, uuid.New()); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMessagesListThreadAndConversations(t *testing.T) {
	s := tickingStore()
	ctx := context.Background()
	alice := seedUser(t, s, "alice", model.RoleAdvertiser, 0)
	bob := seedUser(t, s, "bob", model.RoleCreator, 0)
	carol := seedUser(t, s, "carol", model.RoleCreator, 0)

	first := send(t, s, alice.ID, bob.ID, "brief attached")
	send(t, s, bob.ID, alice.ID, "got the brief")
	third := send(t, s, bob.ID, alice.ID, "draft ready")
	last := send(t, s, carol.ID, alice.ID, "hi from carol")

	page, total, err := s.Messages().List(ctx, alice.ID, model.MessageFilter{Limit: 2})
	if err != nil || total != 4 || len(page) != 2 || page[0].ID != last.ID {
		t.Fatalf("unexpected first page: %v total=%d %+v", err, total, page)
	}
	page, total, _ = s.Messages().List(ctx, alice.ID, model.MessageFilter{Limit: 2, Offset: 4})
	if total != 4 || len(page) != 0 {
		t.Fatalf("expected empty page past the end, got %d", len(page))
	}
	contact := bob.ID
	page, total, _ = s.Messages().List(ctx, alice.ID, model.MessageFilter{ContactID: &contact, Keyword: "BRIEF"})
	if total != 2 || len(page) != 2 {
		t.Fatalf("expected keyword matches with bob, got %d", total)
	}
	_, total, _ = s.Messages().List(ctx, carol.ID, model.MessageFilter{Status: model.MessageStatusRead})
	if total != 0 {
		t.Fatalf("expected no read messages for carol, got %d", total)
	}

	thread, err := s.Messages().Thread(ctx, alice.ID, bob.ID, 2, nil)
	if err != nil || len(thread) != 2 || thread[1].ID != third.ID {
		t.Fatalf("expected latest two oldest first: %v %+v", err, thread)
	}
	cursor := thread[0].CreatedAt
	older, _ := s.Messages().Thread(ctx, alice.ID, bob.ID, 10, &cursor)
	if len(older) != 1 || older[0].ID != first.ID {
		t.Fatalf("expected only the first message before cursor, got %+v", older)
	}

	convs, err := s.Messages().Conversations(ctx, alice.ID)
	if err != nil || len(convs) != 2 {
		t.Fatalf("expected two conversations: %v %+v", err, convs)
	}
	if convs[0].ContactID != carol.ID || convs[0].UnreadCount != 1 {
		t.Fatalf("unexpected newest conversation %+v", convs[0])
	}
	if convs[1].ContactID != bob.ID || convs[1].LastMessage.ID != third.ID || convs[1].UnreadCount != 2 {
		t.Fatalf("unexpected bob conversation %+v", convs[1])
	}
}

func TestMessagesReadStateAndDelete(t *testing.T) {
	s := tickingStore()
	ctx := context.Background()
	alice := seedUser(t, s, "alice", model.RoleAdvertiser, 0)
	bob := seedUser(t, s, "bob", model.RoleCreator, 0)

	one := send(t, s, bob.ID, alice.ID, "one")
	send(t, s, bob.ID, alice.ID, "two")
	send(t, s, alice.ID, bob.ID, "reply")

	if n, _ := s.Messages().UnreadCount(ctx, alice.ID); n != 2 {
		t.Fatalf("expected two unread, got %d", n)
	}
	if err := s.Messages().MarkRead(ctx, one.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	changed, err := s.Messages().MarkThreadRead(ctx, alice.ID, bob.ID)
	if err != nil || changed != 1 {
		t.Fatalf("expected one remaining unread to change, got %d (%v)", changed, err)
	}
	if n, _ := s.Messages().UnreadCount(ctx, alice.ID); n != 0 {
		t.Fatalf("expected no unread, got %d", n)
	}
	if n, _ := s.Messages().UnreadCount(ctx, bob.ID); n != 1 {
		t.Fatalf("bob's unread must be untouched, got %d", n)
	}

	if err := s.Messages().Delete(ctx, one.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Messages().Delete(ctx, one.ID); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if err := s.Messages().MarkRead(ctx, one.ID); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
