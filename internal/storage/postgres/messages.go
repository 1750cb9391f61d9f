package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
)

const messageColumns = `id, sender_id, receiver_id, kind, content, status, created_at`

type messageRepository struct {
	storage *Storage
}

func scanMessage(row rowScanner) (*model.Message, error) {
	var m model.Message
	if err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Kind, &m.Content, &m.Status, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanConversation(row rowScanner) (*model.Conversation, error) {
	var c model.Conversation
	m := &c.LastMessage
	err := row.Scan(&c.ContactID, &m.ID, &m.SenderID, &m.ReceiverID, &m.Kind, &m.Content, &m.Status, &m.CreatedAt, &c.UnreadCount)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	const query = `INSERT INTO messages (id, sender_id, receiver_id, kind, content)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING status, created_at`
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	err := r.storage.pool.QueryRow(ctx, query, message.ID, message.SenderID, message.ReceiverID, message.Kind, message.Content).
		Scan(&message.Status, &message.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return domainErrors.New(domainErrors.ErrNotFound, "user %s not found", message.ReceiverID)
		}
		return err
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Message, error) {
	const query = `SELECT ` + messageColumns + ` FROM messages WHERE id=$1`
	message, err := scanMessage(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "message %s not found", id)
	}
	return message, nil
}

const messageFilter = ` FROM messages
                   WHERE (sender_id=$1 OR receiver_id=$1)
                     AND ($2::uuid IS NULL OR sender_id=$2 OR receiver_id=$2)
                     AND ($3 = '' OR status=$3)
                     AND ($4 = '' OR content ILIKE '%' || $4 || '%')`

func (r *messageRepository) List(ctx context.Context, userID uuid.UUID, filter model.MessageFilter) ([]model.Message, int, error) {
	args := []any{userID, filter.ContactID, string(filter.Status), filter.Keyword}

	var total int
	if err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*)`+messageFilter, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	limit := any(nil)
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	query := `SELECT ` + messageColumns + messageFilter + ` ORDER BY created_at DESC, id DESC LIMIT $5 OFFSET $6`
	rows, err := r.storage.pool.Query(ctx, query, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	messages, err := collect(rows, scanMessage)
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (r *messageRepository) Thread(ctx context.Context, userID, contactID uuid.UUID, limit int, before *time.Time) ([]model.Message, error) {
	const query = `SELECT ` + messageColumns + ` FROM messages
                   WHERE ((sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1))
                     AND ($3::timestamptz IS NULL OR created_at < $3)
                   ORDER BY created_at DESC, id DESC
                   LIMIT $4`
	rows, err := r.storage.pool.Query(ctx, query, userID, contactID, before, limit)
	if err != nil {
		return nil, err
	}
	messages, err := collect(rows, scanMessage)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *messageRepository) Conversations(ctx context.Context, userID uuid.UUID) ([]model.Conversation, error) {
	const query = `WITH mine AS (
                       SELECT CASE WHEN sender_id=$1 THEN receiver_id ELSE sender_id END AS contact_id, ` + messageColumns + `
                       FROM messages WHERE sender_id=$1 OR receiver_id=$1
                   ), latest AS (
                       SELECT DISTINCT ON (contact_id) * FROM mine ORDER BY contact_id, created_at DESC, id DESC
                   )
                   SELECT l.contact_id, l.id, l.sender_id, l.receiver_id, l.kind, l.content, l.status, l.created_at,
                          (SELECT COUNT(*) FROM mine u WHERE u.contact_id=l.contact_id AND u.receiver_id=$1 AND u.status='UNREAD')
                   FROM latest l
                   ORDER BY l.created_at DESC, l.id DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanConversation)
}

func (r *messageRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.storage.pool.Exec(ctx, `UPDATE messages SET status='READ' WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.New(domainErrors.ErrNotFound, "message %s not found", id)
	}
	return nil
}

func (r *messageRepository) MarkThreadRead(ctx context.Context, readerID, contactID uuid.UUID) (int, error) {
	const query = `UPDATE messages SET status='READ' WHERE sender_id=$1 AND receiver_id=$2 AND status='UNREAD'`
	tag, err := r.storage.pool.Exec(ctx, query, contactID, readerID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *messageRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE receiver_id=$1 AND status='UNREAD'`, userID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *messageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM messages WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.New(domainErrors.ErrNotFound, "message %s not found", id)
	}
	return nil
}
