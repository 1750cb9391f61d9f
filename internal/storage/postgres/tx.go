package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/domain/repository"
)

// atomicTx implements repository.Tx on top of a pgx transaction.
type atomicTx struct {
	tx pgx.Tx
}

func (t *atomicTx) LockWallet(ctx context.Context, userID uuid.UUID) (*model.Wallet, error) {
	const query = `SELECT id, wallet_balance FROM users WHERE id=$1 FOR UPDATE`
	var w model.Wallet
	if err := t.tx.QueryRow(ctx, query, userID).Scan(&w.UserID, &w.Balance); err != nil {
		return nil, notFound(err, "user %s not found", userID)
	}
	return &w, nil
}

func (t *atomicTx) AdjustWallet(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error {
	const query = `UPDATE users SET wallet_balance = wallet_balance + $1
                   WHERE id=$2 AND wallet_balance + $1 >= 0`
	tag, err := t.tx.Exec(ctx, query, delta, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.New(domainErrors.ErrInsufficientFunds, "wallet balance cannot go below zero")
	}
	return nil
}

func (t *atomicTx) AppendEntry(ctx context.Context, entry *model.LedgerEntry) error {
	const query = `INSERT INTO ledger_entries (id, owner_id, order_id, type, status, amount, note)
                   VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Status == "" {
		entry.Status = model.EntryStatusCompleted
	}
	return t.tx.QueryRow(ctx, query, entry.ID, entry.OwnerID, entry.OrderID, entry.Type, entry.Status, entry.Amount, entry.Note).
		Scan(&entry.CreatedAt)
}

func (t *atomicTx) InsertOrder(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (id, funding_party_id, title, description, kind, priority, amount, status, deadline)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at, updated_at`
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return t.tx.QueryRow(ctx, query, order.ID, order.FundingPartyID, order.Title, order.Description, order.Kind,
		order.Priority, order.Amount, order.Status, order.Deadline).Scan(&order.CreatedAt, &order.UpdatedAt)
}

func (t *atomicTx) LockOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
	order, err := scanOrder(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "order %s not found", id)
	}
	return order, nil
}

func (t *atomicTx) SetOrderStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) error {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`
	return t.compareAndSet(ctx, "order %s is no longer "+string(from), id, query, to, id, from)
}

func (t *atomicTx) AssignFulfiller(ctx context.Context, id, fulfillerID uuid.UUID) error {
	const query = `UPDATE orders SET fulfiller_id=$1, status='IN_PROGRESS', updated_at=NOW()
                   WHERE id=$2 AND status='PENDING' AND fulfiller_id IS NULL`
	return t.compareAndSet(ctx, "order %s already has a fulfiller", id, query, fulfillerID, id)
}

func (t *atomicTx) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE orders SET delivered_at=NOW(), updated_at=NOW()
                   WHERE id=$1 AND status='IN_PROGRESS' AND delivered_at IS NULL`
	return t.compareAndSet(ctx, "order %s cannot be marked delivered", id, query, id)
}

func (t *atomicTx) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	cascade := []string{
		`DELETE FROM applications WHERE order_id=$1`,
		`DELETE FROM materials WHERE order_id=$1`,
		`DELETE FROM reviews WHERE order_id=$1`,
		`UPDATE ledger_entries SET order_id=NULL WHERE order_id=$1`,
	}
	for _, stmt := range cascade {
		if _, err := t.tx.Exec(ctx, stmt, id); err != nil {
			return err
		}
	}

	tag, err := t.tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.New(domainErrors.ErrNotFound, "order %s not found", id)
	}
	return nil
}

func (t *atomicTx) InsertApplication(ctx context.Context, app *model.Application) error {
	const query = `INSERT INTO applications (id, order_id, candidate_id, message, status)
                   VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	err := t.tx.QueryRow(ctx, query, app.ID, app.OrderID, app.CandidateID, app.Message, app.Status).
		Scan(&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (t *atomicTx) GetApplication(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE id=$1 FOR UPDATE`
	app, err := scanApplication(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "application %s not found", id)
	}
	return app, nil
}

func (t *atomicTx) AcceptApplication(ctx context.Context, orderID, applicationID uuid.UUID) ([]model.Application, error) {
	const accept = `UPDATE applications SET status='ACCEPTED', updated_at=NOW()
                    WHERE id=$1 AND order_id=$2 AND status='PENDING'`
	if err := t.compareAndSet(ctx, "application %s is no longer pending", applicationID, accept, applicationID, orderID); err != nil {
		return nil, err
	}

	const reject = `UPDATE applications SET status='REJECTED', updated_at=NOW()
                    WHERE order_id=$1 AND id<>$2 AND status='PENDING'
                    RETURNING ` + applicationColumns
	rows, err := t.tx.Query(ctx, reject, orderID, applicationID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanApplication)
}

func (t *atomicTx) EnsureReview(ctx context.Context, review *model.Review) (bool, error) {
	const query = `INSERT INTO reviews (id, order_id, reviewer_id, reviewee_id, status)
                   VALUES ($1, $2, $3, $4, 'PENDING')
                   ON CONFLICT (order_id, reviewer_id) DO NOTHING
                   RETURNING created_at, updated_at`
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	err := t.tx.QueryRow(ctx, query, review.ID, review.OrderID, review.ReviewerID, review.RevieweeID).
		Scan(&review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return false, err
		}
		const existing = `SELECT ` + reviewColumns + ` FROM reviews WHERE order_id=$1 AND reviewer_id=$2`
		current, err := scanReview(t.tx.QueryRow(ctx, existing, review.OrderID, review.ReviewerID))
		if err != nil {
			return false, fmt.Errorf("load existing review: %w", err)
		}
		*review = *current
		return false, nil
	}
	review.Status = model.ReviewStatusPending
	return true, nil
}

func (t *atomicTx) LockReview(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	const query = `SELECT ` + reviewColumns + ` FROM reviews WHERE id=$1 FOR UPDATE`
	review, err := scanReview(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "review %s not found", id)
	}
	return review, nil
}

func (t *atomicTx) SubmitReview(ctx context.Context, id uuid.UUID, rating int, comment string) error {
	const query = `UPDATE reviews SET rating=$1, comment=$2, status='SUBMITTED', updated_at=NOW()
                   WHERE id=$3 AND status='PENDING'`
	return t.compareAndSet(ctx, "review %s is no longer pending", id, query, rating, comment, id)
}

// compareAndSet executes a guarded update and reports ErrConflict when the guard matched no row.
func (t *atomicTx) compareAndSet(ctx context.Context, reason string, id uuid.UUID, query string, args ...any) error {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.New(domainErrors.ErrConflict, reason, id)
	}
	return nil
}

var _ repository.Tx = (*atomicTx)(nil)
