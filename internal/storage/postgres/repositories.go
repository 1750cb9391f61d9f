package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
)

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	const query = `INSERT INTO users (id, login, password_hash, role) VALUES ($1, $2, $3, $4)
                   RETURNING ` + userColumns
	user, err := scanUser(r.storage.pool.QueryRow(ctx, query, uuid.New(), login, passwordHash, role))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE LOWER(login)=LOWER($1)`
	user, err := scanUser(r.storage.pool.QueryRow(ctx, query, login))
	if err != nil {
		return nil, notFound(err, "user %q not found", login)
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	user, err := scanUser(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "user %s not found", id)
	}
	return user, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "order %s not found", id)
	}
	return order, nil
}

func (r *orderRepository) ListByParty(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE funding_party_id=$1 OR fulfiller_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOrder)
}

func (r *orderRepository) ListOpen(ctx context.Context, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE status='PENDING' AND fulfiller_id IS NULL ORDER BY created_at DESC LIMIT $1`
	rows, err := r.storage.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOrder)
}

func (r *orderRepository) Stats(ctx context.Context, userID uuid.UUID) (model.OrderStats, error) {
	const query = `SELECT status, COUNT(*) FROM orders
                   WHERE funding_party_id=$1 OR fulfiller_id=$1 GROUP BY status`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := model.OrderStats{}
	for rows.Next() {
		var (
			status model.OrderStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// --- ApplicationRepository implementation ---

func (r *applicationRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Application, error) {
	const query = `SELECT ` + applicationColumns + ` FROM applications WHERE order_id=$1 ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanApplication)
}

// --- MaterialRepository implementation ---

func (r *materialRepository) Create(ctx context.Context, material *model.Material) error {
	const query = `INSERT INTO materials (id, order_id, uploader_id, name, url) VALUES ($1, $2, $3, $4, $5)
                   RETURNING created_at`
	if material.ID == uuid.Nil {
		material.ID = uuid.New()
	}
	err := r.storage.pool.QueryRow(ctx, query, material.ID, material.OrderID, material.UploaderID, material.Name, material.URL).
		Scan(&material.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return domainErrors.New(domainErrors.ErrNotFound, "order %s not found", material.OrderID)
		}
		return err
	}
	return nil
}

func (r *materialRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Material, error) {
	const query = `SELECT ` + materialColumns + ` FROM materials WHERE order_id=$1 ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMaterial)
}

// --- LedgerRepository implementation ---

func (r *ledgerRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.LedgerEntry, error) {
	const query = `SELECT ` + entryColumns + ` FROM ledger_entries WHERE owner_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEntry)
}

// --- ReviewRepository implementation ---

func (r *reviewRepository) ListPending(ctx context.Context, reviewerID uuid.UUID) ([]model.Review, error) {
	const query = `SELECT ` + reviewColumns + ` FROM reviews WHERE reviewer_id=$1 AND status='PENDING' ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query, reviewerID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanReview)
}
