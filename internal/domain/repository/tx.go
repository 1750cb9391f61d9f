package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/adbroker/internal/domain/model"
)

// Transactor runs fn as one atomic, isolated unit. Any error returned by fn rolls the unit back.
type Transactor interface {
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of row operations available inside an atomic unit.
// Lock* methods hold the row until the unit ends; callers lock the order before any wallet.
type Tx interface {
	LockWallet(ctx context.Context, userID uuid.UUID) (*model.Wallet, error)
	AdjustWallet(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error
	AppendEntry(ctx context.Context, entry *model.LedgerEntry) error

	InsertOrder(ctx context.Context, order *model.Order) error
	LockOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// SetOrderStatus moves the order from one status to another and fails with ErrConflict
	// when the stored status no longer equals from.
	SetOrderStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) error
	// AssignFulfiller sets the fulfiller and IN_PROGRESS on a PENDING order without one.
	AssignFulfiller(ctx context.Context, id, fulfillerID uuid.UUID) error
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	InsertApplication(ctx context.Context, app *model.Application) error
	GetApplication(ctx context.Context, id uuid.UUID) (*model.Application, error)
	// AcceptApplication flips a PENDING application to ACCEPTED and rejects its pending
	// siblings, returning the rejected applications.
	AcceptApplication(ctx context.Context, orderID, applicationID uuid.UUID) ([]model.Application, error)

	// EnsureReview inserts a placeholder unless one exists for (order, reviewer).
	EnsureReview(ctx context.Context, review *model.Review) (bool, error)
	LockReview(ctx context.Context, id uuid.UUID) (*model.Review, error)
	SubmitReview(ctx context.Context, id uuid.UUID, rating int, comment string) error
}
