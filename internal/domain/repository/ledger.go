package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/adbroker/internal/domain/model"
)

// LedgerRepository exposes a user's money movements.
type LedgerRepository interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.LedgerEntry, error)
}

// ReviewRepository lists reviews awaiting the reviewer.
type ReviewRepository interface {
	ListPending(ctx context.Context, reviewerID uuid.UUID) ([]model.Review, error)
}
