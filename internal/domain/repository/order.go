package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/adbroker/internal/domain/model"
)

// OrderRepository serves read-only order queries outside atomic units.
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByParty(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	ListOpen(ctx context.Context, limit int) ([]model.Order, error)
	Stats(ctx context.Context, userID uuid.UUID) (model.OrderStats, error)
}

// ApplicationRepository lists applications of an order.
type ApplicationRepository interface {
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Application, error)
}

// MaterialRepository stores attachment references.
type MaterialRepository interface {
	Create(ctx context.Context, material *model.Material) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Material, error)
}
