package usecase

import (
	"context"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/domain/repository"
)

const (
	defaultOpenOrdersLimit = 50
	maxOpenOrdersLimit     = 200
)

// OrderQueries serves read-only views of orders and applications.
type OrderQueries struct {
	orders       repository.OrderRepository
	applications repository.ApplicationRepository
}

// NewOrderQueries constructs OrderQueries.
func NewOrderQueries(orders repository.OrderRepository, applications repository.ApplicationRepository) *OrderQueries {
	return &OrderQueries{orders: orders, applications: applications}
}

// GetOrder returns the order when the caller may see it: parties and admins always,
// creators while the order is still open.
func (q *OrderQueries) GetOrder(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.Order, error) {
	order, err := q.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, order) {
		return nil, domainErrors.New(domainErrors.ErrPermissionDenied, "order %s is not visible to you", order.ID)
	}
	return order, nil
}

// ListOrders returns orders the caller funds or fulfils, newest first.
func (q *OrderQueries) ListOrders(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	return q.orders.ListByParty(ctx, actor.UserID)
}

// ListOpenOrders returns the marketplace of orders still looking for a fulfiller.
func (q *OrderQueries) ListOpenOrders(ctx context.Context, _ model.Actor, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = defaultOpenOrdersLimit
	}
	if limit > maxOpenOrdersLimit {
		limit = maxOpenOrdersLimit
	}
	return q.orders.ListOpen(ctx, limit)
}

// ListApplications returns every application to the funding party and only their own to candidates.
func (q *OrderQueries) ListApplications(ctx context.Context, actor model.Actor, orderID uuid.UUID) ([]model.Application, error) {
	order, err := q.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	apps, err := q.applications.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsFundingParty(actor.UserID) || actor.Role == model.RoleAdmin {
		return apps, nil
	}
	if actor.Role != model.RoleCreator {
		return nil, domainErrors.New(domainErrors.ErrPermissionDenied, "applications of order %s are not visible to you", order.ID)
	}

	own := make([]model.Application, 0, 1)
	for _, a := range apps {
		if a.CandidateID == actor.UserID {
			own = append(own, a)
		}
	}
	return own, nil
}

// Stats counts the caller's orders per status.
func (q *OrderQueries) Stats(ctx context.Context, actor model.Actor) (model.OrderStats, error) {
	return q.orders.Stats(ctx, actor.UserID)
}

func canView(actor model.Actor, order *model.Order) bool {
	switch {
	case actor.Role == model.RoleAdmin:
		return true
	case order.IsFundingParty(actor.UserID), order.IsFulfiller(actor.UserID):
		return true
	default:
		return actor.Role == model.RoleCreator && order.Status == model.OrderStatusPending
	}
}
