package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus describes the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Terminal reports whether no further transition except deletion is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// OrderKind is the category of work requested.
type OrderKind string

const (
	OrderKindVideo     OrderKind = "VIDEO"
	OrderKindDesign    OrderKind = "DESIGN"
	OrderKindH5        OrderKind = "H5"
	OrderKindAnimation OrderKind = "ANIMATION"
	OrderKindAudio     OrderKind = "AUDIO"
	OrderKindOther     OrderKind = "OTHER"
)

// ParseOrderKind converts raw input into a known kind. Empty input is rejected.
func ParseOrderKind(raw string) (OrderKind, error) {
	switch k := OrderKind(raw); k {
	case OrderKindVideo, OrderKindDesign, OrderKindH5, OrderKindAnimation, OrderKindAudio, OrderKindOther:
		return k, nil
	default:
		return "", fmt.Errorf("unknown order kind %q", raw)
	}
}

// Priority ranks orders for candidates browsing the marketplace.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority converts raw input into a known priority.
func ParsePriority(raw string) (Priority, error) {
	switch p := Priority(raw); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("unknown priority %q", raw)
	}
}

// Order is a funded request for work. Its amount is escrowed from the funding party on creation.
type Order struct {
	ID             uuid.UUID
	FundingPartyID uuid.UUID
	FulfillerID    *uuid.UUID
	Title          string
	Description    string
	Kind           OrderKind
	Priority       Priority
	Amount         decimal.Decimal
	Status         OrderStatus
	Deadline       *time.Time
	DeliveredAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsFundingParty reports whether user funded the order.
func (o *Order) IsFundingParty(userID uuid.UUID) bool {
	return o.FundingPartyID == userID
}

// IsFulfiller reports whether user is the assigned fulfiller.
func (o *Order) IsFulfiller(userID uuid.UUID) bool {
	return o.FulfillerID != nil && *o.FulfillerID == userID
}

// OrderStats counts orders per status.
type OrderStats map[OrderStatus]int
