package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlaceOrderRequest describes a funding request. Amount accepts both JSON numbers and strings.
type PlaceOrderRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Kind        string          `json:"kind"`
	Priority    string          `json:"priority"`
	Amount      decimal.Decimal `json:"amount"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
}

type OrderResponse struct {
	ID             uuid.UUID       `json:"id"`
	FundingPartyID uuid.UUID       `json:"fundingPartyId"`
	FulfillerID    *uuid.UUID      `json:"fulfillerId,omitempty"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Kind           string          `json:"kind"`
	Priority       string          `json:"priority"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	Deadline       *time.Time      `json:"deadline,omitempty"`
	DeliveredAt    *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// CancelResponse reports how a cancellation ended. Order is omitted when it was deleted.
type CancelResponse struct {
	Order    *OrderResponse `json:"order,omitempty"`
	Deleted  bool           `json:"deleted"`
	Refunded bool           `json:"refunded"`
}

type ApplyRequest struct {
	Message string `json:"message"`
}

type ApplicationResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"orderId"`
	CandidateID uuid.UUID `json:"candidateId"`
	Message     string    `json:"message,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StatsResponse counts the caller's orders per status.
type StatsResponse map[string]int

type AttachMaterialRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type MaterialResponse struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"orderId"`
	UploaderID uuid.UUID `json:"uploaderId"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"createdAt"`
}
