package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletResponse represents the caller's spendable balance.
type WalletResponse struct {
	UserID  uuid.UUID       `json:"userId"`
	Balance decimal.Decimal `json:"balance"`
}

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// WithdrawRequest describes a payout to a card.
type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Card   string          `json:"card"`
}

// LedgerEntryResponse describes one wallet movement.
type LedgerEntryResponse struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   *uuid.UUID      `json:"orderId,omitempty"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
