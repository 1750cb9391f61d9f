package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType classifies a money movement.
type EntryType string

const (
	EntryTypeDeposit    EntryType = "DEPOSIT"
	EntryTypeWithdrawal EntryType = "WITHDRAWAL"
	EntryTypePayment    EntryType = "PAYMENT"
	EntryTypeRefund     EntryType = "REFUND"
	EntryTypeCommission EntryType = "COMMISSION"
)

// Sign returns +1 for credits and -1 for debits.
func (t EntryType) Sign() int {
	switch t {
	case EntryTypeWithdrawal, EntryTypePayment:
		return -1
	default:
		return 1
	}
}

// EntryStatus is always completed; partial settlement is not modelled.
type EntryStatus string

const EntryStatusCompleted EntryStatus = "COMPLETED"

// LedgerEntry is an immutable record of one money movement owned by a user.
type LedgerEntry struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	OrderID   *uuid.UUID
	Type      EntryType
	Status    EntryStatus
	Amount    decimal.Decimal
	Note      string
	CreatedAt time.Time
}

// Signed returns the amount with the direction applied to the owner's wallet.
func (e LedgerEntry) Signed() decimal.Decimal {
	if e.Type.Sign() < 0 {
		return e.Amount.Neg()
	}
	return e.Amount
}

// Wallet is the locked view of a user balance inside an atomic unit.
type Wallet struct {
	UserID  uuid.UUID
	Balance decimal.Decimal
}
