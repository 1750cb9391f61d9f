package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role describes what a user may do on the marketplace.
type Role string

const (
	RoleAdvertiser Role = "ADVERTISER"
	RoleCreator    Role = "CREATOR"
	RoleAdmin      Role = "ADMIN"
)

// ParseRole converts raw input into a known role.
func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleAdvertiser, RoleCreator, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// User represents a registered marketplace account with its wallet.
type User struct {
	ID            uuid.UUID
	Login         string
	PasswordHash  string
	Role          Role
	WalletBalance decimal.Decimal
	CreatedAt     time.Time
}

// Actor identifies the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}
