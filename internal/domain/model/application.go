package model

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus tracks a candidate bid.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusAccepted ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// Application is a candidate's bid on a pending order.
type Application struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	CandidateID uuid.UUID
	Message     string
	Status      ApplicationStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
