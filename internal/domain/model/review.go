package model

import (
	"time"

	"github.com/google/uuid"
)

type ReviewStatus string

const (
	ReviewStatusPending   ReviewStatus = "PENDING"
	ReviewStatusSubmitted ReviewStatus = "SUBMITTED"
)

// Review is created as a pending placeholder when an order completes.
type Review struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	ReviewerID uuid.UUID
	RevieweeID uuid.UUID
	Status     ReviewStatus
	Rating     *int
	Comment    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Material references an attachment kept in external storage.
type Material struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	UploaderID uuid.UUID
	Name       string
	URL        string
	CreatedAt  time.Time
}
