package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ReviewResponse struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"orderId"`
	ReviewerID uuid.UUID `json:"reviewerId"`
	RevieweeID uuid.UUID `json:"revieweeId"`
	Status     string    `json:"status"`
	Rating     *int      `json:"rating,omitempty"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// OnlineResponse reports presence of a user.
type OnlineResponse struct {
	UserID uuid.UUID `json:"userId"`
	Online bool      `json:"online"`
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
