package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/server/http/dto"
)

type ReviewHandler struct {
	facade ReviewFacade
}

func NewReviewHandler(facade ReviewFacade) *ReviewHandler {
	return &ReviewHandler{facade: facade}
}

// Pending handles GET /api/reviews/pending.
func (h *ReviewHandler) Pending(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	reviews, err := h.facade.PendingReviews(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		resp = append(resp, toReviewResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// Submit handles POST /api/reviews/:id.
func (h *ReviewHandler) Submit(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	reviewID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.SubmitReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.facade.SubmitReview(c.Request.Context(), actor, reviewID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponse(*review))
}

func toReviewResponse(r model.Review) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:         r.ID,
		OrderID:    r.OrderID,
		ReviewerID: r.ReviewerID,
		RevieweeID: r.RevieweeID,
		Status:     string(r.Status),
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
