package usecase

import (
	"testing"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
)

func TestSubmitReview(t *testing.T) {
	f := newMarketFixture(t)
	funding := f.user(model.RoleAdvertiser, "1000")
	order, fulfiller := f.assign(funding, "10")
	if _, _, err := f.lifecycle.ConfirmReceipt(f.ctx, funding, order.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	pending, err := f.reviews.PendingReviews(f.ctx, funding)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one pending review, got %d (%v)", len(pending), err)
	}
	reviewID := pending[0].ID

	_, _, err = f.reviews.SubmitReview(f.ctx, fulfiller, reviewID, 5, "")
	requireKind(t, err, domainErrors.ErrPermissionDenied)

	_, _, err = f.reviews.SubmitReview(f.ctx, funding, reviewID, 6, "")
	requireKind(t, err, domainErrors.ErrInvalidInput)

	review, events, err := f.reviews.SubmitReview(f.ctx, funding, reviewID, 4, " solid work ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if review.Status != model.ReviewStatusSubmitted || review.Rating == nil || *review.Rating != 4 || review.Comment != "solid work" {
		t.Fatalf("unexpected review %+v", review)
	}
	if len(events) != 1 || events[0].UserID != fulfiller.UserID || events[0].Name != model.EventReviewCreated {
		t.Fatalf("unexpected review events %+v", events)
	}

	_, _, err = f.reviews.SubmitReview(f.ctx, funding, reviewID, 3, "")
	requireKind(t, err, domainErrors.ErrInvalidState)

	if left, _ := f.reviews.PendingReviews(f.ctx, funding); len(left) != 0 {
		t.Fatalf("submitted review must leave the pending list, got %d", len(left))
	}

	_, _, err = f.reviews.SubmitReview(f.ctx, funding, uuid.New(), 3, "")
	requireKind(t, err, domainErrors.ErrNotFound)
}
