package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/domain/repository"
)

// ReviewUseCase lets order parties rate each other once an order is completed.
type ReviewUseCase struct {
	reviews repository.ReviewRepository
	tx      repository.Transactor
}

// NewReviewUseCase constructs ReviewUseCase.
func NewReviewUseCase(reviews repository.ReviewRepository, tx repository.Transactor) *ReviewUseCase {
	return &ReviewUseCase{reviews: reviews, tx: tx}
}

type reviewInput struct {
	Rating  int    `validate:"min=1,max=5"`
	Comment string `validate:"max=2000"`
}

// PendingReviews lists placeholders waiting for the caller's rating.
func (u *ReviewUseCase) PendingReviews(ctx context.Context, actor model.Actor) ([]model.Review, error) {
	return u.reviews.ListPending(ctx, actor.UserID)
}

// SubmitReview fills a pending placeholder. Only its reviewer may submit, and only once.
func (u *ReviewUseCase) SubmitReview(ctx context.Context, actor model.Actor, reviewID uuid.UUID, rating int, comment string) (*model.Review, []model.Event, error) {
	in := reviewInput{Rating: rating, Comment: strings.TrimSpace(comment)}
	if err := validateInput(in); err != nil {
		return nil, nil, err
	}

	var (
		result *model.Review
		events []model.Event
	)
	err := u.tx.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		review, err := tx.LockReview(ctx, reviewID)
		if err != nil {
			return err
		}
		if review.ReviewerID != actor.UserID {
			return domainErrors.New(domainErrors.ErrPermissionDenied, "review %s belongs to another user", review.ID)
		}
		if review.Status != model.ReviewStatusPending {
			return domainErrors.New(domainErrors.ErrInvalidState, "review %s is already submitted", review.ID)
		}

		if err := tx.SubmitReview(ctx, review.ID, in.Rating, in.Comment); err != nil {
			return err
		}
		if result, err = tx.LockReview(ctx, review.ID); err != nil {
			return err
		}

		events = []model.Event{
			model.NewEvent(review.RevieweeID, model.EventReviewCreated, map[string]any{
				"orderId":    review.OrderID.String(),
				"reviewId":   review.ID.String(),
				"reviewerId": actor.UserID.String(),
				"rating":     in.Rating,
			}),
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, events, nil
}
