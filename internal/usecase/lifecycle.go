package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/domain/repository"
)

// OrderLifecycle runs every money and assignment transition of an order as one atomic unit.
// Each operation returns the events to deliver after the unit has committed; nothing is
// delivered for a failed operation.
type OrderLifecycle struct {
	tx  repository.Transactor
	now func() time.Time
}

// NewOrderLifecycle constructs OrderLifecycle.
func NewOrderLifecycle(tx repository.Transactor) *OrderLifecycle {
	return &OrderLifecycle{tx: tx, now: time.Now}
}

// PlaceOrderInput describes a new funding request.
type PlaceOrderInput struct {
	Title       string `validate:"required,max=200"`
	Description string `validate:"max=5000"`
	Kind        string `validate:"required"`
	Priority    string `validate:"required"`
	Amount      decimal.Decimal
	Deadline    *time.Time
}

// CancelResult reports how a cancellation request ended.
type CancelResult struct {
	Order    *model.Order
	Deleted  bool
	Refunded bool
}

// PlaceOrder escrows the amount from the caller's wallet and opens a PENDING order.
func (l *OrderLifecycle) PlaceOrder(ctx context.Context, actor model.Actor, in PlaceOrderInput) (*model.Order, []model.Event, error) {
	if actor.Role != model.RoleAdvertiser {
		return nil, nil, domainErrors.New(domainErrors.ErrPermissionDenied, "only advertisers can place orders")
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, nil, err
	}
	kind, err := model.ParseOrderKind(strings.ToUpper(in.Kind))
	if err != nil {
		return nil, nil, domainErrors.New(domainErrors.ErrInvalidInput, "%s", err.Error())
	}
	priority, err := model.ParsePriority(strings.ToUpper(in.Priority))
	if err != nil {
		return nil, nil, domainErrors.New(domainErrors.ErrInvalidInput, "%s", err.Error())
	}
	if err := validateAmount(in.Amount); err != nil {
		return nil, nil, err
	}
	if in.Deadline != nil && !in.Deadline.After(l.now()) {
		return nil, nil, domainErrors.New(domainErrors.ErrInvalidInput, "deadline must be in the future")
	}

	order := &model.Order{
		FundingPartyID: actor.UserID,
		Title:          in.Title,
		Description:    in.Description,
		Kind:           kind,
		Priority:       priority,
		Amount:         in.Amount,
		Status:         model.OrderStatusPending,
		Deadline:       in.Deadline,
	}

	err = l.tx.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		wallet, err := tx.LockWallet(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if wallet.Balance.LessThan(order.Amount) {
			return domainErrors.New(domainErrors.ErrInsufficientFunds,
				"balance %s is below order amount %s", wallet.Balance.StringFixed(2), order.Amount.StringFixed(2))
		}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		orderID := order.ID
		payment := &model.LedgerEntry{
			OwnerID: actor.UserID,
			OrderID: &orderID,
			Type:    model.EntryTypePayment,
			Amount:  order.Amount,
			Note:    "escrow for order " + order.Title,
		}
		if err := tx.AppendEntry(ctx, payment); err != nil {
			return err
		}
		return tx.AdjustWallet(ctx, actor.UserID, order.Amount.Neg())
	})
	if err != nil {
		return nil, nil, err
	}
	return order, nil, nil
}

// ApplyToOrder records the caller's application to an open order.
func (l *OrderLifecycle) ApplyToOrder(ctx context.Context, actor model.Actor, orderID uuid.UUID, message string) (*model.Application, []model.Event, error) {
	if actor.Role != model.RoleCreator {
		return nil, nil, domainErrors.New(domainErrors.ErrPermissionDenied, "only creators can apply to orders")
	}
	message = strings.TrimSpace(message)
	if len(message) > 2000 {
		return nil, nil, domainErrors.New(domainErrors.ErrInvalidInput, "message is too long")
	}

	var (
		app    *model.Application
		events []model.Event
	)
	err := l.tx.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.IsFundingParty(actor.UserID) {
			return domainErrors.New(domainErrors.ErrPermissionDenied, "cannot apply to your own order")
		}
		if order.Status != model.OrderStatusPending || order.FulfillerID != nil {
			return domainErrors.New(domainErrors.ErrInvalidState, "order %s is not open for applications", order.ID)
		}

		app = &model.Application{
			OrderID:     order.ID,
			CandidateID: actor.UserID,
			Message:     message,
			Status:      model.ApplicationStatusPending,
		}
		if err := tx.InsertApplication(ctx, app); err != nil {
			if errors.Is(err, domainErrors.ErrAlreadyExists) {
				return domainErrors.New(domainErrors.ErrInvalidState, "already applied to order %s", order.ID)
			}
			return err
		}

		events = []model.Event{
			model.NewEvent(order.FundingPartyID, model.EventApplicationCreated, map[string]any{
				"orderId":       order.ID.String(),
				"applicationId": app.ID.String(),
				"candidateId":   actor.UserID.String(),
			}),
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return app, events, nil
}

// AcceptApplication assigns the application's candidate as the order fulfiller and rejects
// every other pending application of the order.
func (l *OrderLifecycle) AcceptApplication(ctx context.Context, actor model.Actor, orderID, applicationID uuid.UUID) (*model.Order, []model.Event, error) {
	var (
		result *model.Order
		events []model.Event
	)
	err := l.tx.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.IsFundingParty(actor.UserID) {
			return domainErrors.New(domainErrors.ErrPermissionDenied, "only the funding party can accept applications")
		}

		app, err := tx.GetApplication(ctx, applicationID)
		if err != nil {
			return err
		}
		if app.OrderID != order.ID {
			return domainErrors.New(domainErrors.ErrNotFound, "application %s not found on order %s", applicationID, order.ID)
		}

		switch {
		case order.Status.Terminal():
			return domainErrors.New(domainErrors.ErrInvalidState, "order %s is %s", order.ID, order.Status)
		case order.Status != model.OrderStatusPending || order.FulfillerID != nil:
			return domainErrors.New(domainErrors.ErrConflict, "order %s already has a fulfiller", order.ID)
		}
		if app.Status != model.ApplicationStatusPending {
			return domainErrors.New(domainErrors.ErrInvalidState, "application %s is %s", app.ID, app.Status)
		}

		if err := tx.AssignFulfiller(ctx, order.ID, app.CandidateID); err != nil {
			return err
		}
		rejected, err := tx.AcceptApplication(ctx, order.ID, app.ID)
		if err != nil {
			return err
		}

		if result, err = tx.LockOrder(ctx, order.ID); err != nil {
			return err
		}

		events = make([]model.Event, 0, len(rejected)+1)
		events = append(events, model.NewEvent(app.CandidateID, model.EventApplicationAccepted, map[string]any{
			"orderId":       order.ID.String(),
			"applicationId": app.ID.String(),
		}))
		for _, r := range rejected {
			events = append(events, model.NewEvent(r.CandidateID, model.EventApplicationRejected, map[string]any{
				"orderId":       order.ID.String(),
				"applicationId": r.ID.String(),
			}))
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, events, nil
}

// CompleteOrder marks the work as delivered by the assigned fulfiller. No money moves.
func (l *OrderLifecycle) CompleteOrder(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.Order, []model.Event, error) {
	var (
		result *model.Order
		events []model.Event
	)
	err := l.tx.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.IsFulfiller(actor.UserID) {
			return domainErrors.New(domainErrors.ErrPermissionDenied, "only the assigned creator can complete the order")
		}
		if order.Status != model.OrderStatusInProgress {
			return domainErrors.New(domainErrors.ErrInvalidState, "order %s is %s", order.ID, order.Status)
		}
		if order.DeliveredAt != nil {
			return domainErrors.New(domainErrors.ErrInvalidState, "order %s is already delivered", order.ID)
		}

		if err := tx.MarkDelivered(ctx, order.ID); err != nil {
			return err
		}
		if result, err = tx.LockOrder(ctx, order.ID); err != nil {
			return err
		}

		events = []model.Event{
			model.NewEvent(order.FundingPartyID, model.EventOrderDelivered, map[string]any{
				"orderId": order.ID.String(),
			}),
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, events, nil
}

// ConfirmReceipt releases the escrowed amount to the fulfiller, completes the order and
// opens a review placeholder for each party.
func (l *OrderLifecycle) ConfirmReceipt(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.Order, []model.Event, error) {
	var (
		result *model.Order
		events []model.Event
	)
	err := l.tx.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.IsFundingParty(actor.UserID) {
			return domainErrors.New(domainErrors.ErrPermissionDenied, "only the funding party can confirm receipt")
		}
		switch order.Status {
		case model.OrderStatusInProgress:
		case model.OrderStatusCompleted:
			return domainErrors.New(domainErrors.ErrInvalidState, "order %s is already completed", order.ID)
		default:
			return domainErrors.New(domainErrors.ErrInvalidState, "order %s is %s", order.ID, order.Status)
		}
		if order.FulfillerID == nil {
			return domainErrors.New(domainErrors.ErrInvalidState, "order %s has no fulfiller", order.ID)
		}
		fulfillerID := *order.FulfillerID

		if _, err := tx.LockWallet(ctx, fulfillerID); err != nil {
			return err
		}
		payout := &model.LedgerEntry{
			OwnerID: fulfillerID,
			OrderID: &order.ID,
			Type:    model.EntryTypeCommission,
			Amount:  order.Amount,
			Note:    "payout for order " + order.Title,
		}
		if err := tx.AppendEntry(ctx, payout); err != nil {
			return err
		}
		if err := tx.AdjustWallet(ctx, fulfillerID, order.Amount); err != nil {
			return err
		}
		if err := tx.SetOrderStatus(ctx, order.ID, model.OrderStatusInProgress, model.OrderStatusCompleted); err != nil {
			return err
		}

		fundingReview := &model.Review{OrderID: order.ID, ReviewerID: order.FundingPartyID, RevieweeID: fulfillerID}
		if _, err := tx.EnsureReview(ctx, fundingReview); err != nil {
			return err
		}
		fulfillerReview := &model.Review{OrderID: order.ID, ReviewerID: fulfillerID, RevieweeID: order.FundingPartyID}
		if _, err := tx.EnsureReview(ctx, fulfillerReview); err != nil {
			return err
		}

		if result, err = tx.LockOrder(ctx, order.ID); err != nil {
			return err
		}

		events = []model.Event{
			model.NewEvent(fulfillerID, model.EventPayoutReleased, map[string]any{
				"orderId": order.ID.String(),
				"amount":  order.Amount.StringFixed(2),
			}),
			model.NewEvent(order.FundingPartyID, model.EventReviewRequested, map[string]any{
				"orderId":    order.ID.String(),
				"reviewId":   fundingReview.ID.String(),
				"revieweeId": fulfillerID.String(),
			}),
			model.NewEvent(fulfillerID, model.EventReviewRequested, map[string]any{
				"orderId":    order.ID.String(),
				"reviewId":   fulfillerReview.ID.String(),
				"revieweeId": order.FundingPartyID.String(),
			}),
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, events, nil
}

// CancelByFundingParty cancels a PENDING or IN_PROGRESS order. The escrow is not returned.
// A COMPLETED order is deleted instead.
func (l *OrderLifecycle) CancelByFundingParty(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*CancelResult, []model.Event, error) {
	return l.cancel(ctx, orderID, func(ctx context.Context, tx repository.Tx, order *model.Order) (*CancelResult, []model.Event, error) {
		if !order.IsFundingParty(actor.UserID) {
			return nil, nil, domainErrors.New(domainErrors.ErrPermissionDenied, "only the funding party can cancel this way")
		}
		return l.cancelAsFundingParty(ctx, tx, actor, order)
	})
}

// CancelByFulfiller withdraws the assigned fulfiller from an IN_PROGRESS order and refunds
// the escrow to the funding party. A COMPLETED order is deleted instead.
func (l *OrderLifecycle) CancelByFulfiller(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*CancelResult, []model.Event, error) {
	return l.cancel(ctx, orderID, func(ctx context.Context, tx repository.Tx, order *model.Order) (*CancelResult, []model.Event, error) {
		if !order.IsFulfiller(actor.UserID) {
			return nil, nil, domainErrors.New(domainErrors.ErrPermissionDenied, "only the assigned creator can cancel this way")
		}
		return l.cancelAsFulfiller(ctx, tx, actor, order)
	})
}

// CancelOrder picks the cancellation path from the caller's relation to the order.
func (l *OrderLifecycle) CancelOrder(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*CancelResult, []model.Event, error) {
	return l.cancel(ctx, orderID, func(ctx context.Context, tx repository.Tx, order *model.Order) (*CancelResult, []model.Event, error) {
		switch {
		case order.IsFundingParty(actor.UserID):
			return l.cancelAsFundingParty(ctx, tx, actor, order)
		case order.IsFulfiller(actor.UserID):
			return l.cancelAsFulfiller(ctx, tx, actor, order)
		default:
			return nil, nil, domainErrors.New(domainErrors.ErrPermissionDenied, "not a party to order %s", order.ID)
		}
	})
}

type cancelFunc func(ctx context.Context, tx repository.Tx, order *model.Order) (*CancelResult, []model.Event, error)

func (l *OrderLifecycle) cancel(ctx context.Context, orderID uuid.UUID, fn cancelFunc) (*CancelResult, []model.Event, error) {
	var (
		result *CancelResult
		events []model.Event
	)
	err := l.tx.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		result, events, err = fn(ctx, tx, order)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return result, events, nil
}

func (l *OrderLifecycle) cancelAsFundingParty(ctx context.Context, tx repository.Tx, actor model.Actor, order *model.Order) (*CancelResult, []model.Event, error) {
	switch order.Status {
	case model.OrderStatusCompleted:
		return l.deleteAsCancel(ctx, tx, actor, order)
	case model.OrderStatusCancelled:
		return nil, nil, domainErrors.New(domainErrors.ErrInvalidState, "order %s is already cancelled", order.ID)
	}

	if err := tx.SetOrderStatus(ctx, order.ID, order.Status, model.OrderStatusCancelled); err != nil {
		return nil, nil, err
	}
	cancelled, err := tx.LockOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}

	var events []model.Event
	if order.FulfillerID != nil {
		events = append(events, model.NewEvent(*order.FulfillerID, model.EventOrderCancelled, map[string]any{
			"orderId":     order.ID.String(),
			"cancelledBy": actor.UserID.String(),
			"refunded":    false,
		}))
	}
	return &CancelResult{Order: cancelled}, events, nil
}

func (l *OrderLifecycle) cancelAsFulfiller(ctx context.Context, tx repository.Tx, actor model.Actor, order *model.Order) (*CancelResult, []model.Event, error) {
	switch order.Status {
	case model.OrderStatusCompleted:
		return l.deleteAsCancel(ctx, tx, actor, order)
	case model.OrderStatusCancelled:
		return nil, nil, domainErrors.New(domainErrors.ErrInvalidState, "order %s is already cancelled", order.ID)
	case model.OrderStatusInProgress:
	default:
		return nil, nil, domainErrors.New(domainErrors.ErrInvalidState, "order %s is %s", order.ID, order.Status)
	}

	if err := tx.SetOrderStatus(ctx, order.ID, model.OrderStatusInProgress, model.OrderStatusCancelled); err != nil {
		return nil, nil, err
	}
	if _, err := tx.LockWallet(ctx, order.FundingPartyID); err != nil {
		return nil, nil, err
	}
	refund := &model.LedgerEntry{
		OwnerID: order.FundingPartyID,
		OrderID: &order.ID,
		Type:    model.EntryTypeRefund,
		Amount:  order.Amount,
		Note:    "refund for order " + order.Title,
	}
	if err := tx.AppendEntry(ctx, refund); err != nil {
		return nil, nil, err
	}
	if err := tx.AdjustWallet(ctx, order.FundingPartyID, order.Amount); err != nil {
		return nil, nil, err
	}
	cancelled, err := tx.LockOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}

	events := []model.Event{
		model.NewEvent(order.FundingPartyID, model.EventOrderCancelled, map[string]any{
			"orderId":     order.ID.String(),
			"cancelledBy": actor.UserID.String(),
			"refunded":    true,
			"amount":      order.Amount.StringFixed(2),
		}),
	}
	return &CancelResult{Order: cancelled, Refunded: true}, events, nil
}

func (l *OrderLifecycle) deleteAsCancel(ctx context.Context, tx repository.Tx, actor model.Actor, order *model.Order) (*CancelResult, []model.Event, error) {
	events, err := deleteLocked(ctx, tx, actor, order)
	if err != nil {
		return nil, nil, err
	}
	return &CancelResult{Order: order, Deleted: true}, events, nil
}

// DeleteOrder removes a COMPLETED or CANCELLED order together with its applications,
// materials and reviews. Ledger entries are kept and lose their order reference.
func (l *OrderLifecycle) DeleteOrder(ctx context.Context, actor model.Actor, orderID uuid.UUID) ([]model.Event, error) {
	var events []model.Event
	err := l.tx.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		events, err = deleteLocked(ctx, tx, actor, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func deleteLocked(ctx context.Context, tx repository.Tx, actor model.Actor, order *model.Order) ([]model.Event, error) {
	var counterpart *uuid.UUID
	switch {
	case order.IsFundingParty(actor.UserID):
		counterpart = order.FulfillerID
	case order.IsFulfiller(actor.UserID):
		funding := order.FundingPartyID
		counterpart = &funding
	default:
		return nil, domainErrors.New(domainErrors.ErrPermissionDenied, "not a party to order %s", order.ID)
	}
	if !order.Status.Terminal() {
		return nil, domainErrors.New(domainErrors.ErrInvalidState, "order %s is %s, only completed or cancelled orders can be deleted", order.ID, order.Status)
	}

	if err := tx.DeleteOrder(ctx, order.ID); err != nil {
		return nil, err
	}

	if counterpart == nil {
		return nil, nil
	}
	return []model.Event{
		model.NewEvent(*counterpart, model.EventOrderDeleted, map[string]any{
			"orderId":   order.ID.String(),
			"deletedBy": actor.UserID.String(),
		}),
	}, nil
}
