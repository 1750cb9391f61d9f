// Package facades provides transport facade stubs with function overrides.
package facades

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/notify"
	"github.com/polkiloo/adbroker/internal/usecase"
)

// AuthFacadeStub provides controllable behaviour for authentication endpoints.
type AuthFacadeStub struct {
	RegisterFn     func(ctx context.Context, login, password, role string) (*model.User, string, error)
	AuthenticateFn func(ctx context.Context, login, password string) (*model.User, string, error)
	ParseFn        func(token string) (model.Actor, error)
	MeFn           func(ctx context.Context, actor model.Actor) (*model.User, error)
}

// Register delegates to override or returns a fresh user with "token".
func (s AuthFacadeStub) Register(ctx context.Context, login, password, role string) (*model.User, string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password, role)
	}
	return &model.User{ID: uuid.New(), Login: login, Role: model.Role(role)}, "token", nil
}

// Authenticate delegates to override or succeeds with "token".
func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return &model.User{ID: uuid.New(), Login: login, Role: model.RoleAdvertiser}, "token", nil
}

// ParseToken returns an advertiser actor unless overridden.
func (s AuthFacadeStub) ParseToken(token string) (model.Actor, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return model.Actor{UserID: uuid.New(), Role: model.RoleAdvertiser}, nil
}

// Me returns a creator profile for the actor unless overridden.
func (s AuthFacadeStub) Me(ctx context.Context, actor model.Actor) (*model.User, error) {
	if s.MeFn != nil {
		return s.MeFn(ctx, actor)
	}
	return &model.User{ID: actor.UserID, Login: "stub", Role: actor.Role}, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	PlaceFn        func(context.Context, model.Actor, usecase.PlaceOrderInput) (*model.Order, error)
	OrderFn        func(context.Context, model.Actor, uuid.UUID) (*model.Order, error)
	OrdersFn       func(context.Context, model.Actor) ([]model.Order, error)
	OpenFn         func(context.Context, model.Actor, int) ([]model.Order, error)
	StatsFn        func(context.Context, model.Actor) (model.OrderStats, error)
	ApplyFn        func(context.Context, model.Actor, uuid.UUID, string) (*model.Application, error)
	ApplicationsFn func(context.Context, model.Actor, uuid.UUID) ([]model.Application, error)
	AcceptFn       func(context.Context, model.Actor, uuid.UUID, uuid.UUID) (*model.Order, error)
	CompleteFn     func(context.Context, model.Actor, uuid.UUID) (*model.Order, error)
	ConfirmFn      func(context.Context, model.Actor, uuid.UUID) (*model.Order, error)
	CancelFn       func(context.Context, model.Actor, uuid.UUID) (*usecase.CancelResult, error)
	DeleteFn       func(context.Context, model.Actor, uuid.UUID) error
}

func stubOrder(id uuid.UUID, status model.OrderStatus) *model.Order {
	now := time.Unix(0, 0).UTC()
	return &model.Order{
		ID:        id,
		Title:     "stub",
		Kind:      model.OrderKindVideo,
		Priority:  model.PriorityMedium,
		Amount:    decimal.NewFromInt(100),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s OrderFacadeStub) PlaceOrder(ctx context.Context, actor model.Actor, in usecase.PlaceOrderInput) (*model.Order, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, actor, in)
	}
	order := stubOrder(uuid.New(), model.OrderStatusPending)
	order.FundingPartyID = actor.UserID
	order.Title = in.Title
	order.Amount = in.Amount
	return order, nil
}

func (s OrderFacadeStub) Order(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, actor, orderID)
	}
	return stubOrder(orderID, model.OrderStatusPending), nil
}

func (s OrderFacadeStub) Orders(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, actor)
	}
	return []model.Order{*stubOrder(uuid.New(), model.OrderStatusPending)}, nil
}

func (s OrderFacadeStub) OpenOrders(ctx context.Context, actor model.Actor, limit int) ([]model.Order, error) {
	if s.OpenFn != nil {
		return s.OpenFn(ctx, actor, limit)
	}
	return nil, nil
}

func (s OrderFacadeStub) OrderStats(ctx context.Context, actor model.Actor) (model.OrderStats, error) {
	if s.StatsFn != nil {
		return s.StatsFn(ctx, actor)
	}
	return model.OrderStats{}, nil
}

func (s OrderFacadeStub) Apply(ctx context.Context, actor model.Actor, orderID uuid.UUID, message string) (*model.Application, error) {
	if s.ApplyFn != nil {
		return s.ApplyFn(ctx, actor, orderID, message)
	}
	return &model.Application{
		ID:          uuid.New(),
		OrderID:     orderID,
		CandidateID: actor.UserID,
		Message:     message,
		Status:      model.ApplicationStatusPending,
	}, nil
}

func (s OrderFacadeStub) Applications(ctx context.Context, actor model.Actor, orderID uuid.UUID) ([]model.Application, error) {
	if s.ApplicationsFn != nil {
		return s.ApplicationsFn(ctx, actor, orderID)
	}
	return nil, nil
}

func (s OrderFacadeStub) Accept(ctx context.Context, actor model.Actor, orderID, applicationID uuid.UUID) (*model.Order, error) {
	if s.AcceptFn != nil {
		return s.AcceptFn(ctx, actor, orderID, applicationID)
	}
	return stubOrder(orderID, model.OrderStatusInProgress), nil
}

func (s OrderFacadeStub) Complete(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.Order, error) {
	if s.CompleteFn != nil {
		return s.CompleteFn(ctx, actor, orderID)
	}
	order := stubOrder(orderID, model.OrderStatusInProgress)
	delivered := time.Unix(60, 0).UTC()
	order.DeliveredAt = &delivered
	return order, nil
}

func (s OrderFacadeStub) Confirm(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.Order, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, actor, orderID)
	}
	return stubOrder(orderID, model.OrderStatusCompleted), nil
}

func (s OrderFacadeStub) Cancel(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*usecase.CancelResult, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, actor, orderID)
	}
	return &usecase.CancelResult{Order: stubOrder(orderID, model.OrderStatusCancelled)}, nil
}

func (s OrderFacadeStub) Delete(ctx context.Context, actor model.Actor, orderID uuid.UUID) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, actor, orderID)
	}
	return nil
}

// WalletFacadeStub simulates wallet operations.
type WalletFacadeStub struct {
	WalletFn       func(context.Context, model.Actor) (*model.Wallet, error)
	DepositFn      func(context.Context, model.Actor, decimal.Decimal) (*model.LedgerEntry, error)
	WithdrawFn     func(context.Context, model.Actor, decimal.Decimal, string) (*model.LedgerEntry, error)
	TransactionsFn func(context.Context, model.Actor) ([]model.LedgerEntry, error)
}

// Wallet returns a balance of 10 unless overridden.
func (s WalletFacadeStub) Wallet(ctx context.Context, actor model.Actor) (*model.Wallet, error) {
	if s.WalletFn != nil {
		return s.WalletFn(ctx, actor)
	}
	return &model.Wallet{UserID: actor.UserID, Balance: decimal.NewFromInt(10)}, nil
}

func (s WalletFacadeStub) Deposit(ctx context.Context, actor model.Actor, amount decimal.Decimal) (*model.LedgerEntry, error) {
	if s.DepositFn != nil {
		return s.DepositFn(ctx, actor, amount)
	}
	return &model.LedgerEntry{ID: uuid.New(), OwnerID: actor.UserID, Type: model.EntryTypeDeposit, Status: model.EntryStatusCompleted, Amount: amount}, nil
}

func (s WalletFacadeStub) Withdraw(ctx context.Context, actor model.Actor, amount decimal.Decimal, card string) (*model.LedgerEntry, error) {
	if s.WithdrawFn != nil {
		return s.WithdrawFn(ctx, actor, amount, card)
	}
	return &model.LedgerEntry{ID: uuid.New(), OwnerID: actor.UserID, Type: model.EntryTypeWithdrawal, Status: model.EntryStatusCompleted, Amount: amount}, nil
}

// Transactions returns preconfigured history.
func (s WalletFacadeStub) Transactions(ctx context.Context, actor model.Actor) ([]model.LedgerEntry, error) {
	if s.TransactionsFn != nil {
		return s.TransactionsFn(ctx, actor)
	}
	return []model.LedgerEntry{{
		ID:        uuid.New(),
		OwnerID:   actor.UserID,
		Type:      model.EntryTypeDeposit,
		Status:    model.EntryStatusCompleted,
		Amount:    decimal.NewFromInt(10),
		CreatedAt: time.Unix(0, 0).UTC(),
	}}, nil
}

// ReviewFacadeStub simulates review operations.
type ReviewFacadeStub struct {
	PendingFn func(context.Context, model.Actor) ([]model.Review, error)
	SubmitFn  func(context.Context, model.Actor, uuid.UUID, int, string) (*model.Review, error)
}

func (s ReviewFacadeStub) PendingReviews(ctx context.Context, actor model.Actor) ([]model.Review, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx, actor)
	}
	return nil, nil
}

func (s ReviewFacadeStub) SubmitReview(ctx context.Context, actor model.Actor, reviewID uuid.UUID, rating int, comment string) (*model.Review, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, actor, reviewID, rating, comment)
	}
	return &model.Review{ID: reviewID, ReviewerID: actor.UserID, Status: model.ReviewStatusSubmitted, Rating: &rating, Comment: comment}, nil
}

// MessageFacadeStub simulates direct messaging.
type MessageFacadeStub struct {
	SendFn          func(context.Context, model.Actor, uuid.UUID, string, string) (*model.Message, error)
	MessagesFn      func(context.Context, model.Actor, model.MessageFilter) ([]model.Message, int, error)
	ConversationsFn func(context.Context, model.Actor) ([]model.Conversation, error)
	ThreadFn        func(context.Context, model.Actor, uuid.UUID, int, *time.Time) ([]model.Message, error)
	MarkReadFn      func(context.Context, model.Actor, uuid.UUID) error
	UnreadFn        func(context.Context, model.Actor) (int, error)
	DeleteFn        func(context.Context, model.Actor, uuid.UUID) error
}

func (s MessageFacadeStub) SendMessage(ctx context.Context, actor model.Actor, receiverID uuid.UUID, kind, content string) (*model.Message, error) {
	if s.SendFn != nil {
		return s.SendFn(ctx, actor, receiverID, kind, content)
	}
	return &model.Message{
		ID:         uuid.New(),
		SenderID:   actor.UserID,
		ReceiverID: receiverID,
		Kind:       model.MessageKindText,
		Content:    content,
		Status:     model.MessageStatusUnread,
		CreatedAt:  time.Unix(0, 0).UTC(),
	}, nil
}

func (s MessageFacadeStub) Messages(ctx context.Context, actor model.Actor, filter model.MessageFilter) ([]model.Message, int, error) {
	if s.MessagesFn != nil {
		return s.MessagesFn(ctx, actor, filter)
	}
	return nil, 0, nil
}

func (s MessageFacadeStub) Conversations(ctx context.Context, actor model.Actor) ([]model.Conversation, error) {
	if s.ConversationsFn != nil {
		return s.ConversationsFn(ctx, actor)
	}
	return nil, nil
}

func (s MessageFacadeStub) Thread(ctx context.Context, actor model.Actor, contactID uuid.UUID, limit int, before *time.Time) ([]model.Message, error) {
	if s.ThreadFn != nil {
		return s.ThreadFn(ctx, actor, contactID, limit, before)
	}
	return nil, nil
}

func (s MessageFacadeStub) MarkMessageRead(ctx context.Context, actor model.Actor, messageID uuid.UUID) error {
	if s.MarkReadFn != nil {
		return s.MarkReadFn(ctx, actor, messageID)
	}
	return nil
}

func (s MessageFacadeStub) UnreadMessages(ctx context.Context, actor model.Actor) (int, error) {
	if s.UnreadFn != nil {
		return s.UnreadFn(ctx, actor)
	}
	return 0, nil
}

func (s MessageFacadeStub) DeleteMessage(ctx context.Context, actor model.Actor, messageID uuid.UUID) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, actor, messageID)
	}
	return nil
}

// MaterialFacadeStub simulates attachment operations.
type MaterialFacadeStub struct {
	AttachFn func(context.Context, model.Actor, uuid.UUID, string, string) (*model.Material, error)
	ListFn   func(context.Context, model.Actor, uuid.UUID) ([]model.Material, error)
}

func (s MaterialFacadeStub) AttachMaterial(ctx context.Context, actor model.Actor, orderID uuid.UUID, name, url string) (*model.Material, error) {
	if s.AttachFn != nil {
		return s.AttachFn(ctx, actor, orderID, name, url)
	}
	return &model.Material{ID: uuid.New(), OrderID: orderID, UploaderID: actor.UserID, Name: name, URL: url}, nil
}

func (s MaterialFacadeStub) Materials(ctx context.Context, actor model.Actor, orderID uuid.UUID) ([]model.Material, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, actor, orderID)
	}
	return nil, nil
}

// PresenceFacadeStub hands out preconfigured notification streams.
type PresenceFacadeStub struct {
	SubscribeFn func(model.Actor) (<-chan notify.Message, func())
	OnlineFn    func(uuid.UUID) bool
}

// Subscribe returns an already closed stream unless overridden.
func (s PresenceFacadeStub) Subscribe(actor model.Actor) (<-chan notify.Message, func()) {
	if s.SubscribeFn != nil {
		return s.SubscribeFn(actor)
	}
	ch := make(chan notify.Message)
	close(ch)
	return ch, func() {}
}

func (s PresenceFacadeStub) IsOnline(userID uuid.UUID) bool {
	if s.OnlineFn != nil {
		return s.OnlineFn(userID)
	}
	return false
}

type HealthFacadeStub struct {
	Err error
}

func (s HealthFacadeStub) Health(context.Context) error {
	return s.Err
}

// MarketFacadeStub aggregates all facade stubs.
type MarketFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	WalletFacadeStub
	ReviewFacadeStub
	MaterialFacadeStub
	MessageFacadeStub
	PresenceFacadeStub
	HealthFacadeStub
}
