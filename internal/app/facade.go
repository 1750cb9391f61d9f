package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/domain/repository"
	"github.com/polkiloo/adbroker/internal/metrics"
	"github.com/polkiloo/adbroker/internal/notify"
	"github.com/polkiloo/adbroker/internal/usecase"
)

// EventPublisher accepts committed events for asynchronous delivery.
type EventPublisher interface {
	Publish(events ...model.Event) int
}

// MarketFacade is the single entry point used by transport adapters. It records operation
// metrics and hands post-commit events to the publisher.
type MarketFacade struct {
	auth      *usecase.AuthUseCase
	lifecycle *usecase.OrderLifecycle
	queries   *usecase.OrderQueries
	wallet    *usecase.WalletUseCase
	reviews   *usecase.ReviewUseCase
	materials *usecase.MaterialUseCase
	messages  *usecase.MessageUseCase
	hub       *notify.Hub
	events    EventPublisher
	metrics   *metrics.Metrics
	storage   repository.Factory
}

// FacadeParams lists the facade dependencies.
type FacadeParams struct {
	fx.In

	Auth      *usecase.AuthUseCase
	Lifecycle *usecase.OrderLifecycle
	Queries   *usecase.OrderQueries
	Wallet    *usecase.WalletUseCase
	Reviews   *usecase.ReviewUseCase
	Materials *usecase.MaterialUseCase
	Messages  *usecase.MessageUseCase
	Hub       *notify.Hub
	Events    EventPublisher
	Metrics   *metrics.Metrics
	Storage   repository.Factory
}

func NewMarketFacade(p FacadeParams) *MarketFacade {
	return &MarketFacade{
		auth:      p.Auth,
		lifecycle: p.Lifecycle,
		queries:   p.Queries,
		wallet:    p.Wallet,
		reviews:   p.Reviews,
		materials: p.Materials,
		messages:  p.Messages,
		hub:       p.Hub,
		events:    p.Events,
		metrics:   p.Metrics,
		storage:   p.Storage,
	}
}

func (f *MarketFacade) observe(operation string, events []model.Event, err error) {
	f.metrics.ObserveOperation(operation, err)
	if err == nil && len(events) > 0 {
		f.events.Publish(events...)
	}
}

func (f *MarketFacade) Register(ctx context.Context, login, password, role string) (*model.User, string, error) {
	user, token, err := f.auth.Register(ctx, login, password, role)
	f.observe("register", nil, err)
	return user, token, err
}

func (f *MarketFacade) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	user, token, err := f.auth.Authenticate(ctx, login, password)
	f.observe("login", nil, err)
	return user, token, err
}

func (f *MarketFacade) ParseToken(token string) (model.Actor, error) {
	return f.auth.ParseToken(token)
}

// Me returns the profile behind the caller's token.
func (f *MarketFacade) Me(ctx context.Context, actor model.Actor) (*model.User, error) {
	return f.auth.GetByID(ctx, actor.UserID)
}

func (f *MarketFacade) PlaceOrder(ctx context.Context, actor model.Actor, in usecase.PlaceOrderInput) (*model.Order, error) {
	order, events, err := f.lifecycle.PlaceOrder(ctx, actor, in)
	f.observe("place_order", events, err)
	return order, err
}

func (f *MarketFacade) Order(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.Order, error) {
	return f.queries.GetOrder(ctx, actor, orderID)
}

func (f *MarketFacade) Orders(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	return f.queries.ListOrders(ctx, actor)
}

func (f *MarketFacade) OpenOrders(ctx context.Context, actor model.Actor, limit int) ([]model.Order, error) {
	return f.queries.ListOpenOrders(ctx, actor, limit)
}

func (f *MarketFacade) OrderStats(ctx context.Context, actor model.Actor) (model.OrderStats, error) {
	return f.queries.Stats(ctx, actor)
}

func (f *MarketFacade) Apply(ctx context.Context, actor model.Actor, orderID uuid.UUID, message string) (*model.Application, error) {
	application, events, err := f.lifecycle.ApplyToOrder(ctx, actor, orderID, message)
	f.observe("apply", events, err)
	return application, err
}

func (f *MarketFacade) Applications(ctx context.Context, actor model.Actor, orderID uuid.UUID) ([]model.Application, error) {
	return f.queries.ListApplications(ctx, actor, orderID)
}

func (f *MarketFacade) Accept(ctx context.Context, actor model.Actor, orderID, applicationID uuid.UUID) (*model.Order, error) {
	order, events, err := f.lifecycle.AcceptApplication(ctx, actor, orderID, applicationID)
	f.observe("accept", events, err)
	return order, err
}

func (f *MarketFacade) Complete(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.Order, error) {
	order, events, err := f.lifecycle.CompleteOrder(ctx, actor, orderID)
	f.observe("complete", events, err)
	return order, err
}

func (f *MarketFacade) Confirm(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.Order, error) {
	order, events, err := f.lifecycle.ConfirmReceipt(ctx, actor, orderID)
	f.observe("confirm", events, err)
	return order, err
}

func (f *MarketFacade) Cancel(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*usecase.CancelResult, error) {
	result, events, err := f.lifecycle.CancelOrder(ctx, actor, orderID)
	f.observe("cancel", events, err)
	return result, err
}

func (f *MarketFacade) Delete(ctx context.Context, actor model.Actor, orderID uuid.UUID) error {
	events, err := f.lifecycle.DeleteOrder(ctx, actor, orderID)
	f.observe("delete", events, err)
	return err
}

func (f *MarketFacade) AttachMaterial(ctx context.Context, actor model.Actor, orderID uuid.UUID, name, url string) (*model.Material, error) {
	material, err := f.materials.AttachMaterial(ctx, actor, orderID, name, url)
	f.observe("attach_material", nil, err)
	return material, err
}

func (f *MarketFacade) Materials(ctx context.Context, actor model.Actor, orderID uuid.UUID) ([]model.Material, error) {
	return f.materials.ListMaterials(ctx, actor, orderID)
}

func (f *MarketFacade) Wallet(ctx context.Context, actor model.Actor) (*model.Wallet, error) {
	return f.wallet.Wallet(ctx, actor)
}

func (f *MarketFacade) Deposit(ctx context.Context, actor model.Actor, amount decimal.Decimal) (*model.LedgerEntry, error) {
	entry, err := f.wallet.Deposit(ctx, actor, amount)
	f.observe("deposit", nil, err)
	return entry, err
}

func (f *MarketFacade) Withdraw(ctx context.Context, actor model.Actor, amount decimal.Decimal, card string) (*model.LedgerEntry, error) {
	entry, err := f.wallet.Withdraw(ctx, actor, amount, card)
	f.observe("withdraw", nil, err)
	return entry, err
}

func (f *MarketFacade) Transactions(ctx context.Context, actor model.Actor) ([]model.LedgerEntry, error) {
	return f.wallet.Transactions(ctx, actor)
}

func (f *MarketFacade) PendingReviews(ctx context.Context, actor model.Actor) ([]model.Review, error) {
	return f.reviews.PendingReviews(ctx, actor)
}

func (f *MarketFacade) SubmitReview(ctx context.Context, actor model.Actor, reviewID uuid.UUID, rating int, comment string) (*model.Review, error) {
	review, events, err := f.reviews.SubmitReview(ctx, actor, reviewID, rating, comment)
	f.observe("submit_review", events, err)
	return review, err
}

func (f *MarketFacade) SendMessage(ctx context.Context, actor model.Actor, receiverID uuid.UUID, kind, content string) (*model.Message, error) {
	message, events, err := f.messages.SendMessage(ctx, actor, receiverID, kind, content)
	f.observe("send_message", events, err)
	return message, err
}

func (f *MarketFacade) Messages(ctx context.Context, actor model.Actor, filter model.MessageFilter) ([]model.Message, int, error) {
	return f.messages.ListMessages(ctx, actor, filter)
}

func (f *MarketFacade) Conversations(ctx context.Context, actor model.Actor) ([]model.Conversation, error) {
	return f.messages.Conversations(ctx, actor)
}

// Thread reads the exchange with a contact and tells the contact how many of their messages were read.
func (f *MarketFacade) Thread(ctx context.Context, actor model.Actor, contactID uuid.UUID, limit int, before *time.Time) ([]model.Message, error) {
	thread, events, err := f.messages.Thread(ctx, actor, contactID, limit, before)
	f.observe("read_thread", events, err)
	return thread, err
}

func (f *MarketFacade) MarkMessageRead(ctx context.Context, actor model.Actor, messageID uuid.UUID) error {
	err := f.messages.MarkRead(ctx, actor, messageID)
	f.observe("mark_message_read", nil, err)
	return err
}

func (f *MarketFacade) UnreadMessages(ctx context.Context, actor model.Actor) (int, error) {
	return f.messages.UnreadCount(ctx, actor)
}

func (f *MarketFacade) DeleteMessage(ctx context.Context, actor model.Actor, messageID uuid.UUID) error {
	err := f.messages.DeleteMessage(ctx, actor, messageID)
	f.observe("delete_message", nil, err)
	return err
}

// Subscribe registers a live notification stream for the caller.
func (f *MarketFacade) Subscribe(actor model.Actor) (<-chan notify.Message, func()) {
	return f.hub.Subscribe(actor.UserID)
}

func (f *MarketFacade) IsOnline(userID uuid.UUID) bool {
	return f.hub.IsOnline(userID)
}

// Health pings the storage backend.
func (f *MarketFacade) Health(ctx context.Context) error {
	return f.storage.HealthCheck(ctx)
}
