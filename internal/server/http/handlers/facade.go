package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/notify"
	"github.com/polkiloo/adbroker/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password, role string) (*model.User, string, error)
	Authenticate(ctx context.Context, login, password string) (*model.User, string, error)
	ParseToken(token string) (model.Actor, error)
	Me(ctx context.Context, actor model.Actor) (*model.User, error)
}

// OrderFacade encapsulates order lifecycle operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, actor model.Actor, in usecase.PlaceOrderInput) (*model.Order, error)
	Order(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.Order, error)
	Orders(ctx context.Context, actor model.Actor) ([]model.Order, error)
	OpenOrders(ctx context.Context, actor model.Actor, limit int) ([]model.Order, error)
	OrderStats(ctx context.Context, actor model.Actor) (model.OrderStats, error)
	Apply(ctx context.Context, actor model.Actor, orderID uuid.UUID, message string) (*model.Application, error)
	Applications(ctx context.Context, actor model.Actor, orderID uuid.UUID) ([]model.Application, error)
	Accept(ctx context.Context, actor model.Actor, orderID, applicationID uuid.UUID) (*model.Order, error)
	Complete(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.Order, error)
	Confirm(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.Order, error)
	Cancel(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*usecase.CancelResult, error)
	Delete(ctx context.Context, actor model.Actor, orderID uuid.UUID) error
}

// MaterialFacade manages attachments of an order.
type MaterialFacade interface {
	AttachMaterial(ctx context.Context, actor model.Actor, orderID uuid.UUID, name, url string) (*model.Material, error)
	Materials(ctx context.Context, actor model.Actor, orderID uuid.UUID) ([]model.Material, error)
}

// WalletFacade provides wallet related operations.
type WalletFacade interface {
	Wallet(ctx context.Context, actor model.Actor) (*model.Wallet, error)
	Deposit(ctx context.Context, actor model.Actor, amount decimal.Decimal) (*model.LedgerEntry, error)
	Withdraw(ctx context.Context, actor model.Actor, amount decimal.Decimal, card string) (*model.LedgerEntry, error)
	Transactions(ctx context.Context, actor model.Actor) ([]model.LedgerEntry, error)
}

type ReviewFacade interface {
	PendingReviews(ctx context.Context, actor model.Actor) ([]model.Review, error)
	SubmitReview(ctx context.Context, actor model.Actor, reviewID uuid.UUID, rating int, comment string) (*model.Review, error)
}

// MessageFacade carries direct messages between users.
type MessageFacade interface {
	SendMessage(ctx context.Context, actor model.Actor, receiverID uuid.UUID, kind, content string) (*model.Message, error)
	Messages(ctx context.Context, actor model.Actor, filter model.MessageFilter) ([]model.Message, int, error)
	Conversations(ctx context.Context, actor model.Actor) ([]model.Conversation, error)
	Thread(ctx context.Context, actor model.Actor, contactID uuid.UUID, limit int, before *time.Time) ([]model.Message, error)
	MarkMessageRead(ctx context.Context, actor model.Actor, messageID uuid.UUID) error
	UnreadMessages(ctx context.Context, actor model.Actor) (int, error)
	DeleteMessage(ctx context.Context, actor model.Actor, messageID uuid.UUID) error
}

// PresenceFacade exposes live notification streams.
type PresenceFacade interface {
	Subscribe(actor model.Actor) (<-chan notify.Message, func())
	IsOnline(userID uuid.UUID) bool
}

type HealthFacade interface {
	Health(ctx context.Context) error
}

// MarketFacade aggregates the full set of operations used across handlers.
type MarketFacade interface {
	AuthFacade
	OrderFacade
	MaterialFacade
	WalletFacade
	ReviewFacade
	MessageFacade
	PresenceFacade
	HealthFacade
}
