// Package memory keeps marketplace state in process memory. Every atomic unit runs under a
// single mutex against a private copy of the state that replaces the live state on success,
// which makes units serializable and rollback free.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/domain/repository"
)

type state struct {
	users        map[uuid.UUID]model.User
	logins       map[string]uuid.UUID
	orders       map[uuid.UUID]model.Order
	applications map[uuid.UUID]model.Application
	entries      []model.LedgerEntry
	reviews      map[uuid.UUID]model.Review
	materials    map[uuid.UUID]model.Material
	messages     map[uuid.UUID]model.Message
}

func newState() *state {
	return &state{
		users:        make(map[uuid.UUID]model.User),
		logins:       make(map[string]uuid.UUID),
		orders:       make(map[uuid.UUID]model.Order),
		applications: make(map[uuid.UUID]model.Application),
		reviews:      make(map[uuid.UUID]model.Review),
		materials:    make(map[uuid.UUID]model.Material),
		messages:     make(map[uuid.UUID]model.Message),
	}
}

// clone copies every table. Pointer fields are never written through, so sharing them is safe.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.logins {
		c.logins[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.applications {
		c.applications[k] = v
	}
	for k, v := range s.reviews {
		c.reviews[k] = v
	}
	for k, v := range s.materials {
		c.materials[k] = v
	}
	for k, v := range s.messages {
		c.messages[k] = v
	}
	c.entries = append(make([]model.LedgerEntry, 0, len(s.entries)), s.entries...)
	return c
}

// Store implements repository.Factory in memory.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) Users() repository.UserRepository               { return (*userRepository)(s) }
func (s *Store) Orders() repository.OrderRepository             { return (*orderRepository)(s) }
func (s *Store) Applications() repository.ApplicationRepository { return (*applicationRepository)(s) }
func (s *Store) Materials() repository.MaterialRepository       { return (*materialRepository)(s) }
func (s *Store) Ledger() repository.LedgerRepository            { return (*ledgerRepository)(s) }
func (s *Store) Reviews() repository.ReviewRepository           { return (*reviewRepository)(s) }
func (s *Store) Messages() repository.MessageRepository         { return (*messageRepository)(s) }
func (s *Store) Transactor() repository.Transactor              { return s }

// HealthCheck always succeeds.
func (s *Store) HealthCheck(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// Atomic runs fn against a private copy of the state and publishes it when fn succeeds.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(ctx, &tx{st: work, now: s.now}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) read(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.st)
}

// --- Tx implementation ---

type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) LockWallet(_ context.Context, userID uuid.UUID) (*model.Wallet, error) {
	u, ok := t.st.users[userID]
	if !ok {
		return nil, domainErrors.New(domainErrors.ErrNotFound, "user %s not found", userID)
	}
	return &model.Wallet{UserID: u.ID, Balance: u.WalletBalance}, nil
}

func (t *tx) AdjustWallet(_ context.Context, userID uuid.UUID, delta decimal.Decimal) error {
	u, ok := t.st.users[userID]
	if !ok {
		return domainErrors.New(domainErrors.ErrNotFound, "user %s not found", userID)
	}
	next := u.WalletBalance.Add(delta)
	if next.IsNegative() {
		return domainErrors.New(domainErrors.ErrInsufficientFunds, "wallet balance cannot go below zero")
	}
	u.WalletBalance = next
	t.st.users[userID] = u
	return nil
}

func (t *tx) AppendEntry(_ context.Context, entry *model.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Status == "" {
		entry.Status = model.EntryStatusCompleted
	}
	entry.CreatedAt = t.now()
	t.st.entries = append(t.st.entries, *entry)
	return nil
}

func (t *tx) InsertOrder(_ context.Context, order *model.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	now := t.now()
	order.CreatedAt, order.UpdatedAt = now, now
	t.st.orders[order.ID] = *order
	return nil
}

func (t *tx) LockOrder(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := t.st.orders[id]
	if !ok {
		return nil, domainErrors.New(domainErrors.ErrNotFound, "order %s not found", id)
	}
	return &o, nil
}

func (t *tx) SetOrderStatus(_ context.Context, id uuid.UUID, from, to model.OrderStatus) error {
	o, ok := t.st.orders[id]
	if !ok || o.Status != from {
		return domainErrors.New(domainErrors.ErrConflict, "order %s is no longer %s", id, from)
	}
	o.Status = to
	o.UpdatedAt = t.now()
	t.st.orders[id] = o
	return nil
}

func (t *tx) AssignFulfiller(_ context.Context, id, fulfillerID uuid.UUID) error {
	o, ok := t.st.orders[id]
	if !ok || o.Status != model.OrderStatusPending || o.FulfillerID != nil {
		return domainErrors.New(domainErrors.ErrConflict, "order %s already has a fulfiller", id)
	}
	f := fulfillerID
	o.FulfillerID = &f
	o.Status = model.OrderStatusInProgress
	o.UpdatedAt = t.now()
	t.st.orders[id] = o
	return nil
}

func (t *tx) MarkDelivered(_ context.Context, id uuid.UUID) error {
	o, ok := t.st.orders[id]
	if !ok || o.Status != model.OrderStatusInProgress || o.DeliveredAt != nil {
		return domainErrors.New(domainErrors.ErrConflict, "order %s cannot be marked delivered", id)
	}
	now := t.now()
	o.DeliveredAt = &now
	o.UpdatedAt = now
	t.st.orders[id] = o
	return nil
}

func (t *tx) DeleteOrder(_ context.Context, id uuid.UUID) error {
	if _, ok := t.st.orders[id]; !ok {
		return domainErrors.New(domainErrors.ErrNotFound, "order %s not found", id)
	}
	for appID, app := range t.st.applications {
		if app.OrderID == id {
			delete(t.st.applications, appID)
		}
	}
	for mID, m := range t.st.materials {
		if m.OrderID == id {
			delete(t.st.materials, mID)
		}
	}
	for rID, r := range t.st.reviews {
		if r.OrderID == id {
			delete(t.st.reviews, rID)
		}
	}
	for i, e := range t.st.entries {
		if e.OrderID != nil && *e.OrderID == id {
			t.st.entries[i].OrderID = nil
		}
	}
	delete(t.st.orders, id)
	return nil
}

func (t *tx) InsertApplication(_ context.Context, app *model.Application) error {
	for _, existing := range t.st.applications {
		if existing.OrderID == app.OrderID && existing.CandidateID == app.CandidateID {
			return domainErrors.ErrAlreadyExists
		}
	}
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	now := t.now()
	app.CreatedAt, app.UpdatedAt = now, now
	t.st.applications[app.ID] = *app
	return nil
}

func (t *tx) GetApplication(_ context.Context, id uuid.UUID) (*model.Application, error) {
	app, ok := t.st.applications[id]
	if !ok {
		return nil, domainErrors.New(domainErrors.ErrNotFound, "application %s not found", id)
	}
	return &app, nil
}

func (t *tx) AcceptApplication(_ context.Context, orderID, applicationID uuid.UUID) ([]model.Application, error) {
	app, ok := t.st.applications[applicationID]
	if !ok || app.OrderID != orderID || app.Status != model.ApplicationStatusPending {
		return nil, domainErrors.New(domainErrors.ErrConflict, "application %s is no longer pending", applicationID)
	}
	now := t.now()
	app.Status = model.ApplicationStatusAccepted
	app.UpdatedAt = now
	t.st.applications[applicationID] = app

	var rejected []model.Application
	for id, sibling := range t.st.applications {
		if sibling.OrderID != orderID || id == applicationID || sibling.Status != model.ApplicationStatusPending {
			continue
		}
		sibling.Status = model.ApplicationStatusRejected
		sibling.UpdatedAt = now
		t.st.applications[id] = sibling
		rejected = append(rejected, sibling)
	}
	sortApplications(rejected)
	return rejected, nil
}

func (t *tx) EnsureReview(_ context.Context, review *model.Review) (bool, error) {
	for _, existing := range t.st.reviews {
		if existing.OrderID == review.OrderID && existing.ReviewerID == review.ReviewerID {
			*review = existing
			return false, nil
		}
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	now := t.now()
	review.Status = model.ReviewStatusPending
	review.CreatedAt, review.UpdatedAt = now, now
	t.st.reviews[review.ID] = *review
	return true, nil
}

func (t *tx) LockReview(_ context.Context, id uuid.UUID) (*model.Review, error) {
	r, ok := t.st.reviews[id]
	if !ok {
		return nil, domainErrors.New(domainErrors.ErrNotFound, "review %s not found", id)
	}
	return &r, nil
}

func (t *tx) SubmitReview(_ context.Context, id uuid.UUID, rating int, comment string) error {
	r, ok := t.st.reviews[id]
	if !ok || r.Status != model.ReviewStatusPending {
		return domainErrors.New(domainErrors.ErrConflict, "review %s is no longer pending", id)
	}
	r.Rating = &rating
	r.Comment = comment
	r.Status = model.ReviewStatusSubmitted
	r.UpdatedAt = t.now()
	t.st.reviews[id] = r
	return nil
}

// --- read repositories ---

type userRepository Store

func (r *userRepository) Create(_ context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(login)
	if _, exists := s.st.logins[key]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	u := model.User{
		ID:            uuid.New(),
		Login:         login,
		PasswordHash:  passwordHash,
		Role:          role,
		WalletBalance: decimal.Zero,
		CreatedAt:     s.now(),
	}
	s.st.users[u.ID] = u
	s.st.logins[key] = u.ID
	return &u, nil
}

func (r *userRepository) GetByLogin(_ context.Context, login string) (*model.User, error) {
	var (
		u  model.User
		ok bool
	)
	(*Store)(r).read(func(st *state) {
		var id uuid.UUID
		if id, ok = st.logins[strings.ToLower(login)]; ok {
			u = st.users[id]
		}
	})
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &u, nil
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	var (
		u  model.User
		ok bool
	)
	(*Store)(r).read(func(st *state) { u, ok = st.users[id] })
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &u, nil
}

type orderRepository Store

func (r *orderRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	var (
		o  model.Order
		ok bool
	)
	(*Store)(r).read(func(st *state) { o, ok = st.orders[id] })
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &o, nil
}

func (r *orderRepository) ListByParty(_ context.Context, userID uuid.UUID) ([]model.Order, error) {
	var result []model.Order
	(*Store)(r).read(func(st *state) {
		for _, o := range st.orders {
			if o.IsFundingParty(userID) || o.IsFulfiller(userID) {
				result = append(result, o)
			}
		}
	})
	sortOrders(result)
	return result, nil
}

func (r *orderRepository) ListOpen(_ context.Context, limit int) ([]model.Order, error) {
	var result []model.Order
	(*Store)(r).read(func(st *state) {
		for _, o := range st.orders {
			if o.Status == model.OrderStatusPending && o.FulfillerID == nil {
				result = append(result, o)
			}
		}
	})
	sortOrders(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *orderRepository) Stats(_ context.Context, userID uuid.UUID) (model.OrderStats, error) {
	stats := model.OrderStats{}
	(*Store)(r).read(func(st *state) {
		for _, o := range st.orders {
			if o.IsFundingParty(userID) || o.IsFulfiller(userID) {
				stats[o.Status]++
			}
		}
	})
	return stats, nil
}

type applicationRepository Store

func (r *applicationRepository) ListByOrder(_ context.Context, orderID uuid.UUID) ([]model.Application, error) {
	var result []model.Application
	(*Store)(r).read(func(st *state) {
		for _, a := range st.applications {
			if a.OrderID == orderID {
				result = append(result, a)
			}
		}
	})
	sortApplications(result)
	return result, nil
}

type materialRepository Store

func (r *materialRepository) Create(_ context.Context, material *model.Material) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.orders[material.OrderID]; !ok {
		return domainErrors.ErrNotFound
	}
	if material.ID == uuid.Nil {
		material.ID = uuid.New()
	}
	material.CreatedAt = s.now()
	s.st.materials[material.ID] = *material
	return nil
}

func (r *materialRepository) ListByOrder(_ context.Context, orderID uuid.UUID) ([]model.Material, error) {
	var result []model.Material
	(*Store)(r).read(func(st *state) {
		for _, m := range st.materials {
			if m.OrderID == orderID {
				result = append(result, m)
			}
		}
	})
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

type ledgerRepository Store

func (r *ledgerRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.LedgerEntry, error) {
	var result []model.LedgerEntry
	(*Store)(r).read(func(st *state) {
		for i := len(st.entries) - 1; i >= 0; i-- {
			if st.entries[i].OwnerID == ownerID {
				result = append(result, st.entries[i])
			}
		}
	})
	return result, nil
}

type reviewRepository Store

func (r *reviewRepository) ListPending(_ context.Context, reviewerID uuid.UUID) ([]model.Review, error) {
	var result []model.Review
	(*Store)(r).read(func(st *state) {
		for _, rv := range st.reviews {
			if rv.ReviewerID == reviewerID && rv.Status == model.ReviewStatusPending {
				result = append(result, rv)
			}
		}
	})
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func sortOrders(orders []model.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID.String() < orders[j].ID.String()
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func sortApplications(apps []model.Application) {
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].ID.String() < apps[j].ID.String()
		}
		return apps[i].CreatedAt.Before(apps[j].CreatedAt)
	})
}

var (
	_ repository.Factory    = (*Store)(nil)
	_ repository.Transactor = (*Store)(nil)
	_ repository.Tx         = (*tx)(nil)
)
