package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/domain/repository"
)

func seedUser(t *testing.T, s *Store, login string, role model.Role, balance int64) *model.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), login, "hash", role)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if balance > 0 {
		err = s.Atomic(context.Background(), func(ctx context.Context, tx repository.Tx) error {
			return tx.AdjustWallet(ctx, u.ID, decimal.NewFromInt(balance))
		})
		if err != nil {
			t.Fatalf("seed balance: %v", err)
		}
	}
	return u
}

func seedOrder(t *testing.T, s *Store, fundingParty uuid.UUID) *model.Order {
	t.Helper()
	order := &model.Order{
		FundingPartyID: fundingParty,
		Title:          "Spot",
		Kind:           model.OrderKindVideo,
		Priority:       model.PriorityMedium,
		Amount:         decimal.NewFromInt(100),
		Status:         model.OrderStatusPending,
	}
	err := s.Atomic(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		return tx.InsertOrder(ctx, order)
	})
	if err != nil {
		t.Fatalf("insert order: %v", err)
	}
	return order
}

func TestUsers(t *testing.T) {
	s := New()
	ctx := context.Background()

	u := seedUser(t, s, "Alice", model.RoleAdvertiser, 0)
	if _, err := s.Users().Create(ctx, "alice", "x", model.RoleCreator); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists for case-insensitive duplicate, got %v", err)
	}

	got, err := s.Users().GetByLogin(ctx, "ALICE")
	if err != nil || got.ID != u.ID {
		t.Fatalf("unexpected lookup: %v %+v", err, got)
	}
	if _, err := s.Users().GetByID(ctx, uuid.New()); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.Users().GetByLogin(ctx, "bob"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAtomicRollsBack(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := seedUser(t, s, "alice", model.RoleAdvertiser, 50)

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.AdjustWallet(ctx, u.ID, decimal.NewFromInt(-20)); err != nil {
			return err
		}
		if err := tx.AppendEntry(ctx, &model.LedgerEntry{OwnerID: u.ID, Type: model.EntryTypeWithdrawal, Amount: decimal.NewFromInt(20)}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := s.Users().GetByID(ctx, u.ID)
	if !got.WalletBalance.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("balance changed by failed unit: %s", got.WalletBalance)
	}
	entries, _ := s.Ledger().ListByOwner(ctx, u.ID)
	if len(entries) != 0 {
		t.Fatalf("entries leaked from failed unit: %+v", entries)
	}
}

func TestAtomicCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Atomic(ctx, func(context.Context, repository.Tx) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected cancelled without running fn, got %v called=%v", err, called)
	}
}

func TestAdjustWalletNeverNegative(t *testing.T) {
	s := New()
	u := seedUser(t, s, "alice", model.RoleAdvertiser, 10)

	err := s.Atomic(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		return tx.AdjustWallet(ctx, u.ID, decimal.NewFromInt(-11))
	})
	if !errors.Is(err, domainErrors.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	err = s.Atomic(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		return tx.AdjustWallet(ctx, uuid.New(), decimal.NewFromInt(1))
	})
	if !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOrderCompareAndSet(t *testing.T) {
	s := New()
	ctx := context.Background()
	adv := seedUser(t, s, "adv", model.RoleAdvertiser, 0)
	creator := seedUser(t, s, "creator", model.RoleCreator, 0)
	order := seedOrder(t, s, adv.ID)

	err := s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.AssignFulfiller(ctx, order.ID, creator.ID); err != nil {
			return err
		}
		return tx.AssignFulfiller(ctx, order.ID, uuid.New())
	})
	if !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("second assignment must conflict, got %v", err)
	}

	err = s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.AssignFulfiller(ctx, order.ID, creator.ID)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.MarkDelivered(ctx, order.ID); err != nil {
			return err
		}
		return tx.MarkDelivered(ctx, order.ID)
	})
	if !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("double delivery must conflict, got %v", err)
	}

	err = s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.SetOrderStatus(ctx, order.ID, model.OrderStatusPending, model.OrderStatusCancelled)
	})
	if !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("stale status must conflict, got %v", err)
	}

	got, err := s.Orders().GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != model.OrderStatusInProgress || got.FulfillerID == nil || *got.FulfillerID != creator.ID || got.DeliveredAt != nil {
		t.Fatalf("unexpected order state: %+v", got)
	}
}

func TestApplications(t *testing.T) {
	s := New()
	ctx := context.Background()
	adv := seedUser(t, s, "adv", model.RoleAdvertiser, 0)
	order := seedOrder(t, s, adv.ID)

	var ids []uuid.UUID
	err := s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		for i := 0; i < 3; i++ {
			app := &model.Application{OrderID: order.ID, CandidateID: uuid.New(), Status: model.ApplicationStatusPending}
			if err := tx.InsertApplication(ctx, app); err != nil {
				return err
			}
			ids = append(ids, app.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert applications: %v", err)
	}

	first, _ := s.Applications().ListByOrder(ctx, order.ID)
	err = s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.InsertApplication(ctx, &model.Application{OrderID: order.ID, CandidateID: first[0].CandidateID})
	})
	if !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected duplicate pair rejection, got %v", err)
	}

	var rejected []model.Application
	err = s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		rejected, err = tx.AcceptApplication(ctx, order.ID, ids[1])
		return err
	})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if len(rejected) != 2 {
		t.Fatalf("expected two rejected siblings, got %d", len(rejected))
	}

	err = s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		_, err := tx.AcceptApplication(ctx, order.ID, ids[0])
		return err
	})
	if !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("accepting a rejected application must conflict, got %v", err)
	}

	apps, _ := s.Applications().ListByOrder(ctx, order.ID)
	accepted := 0
	for _, a := range apps {
		if a.Status == model.ApplicationStatusAccepted {
			accepted++
		}
	}
	if accepted != 1 {
		t.Fatalf("expected exactly one accepted application, got %d", accepted)
	}
}

func TestDeleteOrderCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	adv := seedUser(t, s, "adv", model.RoleAdvertiser, 0)
	order := seedOrder(t, s, adv.ID)

	err := s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.AppendEntry(ctx, &model.LedgerEntry{OwnerID: adv.ID, OrderID: &order.ID, Type: model.EntryTypePayment, Amount: order.Amount}); err != nil {
			return err
		}
		if err := tx.InsertApplication(ctx, &model.Application{OrderID: order.ID, CandidateID: uuid.New()}); err != nil {
			return err
		}
		_, err := tx.EnsureReview(ctx, &model.Review{OrderID: order.ID, ReviewerID: adv.ID, RevieweeID: uuid.New()})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.Materials().Create(ctx, &model.Material{OrderID: order.ID, UploaderID: adv.ID, Name: "a", URL: "b"}); err != nil {
		t.Fatalf("material: %v", err)
	}

	err = s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.DeleteOrder(ctx, order.ID)
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.Orders().GetByID(ctx, order.ID); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("order still present: %v", err)
	}
	if apps, _ := s.Applications().ListByOrder(ctx, order.ID); len(apps) != 0 {
		t.Fatalf("applications left behind: %+v", apps)
	}
	if materials, _ := s.Materials().ListByOrder(ctx, order.ID); len(materials) != 0 {
		t.Fatalf("materials left behind: %+v", materials)
	}
	if reviews, _ := s.Reviews().ListPending(ctx, adv.ID); len(reviews) != 0 {
		t.Fatalf("reviews left behind: %+v", reviews)
	}
	entries, _ := s.Ledger().ListByOwner(ctx, adv.ID)
	if len(entries) != 1 || entries[0].OrderID != nil {
		t.Fatalf("ledger entry must survive detached: %+v", entries)
	}

	err = s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.DeleteOrder(ctx, order.ID)
	})
	if !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReviews(t *testing.T) {
	s := New()
	ctx := context.Background()
	orderID, reviewer, reviewee := uuid.New(), uuid.New(), uuid.New()

	var first model.Review
	err := s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		first = model.Review{OrderID: orderID, ReviewerID: reviewer, RevieweeID: reviewee}
		created, err := tx.EnsureReview(ctx, &first)
		if err != nil || !created {
			t.Fatalf("first ensure: %v %v", created, err)
		}
		again := model.Review{OrderID: orderID, ReviewerID: reviewer, RevieweeID: reviewee}
		created, err = tx.EnsureReview(ctx, &again)
		if err != nil || created || again.ID != first.ID {
			t.Fatalf("second ensure must reuse placeholder: %v %v %+v", created, err, again)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending, _ := s.Reviews().ListPending(ctx, reviewer)
	if len(pending) != 1 {
		t.Fatalf("expected one pending review, got %d", len(pending))
	}

	err = s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.SubmitReview(ctx, first.ID, 5, "great"); err != nil {
			return err
		}
		return tx.SubmitReview(ctx, first.ID, 1, "again")
	})
	if !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("double submit must conflict, got %v", err)
	}

	err = s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.SubmitReview(ctx, first.ID, 5, "great")
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	pending, _ = s.Reviews().ListPending(ctx, reviewer)
	if len(pending) != 0 {
		t.Fatalf("submitted review still pending: %+v", pending)
	}
}

func TestOrderQueries(t *testing.T) {
	s := New()
	ctx := context.Background()
	adv := seedUser(t, s, "adv", model.RoleAdvertiser, 0)
	creator := seedUser(t, s, "creator", model.RoleCreator, 0)

	seedOrder(t, s, adv.ID)
	b := seedOrder(t, s, adv.ID)
	seedOrder(t, s, uuid.New())

	err := s.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.AssignFulfiller(ctx, b.ID, creator.ID)
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	mine, _ := s.Orders().ListByParty(ctx, adv.ID)
	if len(mine) != 2 {
		t.Fatalf("expected two orders for funding party, got %d", len(mine))
	}
	theirs, _ := s.Orders().ListByParty(ctx, creator.ID)
	if len(theirs) != 1 || theirs[0].ID != b.ID {
		t.Fatalf("unexpected fulfiller orders: %+v", theirs)
	}

	open, _ := s.Orders().ListOpen(ctx, 0)
	if len(open) != 2 {
		t.Fatalf("expected two open orders, got %d", len(open))
	}
	for _, o := range open {
		if o.ID == b.ID {
			t.Fatal("assigned order must not be open")
		}
	}
	limited, _ := s.Orders().ListOpen(ctx, 1)
	if len(limited) != 1 {
		t.Fatalf("limit ignored: %d", len(limited))
	}

	stats, _ := s.Orders().Stats(ctx, adv.ID)
	if stats[model.OrderStatusPending] != 1 || stats[model.OrderStatusInProgress] != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if err := s.Materials().Create(ctx, &model.Material{OrderID: uuid.New()}); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("material on missing order: %v", err)
	}
	if err := s.HealthCheck(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}
}
