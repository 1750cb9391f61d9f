package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/domain/repository"
)

// WalletUseCase manages deposits, withdrawals and the ledger history of a user.
type WalletUseCase struct {
	users  repository.UserRepository
	ledger repository.LedgerRepository
	tx     repository.Transactor
}

// NewWalletUseCase constructs WalletUseCase.
func NewWalletUseCase(users repository.UserRepository, ledger repository.LedgerRepository, tx repository.Transactor) *WalletUseCase {
	return &WalletUseCase{users: users, ledger: ledger, tx: tx}
}

type withdrawInput struct {
	Card string `validate:"required,luhn"`
}

// Wallet returns the current balance of the caller.
func (u *WalletUseCase) Wallet(ctx context.Context, actor model.Actor) (*model.Wallet, error) {
	usr, err := u.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &model.Wallet{UserID: usr.ID, Balance: usr.WalletBalance}, nil
}

// Deposit credits the caller's wallet.
func (u *WalletUseCase) Deposit(ctx context.Context, actor model.Actor, amount decimal.Decimal) (*model.LedgerEntry, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	entry := &model.LedgerEntry{OwnerID: actor.UserID, Type: model.EntryTypeDeposit, Amount: amount, Note: "wallet deposit"}
	err := u.tx.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.LockWallet(ctx, actor.UserID); err != nil {
			return err
		}
		if err := tx.AppendEntry(ctx, entry); err != nil {
			return err
		}
		return tx.AdjustWallet(ctx, actor.UserID, amount)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Withdraw debits the caller's wallet towards a card that passes the Luhn check.
func (u *WalletUseCase) Withdraw(ctx context.Context, actor model.Actor, amount decimal.Decimal, card string) (*model.LedgerEntry, error) {
	if err := validateInput(withdrawInput{Card: card}); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	entry := &model.LedgerEntry{OwnerID: actor.UserID, Type: model.EntryTypeWithdrawal, Amount: amount, Note: "withdrawal to card " + maskCard(card)}
	err := u.tx.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		wallet, err := tx.LockWallet(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if wallet.Balance.LessThan(amount) {
			return domainErrors.New(domainErrors.ErrInsufficientFunds,
				"balance %s is below requested %s", wallet.Balance.StringFixed(2), amount.StringFixed(2))
		}
		if err := tx.AppendEntry(ctx, entry); err != nil {
			return err
		}
		return tx.AdjustWallet(ctx, actor.UserID, amount.Neg())
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Transactions returns the caller's ledger entries, newest first.
func (u *WalletUseCase) Transactions(ctx context.Context, actor model.Actor) ([]model.LedgerEntry, error) {
	return u.ledger.ListByOwner(ctx, actor.UserID)
}

func maskCard(card string) string {
	if len(card) <= 4 {
		return card
	}
	return "****" + card[len(card)-4:]
}
