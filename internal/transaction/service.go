package transaction

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/moon-three/account/internal/account"
	"github.com/moon-three/account/internal/user"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	GetUser(ctx context.Context, id int64) (*user.User, error)
	GetAccountByNumber(ctx context.Context, number string) (*account.Account, error)
	SaveAccount(ctx context.Context, a *account.Account) error
	GetTransaction(ctx context.Context, txID string) (*Transaction, error)
	SaveTransaction(ctx context.Context, tx *Transaction) error
	ListTransactionsByAccount(ctx context.Context, accountID int64, from, to *time.Time) ([]*Transaction, error)
}

// Service is the balance mutation engine. Every operation validates before
// mutating, so a rejection never leaves an account half-changed. The service
// holds no locks of its own: callers must hold the account's distributed
// lock around Use, Cancel and the failure-recording writes.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Use debits the account and records a success transaction whose snapshot is
// the post-debit balance. Validations run in order and short-circuit: owner,
// status, balance.
func (s *Service) Use(ctx context.Context, userID int64, accountNumber string, amount int64) (*Transaction, error) {
	if amount <= 0 {
		return nil, account.ErrInvalidAmount
	}

	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	a, err := s.repo.GetAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if a.UserID != u.ID {
		return nil, account.ErrOwnerMismatch
	}

	if a.Status != account.StatusActive {
		return nil, account.ErrClosed
	}

	if err := a.Debit(amount); err != nil {
		return nil, err
	}

	if err := s.repo.SaveAccount(ctx, a); err != nil {
		return nil, err
	}

	return s.record(ctx, KindDebit, OutcomeSuccess, a, amount)
}

// Cancel reverses a prior debit in full. Partial cancellation is not
// allowed: the amount must equal the original transaction's amount exactly.
func (s *Service) Cancel(ctx context.Context, txID, accountNumber string, amount int64) (*Transaction, error) {
	if amount <= 0 {
		return nil, account.ErrInvalidAmount
	}

	orig, err := s.repo.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}

	a, err := s.repo.GetAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if orig.Amount != amount {
		return nil, ErrPartialCancel
	}

	if orig.AccountID != a.ID {
		return nil, ErrAccountMismatch
	}

	if err := a.Credit(amount); err != nil {
		return nil, err
	}

	if err := s.repo.SaveAccount(ctx, a); err != nil {
		return nil, err
	}

	return s.record(ctx, KindCredit, OutcomeSuccess, a, amount)
}

// RecordFailedUse persists a failure transaction for a rejected debit
// attempt. It looks the account up fresh, takes the current balance as the
// snapshot and never mutates it.
func (s *Service) RecordFailedUse(ctx context.Context, accountNumber string, amount int64) error {
	return s.recordFailed(ctx, KindDebit, accountNumber, amount)
}

// RecordFailedCancel mirrors RecordFailedUse for rejected credits.
func (s *Service) RecordFailedCancel(ctx context.Context, accountNumber string, amount int64) error {
	return s.recordFailed(ctx, KindCredit, accountNumber, amount)
}

func (s *Service) recordFailed(ctx context.Context, kind Kind, accountNumber string, amount int64) error {
	a, err := s.repo.GetAccountByNumber(ctx, accountNumber)
	if err != nil {
		return err
	}

	_, err = s.record(ctx, kind, OutcomeFailure, a, amount)

	return err
}

// Query returns a transaction by its id. Reads never take the account lock.
func (s *Service) Query(ctx context.Context, txID string) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, txID)
}

// History lists an account's ledger, newest first, optionally bounded by
// transaction time. The caller must own the account.
func (s *Service) History(ctx context.Context, userID int64, accountNumber string, from, to *time.Time) ([]*Transaction, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	a, err := s.repo.GetAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if a.UserID != u.ID {
		return nil, account.ErrOwnerMismatch
	}

	return s.repo.ListTransactionsByAccount(ctx, a.ID, from, to)
}

func (s *Service) record(ctx context.Context, kind Kind, outcome Outcome, a *account.Account, amount int64) (*Transaction, error) {
	tx := &Transaction{
		TxID:            newTxID(),
		AccountID:       a.ID,
		AccountNumber:   a.Number,
		Kind:            kind,
		Outcome:         outcome,
		Amount:          amount,
		BalanceSnapshot: a.Balance,
		TransactedAt:    time.Now(),
	}

	if err := s.repo.SaveTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func newTxID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
