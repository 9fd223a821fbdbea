package account

import (
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("account not found")
	ErrLimitExceeded       = errors.New("user already has the maximum number of accounts")
	ErrOwnerMismatch       = errors.New("user is not the owner of the account")
	ErrClosed              = errors.New("account is closed")
	ErrAlreadyClosed       = errors.New("account is already closed")
	ErrBalanceNotEmpty     = errors.New("account balance is not empty")
	ErrInsufficientBalance = errors.New("amount exceeds account balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// Status represents the lifecycle state of an account. The transition is
// monotonic: active accounts can close, closed accounts never reopen.
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Account holds a user's balance in the smallest currency unit. The balance
// is never negative; concurrency control for it lives entirely outside this
// type, behind the per-account distributed lock.
type Account struct {
	ID           int64
	UserID       int64
	Number       string // 10-digit, globally unique, never reused
	Status       Status
	Balance      int64
	RegisteredAt time.Time
	ClosedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Debit decreases the balance. The caller must hold the account lock.
func (a *Account) Debit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if amount > a.Balance {
		return ErrInsufficientBalance
	}

	a.Balance -= amount

	return nil
}

// Credit increases the balance. The amount guard matters here in particular:
// a negative credit would silently debit.
func (a *Account) Credit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	a.Balance += amount

	return nil
}

// Close marks the account closed at the given time. Validation (ownership,
// zero balance) is the service's job; closure itself is unconditional.
func (a *Account) Close(at time.Time) {
	a.Status = StatusClosed
	a.ClosedAt = &at
}
