package transaction

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrPartialCancel   = errors.New("cancel amount must match the transaction amount")
	ErrAccountMismatch = errors.New("transaction does not belong to the account")
)

// Kind is the direction of a balance mutation.
type Kind string

const (
	KindDebit  Kind = "debit"
	KindCredit Kind = "credit"
)

// Outcome records whether the attempted mutation changed the balance. Every
// attempt produces exactly one transaction row, failures included.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Transaction is an append-only audit record of a balance mutation attempt.
// TxID is the externally visible identifier, generated at creation and never
// derived from user input.
type Transaction struct {
	ID              int64
	TxID            string // 32 hex chars
	AccountID       int64
	AccountNumber   string
	Kind            Kind
	Outcome         Outcome
	Amount          int64
	BalanceSnapshot int64 // balance after this transaction's effect
	TransactedAt    time.Time
	CreatedAt       time.Time
}
