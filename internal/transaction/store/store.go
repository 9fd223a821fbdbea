package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/moon-three/account/internal/account"
	"github.com/moon-three/account/internal/transaction"
	"github.com/moon-three/account/internal/user"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetUser(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT id, name, created_at, updated_at FROM users WHERE id = $1`

	var u user.User
	if err := s.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return &u, nil
}

func (s *Store) GetAccountByNumber(ctx context.Context, number string) (*account.Account, error) {
	query := `
		SELECT id, user_id, number, status, balance, registered_at, closed_at, created_at, updated_at
		FROM accounts
		WHERE number = $1
	`

	var a account.Account

	var statusStr string

	if err := s.db.QueryRowContext(ctx, query, number).Scan(
		&a.ID, &a.UserID, &a.Number, &statusStr, &a.Balance,
		&a.RegisteredAt, &a.ClosedAt, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	a.Status = account.Status(statusStr)

	return &a, nil
}

func (s *Store) SaveAccount(ctx context.Context, a *account.Account) error {
	query := `
		UPDATE accounts
		SET status = $1, balance = $2, closed_at = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		a.Status, a.Balance, a.ClosedAt, a.ID,
	).Scan(&a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}

	return nil
}

const selectTransactionColumns = `
	t.id, t.tx_id, t.account_id, a.number, t.kind, t.outcome, t.amount,
	t.balance_snapshot, t.transacted_at, t.created_at
`

func (s *Store) GetTransaction(ctx context.Context, txID string) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		WHERE t.tx_id = $1`

	var tx transaction.Transaction

	var kindStr, outcomeStr string

	if err := s.db.QueryRowContext(ctx, query, txID).Scan(
		&tx.ID, &tx.TxID, &tx.AccountID, &tx.AccountNumber, &kindStr, &outcomeStr,
		&tx.Amount, &tx.BalanceSnapshot, &tx.TransactedAt, &tx.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	tx.Kind = transaction.Kind(kindStr)
	tx.Outcome = transaction.Outcome(outcomeStr)

	return &tx, nil
}

func (s *Store) SaveTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (tx_id, account_id, kind, outcome, amount, balance_snapshot, transacted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		tx.TxID, tx.AccountID, tx.Kind, tx.Outcome, tx.Amount,
		tx.BalanceSnapshot, tx.TransactedAt,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) ListTransactionsByAccount(ctx context.Context, accountID int64, from, to *time.Time) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		WHERE t.account_id = $1
		AND ($2::timestamptz IS NULL OR t.transacted_at >= $2)
		AND ($3::timestamptz IS NULL OR t.transacted_at <= $3)
		ORDER BY t.transacted_at DESC, t.id DESC`

	rows, err := s.db.QueryContext(ctx, query, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		var tx transaction.Transaction

		var kindStr, outcomeStr string

		if err := rows.Scan(
			&tx.ID, &tx.TxID, &tx.AccountID, &tx.AccountNumber, &kindStr, &outcomeStr,
			&tx.Amount, &tx.BalanceSnapshot, &tx.TransactedAt, &tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		tx.Kind = transaction.Kind(kindStr)
		tx.Outcome = transaction.Outcome(outcomeStr)
		txs = append(txs, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}
