package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/moon-three/account/internal/account"
	"github.com/moon-three/account/internal/user"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanAccount reads an account row from the scanner.
// Expected column order: id, user_id, number, status, balance, registered_at, closed_at, created_at, updated_at
func scanAccount(s scanner) (*account.Account, error) {
	var a account.Account

	var statusStr string

	if err := s.Scan(
		&a.ID, &a.UserID, &a.Number, &statusStr, &a.Balance,
		&a.RegisteredAt, &a.ClosedAt, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	a.Status = account.Status(statusStr)

	return &a, nil
}

const selectAccountColumns = `
	id, user_id, number, status, balance, registered_at, closed_at, created_at, updated_at
`

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
	query := `SELECT ` + selectAccountColumns + ` FROM accounts WHERE number = $1`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return a, nil
}

func (s *Store) CountActiveAccounts(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE user_id = $1 AND status = $2`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, account.StatusActive).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}

	return count, nil
}

func (s *Store) AccountNumberExists(ctx context.Context, number string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE number = $1)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking account number: %w", err)
	}

	return exists, nil
}

// SaveAccount upserts the account: a zero ID inserts, anything else updates
// the mutable columns. Generated fields are written back to a.
func (s *Store) SaveAccount(ctx context.Context, a *account.Account) error {
	if a.ID == 0 {
		query := `
			INSERT INTO accounts (user_id, number, status, balance, registered_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`

		err := s.db.QueryRowContext(ctx, query,
			a.UserID, a.Number, a.Status, a.Balance, a.RegisteredAt,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("creating account: %w", err)
		}

		return nil
	}

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

func (s *Store) ListAccountsByUser(ctx context.Context, userID int64) ([]*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts WHERE user_id = $1`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}
