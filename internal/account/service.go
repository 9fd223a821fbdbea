package account

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/moon-three/account/internal/user"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=account
type Repository interface {
	GetUser(ctx context.Context, id int64) (*user.User, error)
	GetAccountByNumber(ctx context.Context, number string) (*Account, error)
	CountActiveAccounts(ctx context.Context, userID int64) (int, error)
	AccountNumberExists(ctx context.Context, number string) (bool, error)
	SaveAccount(ctx context.Context, a *Account) error
	ListAccountsByUser(ctx context.Context, userID int64) ([]*Account, error)
}

const (
	maxAccountsPerUser = 10

	// Random 10-digit numbers collide rarely enough that a bounded retry
	// loop is safe; hitting the cap means the number space is effectively
	// exhausted and we give up rather than spin.
	maxNumberAttempts = 50
)

var ErrNumberSpaceExhausted = errors.New("could not generate an unused account number")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Open creates an active account for the user with the given starting
// balance. Account creation is a single-row insert and does not take the
// account lock.
func (s *Service) Open(ctx context.Context, userID, initialBalance int64) (*Account, error) {
	if initialBalance < 0 {
		return nil, ErrInvalidAmount
	}

	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountActiveAccounts(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("counting accounts: %w", err)
	}

	if count >= maxAccountsPerUser {
		return nil, ErrLimitExceeded
	}

	number, err := s.generateNumber(ctx)
	if err != nil {
		return nil, err
	}

	a := &Account{
		UserID:       u.ID,
		Number:       number,
		Status:       StatusActive,
		Balance:      initialBalance,
		RegisteredAt: time.Now(),
	}

	if err := s.repo.SaveAccount(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

// Close marks the account closed. The balance must already be zero; closure
// never moves money.
func (s *Service) Close(ctx context.Context, userID int64, number string) (*Account, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	a, err := s.repo.GetAccountByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	if a.UserID != u.ID {
		return nil, ErrOwnerMismatch
	}

	if a.Status == StatusClosed {
		return nil, ErrAlreadyClosed
	}

	if a.Balance > 0 {
		return nil, ErrBalanceNotEmpty
	}

	a.Close(time.Now())

	if err := s.repo.SaveAccount(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

// ListByUser returns the user's accounts in storage order, any status.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*Account, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	return s.repo.ListAccountsByUser(ctx, userID)
}

func (s *Service) generateNumber(ctx context.Context) (string, error) {
	for range maxNumberAttempts {
		number := fmt.Sprintf("%d", rand.Int64N(9_000_000_000)+1_000_000_000)

		exists, err := s.repo.AccountNumberExists(ctx, number)
		if err != nil {
			return "", fmt.Errorf("checking account number: %w", err)
		}

		if !exists {
			return number, nil
		}
	}

	return "", ErrNumberSpaceExhausted
}
