package account_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moon-three/account/internal/account"
)

func TestAccount_Debit(t *testing.T) {
	type testCase struct {
		name        string
		balance     int64
		amount      int64
		wantErr     error
		wantBalance int64
	}

	tests := []testCase{
		{
			name:        "Success",
			balance:     10000,
			amount:      3000,
			wantBalance: 7000,
		},
		{
			name:        "ExactBalance",
			balance:     1000,
			amount:      1000,
			wantBalance: 0,
		},
		{
			name:        "Insufficient",
			balance:     100,
			amount:      1000,
			wantErr:     account.ErrInsufficientBalance,
			wantBalance: 100,
		},
		{
			name:        "ZeroAmount",
			balance:     100,
			amount:      0,
			wantErr:     account.ErrInvalidAmount,
			wantBalance: 100,
		},
		{
			name:        "NegativeAmount",
			balance:     100,
			amount:      -50,
			wantErr:     account.ErrInvalidAmount,
			wantBalance: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &account.Account{Status: account.StatusActive, Balance: tt.balance}

			err := a.Debit(tt.amount)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantBalance, a.Balance)
			assert.GreaterOrEqual(t, a.Balance, int64(0))
		})
	}
}

func TestAccount_Credit(t *testing.T) {
	type testCase struct {
		name        string
		balance     int64
		amount      int64
		wantErr     error
		wantBalance int64
	}

	tests := []testCase{
		{
			name:        "Success",
			balance:     9000,
			amount:      1000,
			wantBalance: 10000,
		},
		{
			name:        "NegativeAmount",
			balance:     9000,
			amount:      -1000,
			wantErr:     account.ErrInvalidAmount,
			wantBalance: 9000,
		},
		{
			name:        "ZeroAmount",
			balance:     9000,
			amount:      0,
			wantErr:     account.ErrInvalidAmount,
			wantBalance: 9000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &account.Account{Status: account.StatusActive, Balance: tt.balance}

			err := a.Credit(tt.amount)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantBalance, a.Balance)
		})
	}
}

func TestAccount_Close(t *testing.T) {
	a := &account.Account{Status: account.StatusActive}
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	a.Close(at)

	assert.Equal(t, account.StatusClosed, a.Status)
	require.NotNil(t, a.ClosedAt)
	assert.Equal(t, at, *a.ClosedAt)
}
