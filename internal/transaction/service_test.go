package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/moon-three/account/internal/account"
	"github.com/moon-three/account/internal/transaction"
	"github.com/moon-three/account/internal/user"
)

func activeAccount(id, userID, balance int64, number string) *account.Account {
	return &account.Account{
		ID:      id,
		UserID:  userID,
		Number:  number,
		Status:  account.StatusActive,
		Balance: balance,
	}
}

func TestService_Use(t *testing.T) {
	type args struct {
		userID        int64
		accountNumber string
		amount        int64
	}

	type testCase struct {
		name         string
		args         args
		setupMock    func(m *transaction.MockRepository)
		wantErr      error
		wantSnapshot int64
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{userID: 1, accountNumber: "1000000001", amount: 3000},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					GetUser(gomock.Any(), int64(1)).
					Return(&user.User{ID: 1}, nil)
				m.EXPECT().
					GetAccountByNumber(gomock.Any(), "1000000001").
					Return(activeAccount(7, 1, 10000, "1000000001"), nil)
				m.EXPECT().
					SaveAccount(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, a *account.Account) error {
						assert.Equal(t, int64(7000), a.Balance)
						return nil
					})
				m.EXPECT().
					SaveTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = 1
						return nil
					})
			},
			wantSnapshot: 7000,
		},
		{
			name: "UserNotFound",
			args: args{userID: 99, accountNumber: "1000000001", amount: 1000},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					GetUser(gomock.Any(), int64(99)).
					Return(nil, user.ErrNotFound)
			},
			wantErr: user.ErrNotFound,
		},
		{
			name: "AccountNotFound",
			args: args{userID: 1, accountNumber: "9999999999", amount: 1000},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					GetUser(gomock.Any(), int64(1)).
					Return(&user.User{ID: 1}, nil)
				m.EXPECT().
					GetAccountByNumber(gomock.Any(), "9999999999").
					Return(nil, account.ErrNotFound)
			},
			wantErr: account.ErrNotFound,
		},
		{
			name: "OwnerMismatch",
			args: args{userID: 2, accountNumber: "1000000001", amount: 1000},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					GetUser(gomock.Any(), int64(2)).
					Return(&user.User{ID: 2}, nil)
				m.EXPECT().
					GetAccountByNumber(gomock.Any(), "1000000001").
					Return(activeAccount(7, 1, 10000, "1000000001"), nil)
			},
			wantErr: account.ErrOwnerMismatch,
		},
		{
			name: "AccountClosed",
			args: args{userID: 1, accountNumber: "1000000001", amount: 1000},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					GetUser(gomock.Any(), int64(1)).
					Return(&user.User{ID: 1}, nil)

				a := activeAccount(7, 1, 10000, "1000000001")
				a.Status = account.StatusClosed
				m.EXPECT().
					GetAccountByNumber(gomock.Any(), "1000000001").
					Return(a, nil)
			},
			wantErr: account.ErrClosed,
		},
		{
			name: "InsufficientBalance",
			args: args{userID: 1, accountNumber: "1000000001", amount: 1000},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					GetUser(gomock.Any(), int64(1)).
					Return(&user.User{ID: 1}, nil)
				m.EXPECT().
					GetAccountByNumber(gomock.Any(), "1000000001").
					Return(activeAccount(7, 1, 100, "1000000001"), nil)
			},
			wantErr: account.ErrInsufficientBalance,
		},
		{
			name:    "NegativeAmount",
			args:    args{userID: 1, accountNumber: "1000000001", amount: -100},
			wantErr: account.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.Use(context.Background(), tt.args.userID, tt.args.accountNumber, tt.args.amount)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, transaction.KindDebit, got.Kind)
			assert.Equal(t, transaction.OutcomeSuccess, got.Outcome)
			assert.Equal(t, tt.args.amount, got.Amount)
			assert.Equal(t, tt.wantSnapshot, got.BalanceSnapshot)
			assert.Len(t, got.TxID, 32)
			assert.False(t, got.TransactedAt.IsZero())
		})
	}
}

func TestService_Cancel(t *testing.T) {
	type args struct {
		txID          string
		accountNumber string
		amount        int64
	}

	original := &transaction.Transaction{
		ID:        1,
		TxID:      "aabbccddeeff00112233445566778899",
		AccountID: 7,
		Kind:      transaction.KindDebit,
		Outcome:   transaction.OutcomeSuccess,
		Amount:    1000,
	}

	type testCase struct {
		name         string
		args         args
		setupMock    func(m *transaction.MockRepository)
		wantErr      error
		wantSnapshot int64
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{txID: original.TxID, accountNumber: "1000000001", amount: 1000},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					GetTransaction(gomock.Any(), original.TxID).
					Return(original, nil)
				m.EXPECT().
					GetAccountByNumber(gomock.Any(), "1000000001").
					Return(activeAccount(7, 1, 9000, "1000000001"), nil)
				m.EXPECT().
					SaveAccount(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, a *account.Account) error {
						assert.Equal(t, int64(10000), a.Balance)
						return nil
					})
				m.EXPECT().
					SaveTransaction(gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantSnapshot: 10000,
		},
		{
			name: "TransactionNotFound",
			args: args{txID: "unknown", accountNumber: "1000000001", amount: 1000},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					GetTransaction(gomock.Any(), "unknown").
					Return(nil, transaction.ErrNotFound)
			},
			wantErr: transaction.ErrNotFound,
		},
		{
			name: "PartialCancel",
			args: args{txID: original.TxID, accountNumber: "1000000001", amount: 500},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					GetTransaction(gomock.Any(), original.TxID).
					Return(original, nil)
				m.EXPECT().
					GetAccountByNumber(gomock.Any(), "1000000001").
					Return(activeAccount(7, 1, 9000, "1000000001"), nil)
			},
			wantErr: transaction.ErrPartialCancel,
		},
		{
			name: "AccountMismatch",
			args: args{txID: original.TxID, accountNumber: "1000000002", amount: 1000},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					GetTransaction(gomock.Any(), original.TxID).
					Return(original, nil)
				m.EXPECT().
					GetAccountByNumber(gomock.Any(), "1000000002").
					Return(activeAccount(8, 1, 9000, "1000000002"), nil)
			},
			wantErr: transaction.ErrAccountMismatch,
		},
		{
			name:    "NegativeAmount",
			args:    args{txID: original.TxID, accountNumber: "1000000001", amount: -1000},
			wantErr: account.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.Cancel(context.Background(), tt.args.txID, tt.args.accountNumber, tt.args.amount)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, transaction.KindCredit, got.Kind)
			assert.Equal(t, transaction.OutcomeSuccess, got.Outcome)
			assert.Equal(t, tt.wantSnapshot, got.BalanceSnapshot)
			assert.NotEqual(t, original.TxID, got.TxID)
		})
	}
}

// Failure recording never mutates the balance: the mock has no SaveAccount
// expectation, so any balance write fails the test.
func TestService_RecordFailedUse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		GetAccountByNumber(gomock.Any(), "1000000001").
		Return(activeAccount(7, 1, 100, "1000000001"), nil)
	repo.EXPECT().
		SaveTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
			assert.Equal(t, transaction.KindDebit, tx.Kind)
			assert.Equal(t, transaction.OutcomeFailure, tx.Outcome)
			assert.Equal(t, int64(1000), tx.Amount)
			assert.Equal(t, int64(100), tx.BalanceSnapshot)
			return nil
		})

	svc := transaction.NewService(repo)

	require.NoError(t, svc.RecordFailedUse(context.Background(), "1000000001", 1000))
}

func TestService_RecordFailedCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		GetAccountByNumber(gomock.Any(), "1000000001").
		Return(activeAccount(7, 1, 9000, "1000000001"), nil)
	repo.EXPECT().
		SaveTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
			assert.Equal(t, transaction.KindCredit, tx.Kind)
			assert.Equal(t, transaction.OutcomeFailure, tx.Outcome)
			assert.Equal(t, int64(9000), tx.BalanceSnapshot)
			return nil
		})

	svc := transaction.NewService(repo)

	require.NoError(t, svc.RecordFailedCancel(context.Background(), "1000000001", 1000))
}

func TestService_RecordFailedUse_AccountNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		GetAccountByNumber(gomock.Any(), "9999999999").
		Return(nil, account.ErrNotFound)

	svc := transaction.NewService(repo)

	require.ErrorIs(t, svc.RecordFailedUse(context.Background(), "9999999999", 1000), account.ErrNotFound)
}

func TestService_Query(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		GetTransaction(gomock.Any(), "aabbccddeeff00112233445566778899").
		Return(&transaction.Transaction{TxID: "aabbccddeeff00112233445566778899"}, nil)

	svc := transaction.NewService(repo)
	got, err := svc.Query(context.Background(), "aabbccddeeff00112233445566778899")

	require.NoError(t, err)
	assert.Equal(t, "aabbccddeeff00112233445566778899", got.TxID)
}

func TestService_Use_SaveTransactionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		GetUser(gomock.Any(), int64(1)).
		Return(&user.User{ID: 1}, nil)
	repo.EXPECT().
		GetAccountByNumber(gomock.Any(), "1000000001").
		Return(activeAccount(7, 1, 10000, "1000000001"), nil)
	repo.EXPECT().
		SaveAccount(gomock.Any(), gomock.Any()).
		Return(nil)
	repo.EXPECT().
		SaveTransaction(gomock.Any(), gomock.Any()).
		Return(errors.New("db error"))

	svc := transaction.NewService(repo)
	got, err := svc.Use(context.Background(), 1, "1000000001", 1000)

	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestService_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		GetUser(gomock.Any(), int64(1)).
		Return(&user.User{ID: 1}, nil)
	repo.EXPECT().
		GetAccountByNumber(gomock.Any(), "1000000001").
		Return(activeAccount(7, 1, 10000, "1000000001"), nil)
	repo.EXPECT().
		ListTransactionsByAccount(gomock.Any(), int64(7), &from, gomock.Nil()).
		Return([]*transaction.Transaction{
			{TxID: "b2", AccountID: 7}, {TxID: "a1", AccountID: 7},
		}, nil)

	svc := transaction.NewService(repo)
	got, err := svc.History(context.Background(), 1, "1000000001", &from, nil)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b2", got[0].TxID)
}

func TestService_History_OwnerMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().
		GetUser(gomock.Any(), int64(2)).
		Return(&user.User{ID: 2}, nil)
	repo.EXPECT().
		GetAccountByNumber(gomock.Any(), "1000000001").
		Return(activeAccount(7, 1, 10000, "1000000001"), nil)

	svc := transaction.NewService(repo)
	got, err := svc.History(context.Background(), 2, "1000000001", nil, nil)

	require.ErrorIs(t, err, account.ErrOwnerMismatch)
	assert.Nil(t, got)
}
