package statement_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/moon-three/account/internal/account"
	"github.com/moon-three/account/internal/statement"
	"github.com/moon-three/account/internal/transaction"
	"github.com/moon-three/account/internal/user"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	ledger := []*transaction.Transaction{
		{
			ID: 3, TxID: "c3", AccountID: 1, AccountNumber: "1000000000",
			Kind: transaction.KindCredit, Outcome: transaction.OutcomeSuccess,
			Amount: 1000, BalanceSnapshot: 8000, TransactedAt: now,
		},
		{
			ID: 2, TxID: "b2", AccountID: 1, AccountNumber: "1000000000",
			Kind: transaction.KindDebit, Outcome: transaction.OutcomeFailure,
			Amount: 50000, BalanceSnapshot: 7000, TransactedAt: now.Add(-time.Hour),
		},
		{
			ID: 1, TxID: "a1", AccountID: 1, AccountNumber: "1000000000",
			Kind: transaction.KindDebit, Outcome: transaction.OutcomeSuccess,
			Amount: 3000, BalanceSnapshot: 7000, TransactedAt: now.Add(-2 * time.Hour),
		},
	}

	tests := []struct {
		name      string
		setupMock func(m *transaction.MockRepository)
		wantErr   error
		check     func(t *testing.T, st *statement.Statement)
	}{
		{
			name: "TotalsCountOnlySuccesses",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetUser(gomock.Any(), int64(1)).
					Return(&user.User{ID: 1, Name: "kim"}, nil)
				m.EXPECT().GetAccountByNumber(gomock.Any(), "1000000000").
					Return(&account.Account{ID: 1, UserID: 1, Number: "1000000000", Status: account.StatusActive}, nil)
				m.EXPECT().ListTransactionsByAccount(gomock.Any(), int64(1), gomock.Nil(), gomock.Nil()).
					Return(ledger, nil)
			},
			check: func(t *testing.T, st *statement.Statement) {
				t.Helper()
				assert.Equal(t, int64(3000), st.TotalDebits)
				assert.Equal(t, int64(1000), st.TotalCredits)
				assert.Len(t, st.Transactions, 3)
			},
		},
		{
			name: "OwnerMismatch",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetUser(gomock.Any(), int64(1)).
					Return(&user.User{ID: 1, Name: "kim"}, nil)
				m.EXPECT().GetAccountByNumber(gomock.Any(), "1000000000").
					Return(&account.Account{ID: 1, UserID: 2, Number: "1000000000"}, nil)
			},
			wantErr: account.ErrOwnerMismatch,
		},
		{
			name: "UserNotFound",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetUser(gomock.Any(), int64(1)).
					Return(nil, user.ErrNotFound)
			},
			wantErr: user.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := statement.NewService(transaction.NewService(repo))

			st, err := svc.Generate(context.Background(), 1, "1000000000", nil, nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.check(t, st)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	svc := statement.NewService(nil)

	st := &statement.Statement{
		AccountNumber: "1000000000",
		Transactions: []*transaction.Transaction{
			{
				TxID: "a1", Kind: transaction.KindDebit, Outcome: transaction.OutcomeSuccess,
				Amount: 3000, BalanceSnapshot: 7000,
				TransactedAt: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf, st))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "transacted_at,transaction_id,kind,outcome,amount,balance", lines[0])
	assert.Equal(t, "2024-05-10T12:00:00Z,a1,debit,success,3000,7000", lines[1])
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	svc := statement.NewService(nil)

	st := &statement.Statement{
		AccountNumber: "1000000000",
		TotalDebits:   3000,
		TotalCredits:  1000,
		Transactions: []*transaction.Transaction{
			{
				TxID: "a1", Kind: transaction.KindCredit, Outcome: transaction.OutcomeSuccess,
				Amount: 1000, BalanceSnapshot: 8000,
				TransactedAt: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
			},
			{
				TxID: "b2", Kind: transaction.KindDebit, Outcome: transaction.OutcomeFailure,
				Amount: 50000, BalanceSnapshot: 7000,
				TransactedAt: time.Date(2024, 5, 10, 11, 0, 0, 0, time.UTC),
			},
		},
	}

	out := svc.Summarize(st)

	assert.Contains(t, out, "+1000")
	assert.Contains(t, out, "-50000")
	assert.Contains(t, out, "(failed)")
	assert.Contains(t, out, "total debited 3000, total credited 1000")
}
