package statement

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/moon-three/account/internal/transaction"
)

// Statement is a snapshot of an account's ledger over a period, newest
// entries first. Totals only count successful transactions.
type Statement struct {
	AccountNumber string
	From          *time.Time
	To            *time.Time
	GeneratedAt   time.Time
	Transactions  []*transaction.Transaction
	TotalDebits   int64
	TotalCredits  int64
}

// Service turns an account's transaction history into statements.
type Service struct {
	transactions *transaction.Service
}

func NewService(txService *transaction.Service) *Service {
	return &Service{transactions: txService}
}

// Generate builds a statement for the account over the optional time range.
// The requesting user must own the account.
func (s *Service) Generate(ctx context.Context, userID int64, accountNumber string, from, to *time.Time) (*Statement, error) {
	txs, err := s.transactions.History(ctx, userID, accountNumber, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	st := &Statement{
		AccountNumber: accountNumber,
		From:          from,
		To:            to,
		GeneratedAt:   time.Now(),
		Transactions:  txs,
	}

	for _, tx := range txs {
		if tx.Outcome != transaction.OutcomeSuccess {
			continue
		}

		switch tx.Kind {
		case transaction.KindDebit:
			st.TotalDebits += tx.Amount
		case transaction.KindCredit:
			st.TotalCredits += tx.Amount
		}
	}

	return st, nil
}

// WriteCSV renders the statement as CSV with a header row.
func (s *Service) WriteCSV(w io.Writer, st *Statement) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{
		"transacted_at", "transaction_id", "kind", "outcome", "amount", "balance",
	}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range st.Transactions {
		record := []string{
			tx.TransactedAt.Format(time.RFC3339),
			tx.TxID,
			string(tx.Kind),
			string(tx.Outcome),
			strconv.FormatInt(tx.Amount, 10),
			strconv.FormatInt(tx.BalanceSnapshot, 10),
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Summarize creates a short plain-text summary of the statement.
func (s *Service) Summarize(st *Statement) string {
	var sb strings.Builder

	for _, tx := range st.Transactions {
		sign := "-"
		if tx.Kind == transaction.KindCredit {
			sign = "+"
		}

		note := ""
		if tx.Outcome == transaction.OutcomeFailure {
			note = " (failed)"
		}

		sb.WriteString(fmt.Sprintf("* %s | %s | %s%d | balance %d%s\n",
			tx.TransactedAt.Format("2006-01-02 15:04:05"),
			tx.TxID, sign, tx.Amount, tx.BalanceSnapshot, note))
	}

	sb.WriteString(fmt.Sprintf("total debited %d, total credited %d\n",
		st.TotalDebits, st.TotalCredits))

	return sb.String()
}
