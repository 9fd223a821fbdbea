package transaction

import (
	"time"

	"github.com/moon-three/account/internal/transaction"
)

const timeFormat = "2006-01-02T15:04:05"

type transactionResponse struct {
	AccountNumber     string              `json:"account_number"`
	TransactionResult transaction.Outcome `json:"transaction_result"`
	TransactionID     string              `json:"transaction_id"`
	Amount            int64               `json:"amount"`
	TransactedAt      string              `json:"transacted_at"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		AccountNumber:     tx.AccountNumber,
		TransactionResult: tx.Outcome,
		TransactionID:     tx.TxID,
		Amount:            tx.Amount,
		TransactedAt:      formatTime(tx.TransactedAt),
	}
}

type queryTransactionResponse struct {
	AccountNumber     string              `json:"account_number"`
	TransactionKind   transaction.Kind    `json:"transaction_kind"`
	TransactionResult transaction.Outcome `json:"transaction_result"`
	TransactionID     string              `json:"transaction_id"`
	Amount            int64               `json:"amount"`
	TransactedAt      string              `json:"transacted_at"`
}

func toQueryResponse(tx *transaction.Transaction) queryTransactionResponse {
	return queryTransactionResponse{
		AccountNumber:     tx.AccountNumber,
		TransactionKind:   tx.Kind,
		TransactionResult: tx.Outcome,
		TransactionID:     tx.TxID,
		Amount:            tx.Amount,
		TransactedAt:      formatTime(tx.TransactedAt),
	}
}

func formatTime(t time.Time) string {
	return t.Format(timeFormat)
}
