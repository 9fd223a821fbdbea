package statement

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/moon-three/account/internal/account"
	"github.com/moon-three/account/internal/statement"
	"github.com/moon-three/account/internal/transaction"
	"github.com/moon-three/account/internal/user"
)

type Handler struct {
	svc *statement.Service
}

func NewHandler(svc *statement.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.generate)
	r.Post("/download", h.download)
}

type statementRequest struct {
	UserID        int64      `json:"user_id"`
	AccountNumber string     `json:"account_number"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
}

type lineResponse struct {
	TransactionID   string              `json:"transaction_id"`
	Kind            transaction.Kind    `json:"transaction_kind"`
	Outcome         transaction.Outcome `json:"transaction_result"`
	Amount          int64               `json:"amount"`
	BalanceSnapshot int64               `json:"balance_snapshot"`
	TransactedAt    time.Time           `json:"transacted_at"`
}

type statementResponse struct {
	AccountNumber string         `json:"account_number"`
	TotalDebits   int64          `json:"total_debits"`
	TotalCredits  int64          `json:"total_credits"`
	Transactions  []lineResponse `json:"transactions"`
	Summary       string         `json:"summary"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	st, err := h.svc.Generate(r.Context(), req.UserID, req.AccountNumber, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}

	lines := make([]lineResponse, 0, len(st.Transactions))
	for _, tx := range st.Transactions {
		lines = append(lines, lineResponse{
			TransactionID:   tx.TxID,
			Kind:            tx.Kind,
			Outcome:         tx.Outcome,
			Amount:          tx.Amount,
			BalanceSnapshot: tx.BalanceSnapshot,
			TransactedAt:    tx.TransactedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(statementResponse{
		AccountNumber: st.AccountNumber,
		TotalDebits:   st.TotalDebits,
		TotalCredits:  st.TotalCredits,
		Transactions:  lines,
		Summary:       h.svc.Summarize(st),
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	st, err := h.svc.Generate(r.Context(), req.UserID, req.AccountNumber, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"statement_%s_%s.csv\"",
			st.AccountNumber, st.GeneratedAt.Format("20060102")))

	if err := h.svc.WriteCSV(w, st); err != nil {
		slog.Error("failed to write statement csv", "account_number", st.AccountNumber, "error", err)
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (statementRequest, bool) {
	var req statementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return req, false
	}

	if req.UserID < 1 || len(req.AccountNumber) != 10 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return req, false
	}

	return req, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, account.ErrNotFound):
		http.Error(w, "account not found", http.StatusNotFound)
	case errors.Is(err, account.ErrOwnerMismatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
