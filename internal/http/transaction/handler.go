package transaction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/moon-three/account/internal/account"
	"github.com/moon-three/account/internal/lock"
	"github.com/moon-three/account/internal/transaction"
	"github.com/moon-three/account/internal/user"
)

// AmountBounds is the accepted request amount range, inclusive. Internal
// compensating writes are not bound by it.
type AmountBounds struct {
	Min int64
	Max int64
}

type Handler struct {
	svc    *transaction.Service
	locks  *lock.Coordinator
	bounds AmountBounds
}

func NewHandler(svc *transaction.Service, locks *lock.Coordinator, bounds AmountBounds) *Handler {
	return &Handler{svc: svc, locks: locks, bounds: bounds}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/use", h.use)
	r.Post("/cancel", h.cancel)
	r.Get("/{txId}", h.query)
}

type useBalanceRequest struct {
	UserID        int64  `json:"user_id"`
	AccountNumber string `json:"account_number"`
	Amount        int64  `json:"amount"`
}

func (h *Handler) use(w http.ResponseWriter, r *http.Request) {
	var req useBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.UserID < 1 || len(req.AccountNumber) != 10 || !h.bounds.contains(req.Amount) {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	lease, err := h.locks.Acquire(ctx, req.AccountNumber)
	if err != nil {
		writeLockError(w, err)
		return
	}
	defer lease.Release(ctx)

	tx, err := h.svc.Use(ctx, req.UserID, req.AccountNumber, req.Amount)
	if err != nil {
		// The rejection happened after the lock grant; leave an audit
		// trail before surfacing it.
		if isDomainError(err) {
			if recErr := h.svc.RecordFailedUse(ctx, req.AccountNumber, req.Amount); recErr != nil {
				slog.Error("failed to record failed use", "account_number", req.AccountNumber, "error", recErr)
			}
		}

		writeError(w, err)

		return
	}

	respondJSON(w, http.StatusOK, toResponse(tx))
}

type cancelBalanceRequest struct {
	TransactionID string `json:"transaction_id"`
	AccountNumber string `json:"account_number"`
	Amount        int64  `json:"amount"`
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.TransactionID == "" || len(req.AccountNumber) != 10 || !h.bounds.contains(req.Amount) {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	lease, err := h.locks.Acquire(ctx, req.AccountNumber)
	if err != nil {
		writeLockError(w, err)
		return
	}
	defer lease.Release(ctx)

	tx, err := h.svc.Cancel(ctx, req.TransactionID, req.AccountNumber, req.Amount)
	if err != nil {
		if isDomainError(err) {
			if recErr := h.svc.RecordFailedCancel(ctx, req.AccountNumber, req.Amount); recErr != nil {
				slog.Error("failed to record failed cancel", "account_number", req.AccountNumber, "error", recErr)
			}
		}

		writeError(w, err)

		return
	}

	respondJSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	txID := chi.URLParam(r, "txId")

	tx, err := h.svc.Query(r.Context(), txID)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toQueryResponse(tx))
}

func (b AmountBounds) contains(amount int64) bool {
	return amount >= b.Min && amount <= b.Max
}

// isDomainError reports whether err is a validation rejection rather than an
// infrastructure failure. Only rejections get a compensating failure record.
func isDomainError(err error) bool {
	return errors.Is(err, user.ErrNotFound) ||
		errors.Is(err, account.ErrNotFound) ||
		errors.Is(err, account.ErrOwnerMismatch) ||
		errors.Is(err, account.ErrClosed) ||
		errors.Is(err, account.ErrInsufficientBalance) ||
		errors.Is(err, account.ErrInvalidAmount) ||
		errors.Is(err, transaction.ErrNotFound) ||
		errors.Is(err, transaction.ErrPartialCancel) ||
		errors.Is(err, transaction.ErrAccountMismatch)
}

func writeLockError(w http.ResponseWriter, err error) {
	if errors.Is(err, lock.ErrResourceBusy) {
		http.Error(w, "account is in use", http.StatusConflict)
		return
	}

	http.Error(w, "lock provider unavailable", http.StatusServiceUnavailable)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, account.ErrNotFound):
		http.Error(w, "account not found", http.StatusNotFound)
	case errors.Is(err, transaction.ErrNotFound):
		http.Error(w, "transaction not found", http.StatusNotFound)
	case isDomainError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
