package account

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/moon-three/account/internal/account"
	"github.com/moon-three/account/internal/user"
)

type Handler struct {
	svc *account.Service
}

func NewHandler(svc *account.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.open)
	r.Delete("/", h.close)
	r.Get("/", h.list)
}

type openAccountRequest struct {
	UserID         int64 `json:"user_id"`
	InitialBalance int64 `json:"initial_balance"`
}

type openAccountResponse struct {
	UserID        int64  `json:"user_id"`
	AccountNumber string `json:"account_number"`
	RegisteredAt  string `json:"registered_at"`
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	var req openAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.UserID < 1 || req.InitialBalance < 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	a, err := h.svc.Open(r.Context(), req.UserID, req.InitialBalance)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, openAccountResponse{
		UserID:        a.UserID,
		AccountNumber: a.Number,
		RegisteredAt:  a.RegisteredAt.Format(timeFormat),
	})
}

type closeAccountRequest struct {
	UserID        int64  `json:"user_id"`
	AccountNumber string `json:"account_number"`
}

type closeAccountResponse struct {
	UserID        int64  `json:"user_id"`
	AccountNumber string `json:"account_number"`
	ClosedAt      string `json:"closed_at"`
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	var req closeAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.UserID < 1 || len(req.AccountNumber) != 10 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	a, err := h.svc.Close(r.Context(), req.UserID, req.AccountNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, closeAccountResponse{
		UserID:        a.UserID,
		AccountNumber: a.Number,
		ClosedAt:      a.ClosedAt.Format(timeFormat),
	})
}

type accountInfo struct {
	AccountNumber string `json:"account_number"`
	Balance       int64  `json:"balance"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID < 1 {
		http.Error(w, "invalid user_id", http.StatusBadRequest)
		return
	}

	accounts, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	infos := make([]accountInfo, len(accounts))
	for i, a := range accounts {
		infos[i] = accountInfo{AccountNumber: a.Number, Balance: a.Balance}
	}

	respondJSON(w, http.StatusOK, infos)
}

const timeFormat = "2006-01-02T15:04:05"

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, account.ErrNotFound):
		http.Error(w, "account not found", http.StatusNotFound)
	case errors.Is(err, account.ErrLimitExceeded),
		errors.Is(err, account.ErrOwnerMismatch),
		errors.Is(err, account.ErrAlreadyClosed),
		errors.Is(err, account.ErrBalanceNotEmpty),
		errors.Is(err, account.ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
