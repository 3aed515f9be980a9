package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/danisetya/transfer-service/internal/domain"
	"github.com/danisetya/transfer-service/internal/service"
)

// Handler exposes the transfer engine and its query surface over HTTP
type Handler struct {
	svc    *service.TransferService
	logger *zap.Logger
}

// NewHandler creates a Handler around the given service
func NewHandler(svc *service.TransferService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

type processRequest struct {
	Transactions []domain.TransferRequest `json:"transactions"`
}

type processResponse struct {
	Summary domain.BatchOutcome `json:"summary"`
}

// ProcessTransactions handles POST /transactions/process. The request list
// is validated here; individual transfer failures are reported inside the
// summary, never as an HTTP error.
func (h *Handler) ProcessTransactions(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Transactions == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "transactions must be a list"})
		return
	}
	for i, tx := range req.Transactions {
		if tx.AccountID <= 0 || !tx.Amount.IsPositive() {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: "transaction " + strconv.Itoa(i) + ": accountId and amount must be positive",
			})
			return
		}
	}

	outcome := h.svc.ProcessBatch(r.Context(), req.Transactions)
	writeJSON(w, http.StatusOK, processResponse{Summary: outcome})
}

// ListTransactions handles GET /transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := domain.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	records, err := h.svc.RecentTransfers(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to fetch transactions", zap.Error(err))
		writeError(w, err)
		return
	}
	if records == nil {
		records = []domain.TransferRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// GetBank handles GET /bank
func (h *Handler) GetBank(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.svc.Bank(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch bank", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

// GetBankBalance handles GET /bank/balance
func (h *Handler) GetBankBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.BankBalance(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch bank balance", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// ListAccounts handles GET /accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.Accounts(r.Context())
	if err != nil {
		h.logger.Error("failed to list accounts", zap.Error(err))
		writeError(w, err)
		return
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

// GetAccount handles GET /accounts/{id}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "account id must be a positive integer"})
		return
	}

	account, err := h.svc.Account(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}
