package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danisetya/transfer-service/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses: unknown account is 404,
// validation and overdraft are 400, anything else is 500.
func writeError(w http.ResponseWriter, err error) {
	var notFound *domain.AccountNotFoundError
	var insufficient *domain.InsufficientBalanceError

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &insufficient), errors.Is(err, domain.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
