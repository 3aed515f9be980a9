package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the HTTP routes. events serves the SSE change feed;
// idempotency, when non-nil, guards the batch endpoint against duplicate
// submissions.
func NewRouter(h *Handler, events http.Handler, idempotency func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/transactions", func(r chi.Router) {
		if idempotency != nil {
			r.With(idempotency).Post("/process", h.ProcessTransactions)
		} else {
			r.Post("/process", h.ProcessTransactions)
		}
		r.Get("/", h.ListTransactions)
	})

	r.Route("/bank", func(r chi.Router) {
		r.Get("/", h.GetBank)
		r.Get("/balance", h.GetBankBalance)
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.ListAccounts)
		r.Get("/{id}", h.GetAccount)
	})

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
