package ledger_http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Irine-Juliet/Bank-CLI/internal/app/ledger"
)

func RegisterRoutes(r chi.Router, s ledger.LedgerService, l *zap.Logger) {
	handler := NewLedgerHandler(s, l.With(zap.String("component", "LedgerHTTPHandler")))

	r.Route("/health", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ledger service is healthy!"))
		})
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", handler.OpenAccountHandler)
		r.Get("/", handler.SummaryHandler)
		r.Route("/{number}", func(r chi.Router) {
			r.Get("/", handler.GetAccountHandler)
			r.Get("/transactions", handler.ListTransactionsHandler)
			r.Post("/transactions", handler.AddTransactionHandler)
			r.Post("/interest", handler.ApplyInterestHandler)
		})
	})
}
