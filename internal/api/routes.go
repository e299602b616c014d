// Package api serves the reporting endpoints over the trade ledger.
// Handlers read already-reconciled rows and aggregate them; profit is
// never recomputed here.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/zt/zerotheta-data/internal/ledger"
)

// NewRouter wires the report routes:
//
//	GET /api/v1/summary    — performance overview
//	GET /api/v1/daily      — per-day aggregates
//	GET /api/v1/strategies — per-strategy aggregates
//	GET /api/v1/trades     — raw ledger rows
//	GET /health
//
// Every /api/v1 endpoint accepts from, to (YYYY-MM-DD), and repeatable
// type and strategy query parameters.
func NewRouter(lg ledger.Ledger) *mux.Router {
	h := &Handler{ledger: lg}

	r := mux.NewRouter()
	r.Use(logging)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/summary", h.GetSummary).Methods("GET")
	api.HandleFunc("/daily", h.GetDaily).Methods("GET")
	api.HandleFunc("/strategies", h.GetStrategies).Methods("GET")
	api.HandleFunc("/trades", h.GetTrades).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return r
}

func logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
