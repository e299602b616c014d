package api

import (
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/zt/zerotheta-data/internal/ledger"
	"github.com/zt/zerotheta-data/internal/report"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Handler serves the report endpoints.
type Handler struct {
	ledger ledger.Ledger
}

// ErrorResponse is the error payload for every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.filteredRows(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.Summarize(rows))
}

func (h *Handler) GetDaily(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.filteredRows(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.Daily(rows))
}

func (h *Handler) GetStrategies(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.filteredRows(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.ByStrategy(rows))
}

// TradeRow is one ledger row as the API renders it.
type TradeRow struct {
	Date        string `json:"date"`
	TradeType   string `json:"trade_type"`
	Symbol      string `json:"symbol"`
	Strikes     string `json:"strikes"`
	EntryAction string `json:"entry_action"`
	EntryTime   string `json:"entry_time"`
	EntryPrice  string `json:"entry_price"`
	ExitAction  string `json:"exit_action,omitempty"`
	ExitPrice   string `json:"exit_price,omitempty"`
	Profit      string `json:"profit"`
	Status      string `json:"status"`
	Strategy    string `json:"strategy"`
}

func (h *Handler) GetTrades(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.filteredRows(w, r)
	if !ok {
		return
	}

	// Newest first, optionally limited.
	out := make([]TradeRow, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		out = append(out, TradeRow{
			Date: row.Date, TradeType: row.TradeType, Symbol: row.Symbol,
			Strikes: row.Strikes, EntryAction: row.EntryAction,
			EntryTime: row.EntryTime, EntryPrice: row.EntryPrice,
			ExitAction: row.ExitAction, ExitPrice: row.ExitPrice,
			Profit: row.Profit, Status: row.Status, Strategy: row.Strategy,
		})
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		if n < len(out) {
			out = out[:n]
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) filteredRows(w http.ResponseWriter, r *http.Request) ([]ledger.Row, bool) {
	f, err := parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return nil, false
	}

	rows, err := h.ledger.ReadAll()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "reading ledger failed"})
		return nil, false
	}
	return report.Apply(rows, f), true
}

func parseFilter(r *http.Request) (report.Filter, error) {
	q := r.URL.Query()
	f := report.Filter{
		TradeTypes: q["type"],
		Strategies: q["strategy"],
	}

	var err error
	if v := q.Get("from"); v != "" {
		if f.From, err = parseDay(v); err != nil {
			return f, err
		}
	}
	if v := q.Get("to"); v != "" {
		if f.To, err = parseDay(v); err != nil {
			return f, err
		}
	}
	return f, nil
}

func parseDay(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
