// Package ibkr talks to an Interactive Brokers web gateway: a REST
// endpoint for the session's execution list and a websocket stream for
// live execution events. It is the only place that knows the gateway's
// wire encoding; everything downstream works on reconcile.Fill.
package ibkr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/zt/zerotheta-data/internal/config"
	"github.com/zt/zerotheta-data/internal/reconcile"
)

type Client struct {
	cfg     *config.Config
	http    *http.Client
	baseURL string
}

func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.AccountID == "" {
		return nil, fmt.Errorf("IB_ACCOUNT_ID is required")
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: cfg.GatewayURL,
	}, nil
}

// --- API Types ---

// Execution is one fill as the gateway reports it.
type Execution struct {
	ExecID   string   `json:"exec_id"`
	PermID   int64    `json:"perm_id"`
	Time     string   `json:"time"` // RFC3339
	Side     string   `json:"side"` // "BOT" or "SLD"
	Price    float64  `json:"price"`
	Shares   int      `json:"shares"`
	Contract Contract `json:"contract"`
}

// Contract describes the instrument of one execution. A combo-level
// execution carries the "BAG" security type.
type Contract struct {
	Symbol  string  `json:"symbol"`
	SecType string  `json:"sec_type"`
	Strike  float64 `json:"strike,omitempty"`
	Right   string  `json:"right,omitempty"` // "P" or "C"
}

// --- API Methods ---

// GetExecutions fetches the full set of executions for the current
// trading session. The gateway has no pagination for this endpoint.
func (c *Client) GetExecutions(ctx context.Context) ([]Execution, error) {
	var result struct {
		Executions []Execution `json:"executions"`
	}
	path := fmt.Sprintf("/account/%s/executions", url.PathEscape(c.cfg.AccountID))
	if err := c.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Executions, nil
}

// Executions fetches today's executions and maps them to fills. This is
// the collector's execution-source interface.
func (c *Client) Executions(ctx context.Context) ([]reconcile.Fill, error) {
	execs, err := c.GetExecutions(ctx)
	if err != nil {
		return nil, err
	}
	fills := make([]reconcile.Fill, 0, len(execs))
	for _, e := range execs {
		fills = append(fills, e.ToFill())
	}
	return fills, nil
}

// ToFill maps a gateway execution to the reconciliation fill model. The
// security type tags the fill's structural kind when present; untyped
// executions stay untagged and the price-sign convention takes over.
func (e Execution) ToFill() reconcile.Fill {
	kind := reconcile.KindUnknown
	switch e.Contract.SecType {
	case "BAG":
		kind = reconcile.KindCombo
	case "":
	default:
		kind = reconcile.KindLeg
	}
	return reconcile.Fill{
		PermID:   e.PermID,
		Time:     parseTime(e.Time),
		Side:     reconcile.Side(e.Side),
		Price:    e.Price,
		Quantity: e.Shares,
		Symbol:   e.Contract.Symbol,
		SecType:  e.Contract.SecType,
		Strike:   e.Contract.Strike,
		Right:    e.Contract.Right,
		Kind:     kind,
	}
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// --- HTTP helpers ---

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	return c.doRequest(req, out)
}

func (c *Client) doRequest(req *http.Request, out interface{}) error {
	slog.Debug("gateway request", "method", req.Method, "url", req.URL.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		slog.Error("gateway API error", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("gateway API error %d: %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w (body: %s)", err, string(body))
		}
	}

	return nil
}
