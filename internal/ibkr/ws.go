package ibkr

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zt/zerotheta-data/internal/config"
)

// ExecutionStream subscribes to the gateway's live execution feed and
// hands every event to the handler. Used by the collector's watch mode
// to accumulate fills during the session instead of fetching at the end.
type ExecutionStream struct {
	cfg     *config.Config
	wsURL   string
	handler func(Execution)
}

func NewExecutionStream(cfg *config.Config, handler func(Execution)) *ExecutionStream {
	return &ExecutionStream{
		cfg:     cfg,
		wsURL:   cfg.WSBaseURL(),
		handler: handler,
	}
}

// Run maintains the websocket connection with automatic reconnection
// until the context is canceled.
func (s *ExecutionStream) Run(ctx context.Context) error {
	for {
		if err := s.connect(ctx); err != nil {
			slog.Warn("execution stream disconnected", "err", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
			slog.Info("execution stream reconnecting...")
		}
	}
}

func (s *ExecutionStream) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))

	sub := wsCommand{Cmd: "subscribe", Params: subscribeParams{
		Channels: []string{"executions"},
		Account:  s.cfg.AccountID,
	}}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	slog.Info("execution stream connected", "url", s.wsURL)

	ctx2, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.pingLoop(ctx2, conn)

	return s.readLoop(ctx2, conn)
}

func (s *ExecutionStream) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				slog.Debug("execution stream ping failed", "err", err)
				return
			}
		}
	}
}

func (s *ExecutionStream) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var env wsEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))

		switch env.Type {
		case "execution":
			var e Execution
			if err := json.Unmarshal(env.Msg, &e); err != nil {
				slog.Warn("malformed execution event", "err", err)
				continue
			}
			s.handler(e)
		case "subscribed", "heartbeat":
			// nothing to do
		default:
			slog.Debug("unhandled stream message", "type", env.Type)
		}
	}
}

// --- WS message types ---

type wsCommand struct {
	Cmd    string      `json:"cmd"`
	Params interface{} `json:"params"`
}

type subscribeParams struct {
	Channels []string `json:"channels"`
	Account  string   `json:"account"`
}

type wsEnvelope struct {
	Type string          `json:"type"`
	Msg  json.RawMessage `json:"msg"`
}
