package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/zt/zerotheta-data/internal/collector"
	"github.com/zt/zerotheta-data/internal/config"
	"github.com/zt/zerotheta-data/internal/ibkr"
	"github.com/zt/zerotheta-data/internal/ledger"
	"github.com/zt/zerotheta-data/internal/reconcile"
)

func main() {
	ledgerPath := flag.String("ledger", "", "path to the CSV trade ledger")
	strategy := flag.String("strategy", "", "strategy label stamped on every trade row")
	raw := flag.Bool("raw", false, "write one row per execution instead of reconciled trades")
	watch := flag.Bool("watch", false, "stream executions live and reconcile on shutdown")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	// Logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Load config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	// CLI overrides
	if *ledgerPath != "" {
		cfg.LedgerPath = *ledgerPath
	}
	if *strategy != "" {
		cfg.Strategy = *strategy
	}

	slog.Info("collector starting",
		"gateway", cfg.GatewayURL,
		"ledger", cfg.LedgerPath,
		"strategy", cfg.Strategy,
	)

	client, err := ibkr.NewClient(cfg)
	if err != nil {
		slog.Error("gateway client init failed", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	lg := ledger.NewCSV(cfg.LedgerPath)

	var written int
	switch {
	case *watch:
		written, err = runWatch(ctx, cfg, lg)
	case *raw:
		written, err = collector.ExportRaw(ctx, client, lg, cfg.Strategy)
	default:
		written, err = collector.Run(ctx, client, lg, cfg.Strategy)
	}
	if err != nil {
		slog.Error("collection failed", "err", err, "written", written)
		os.Exit(1)
	}

	slog.Info("done", "trades_written", written)
}

// runWatch accumulates executions from the live stream for the whole
// session, then reconciles the batch once on shutdown.
func runWatch(ctx context.Context, cfg *config.Config, lg ledger.Ledger) (int, error) {
	var mu sync.Mutex
	var fills []reconcile.Fill

	stream := ibkr.NewExecutionStream(cfg, func(e ibkr.Execution) {
		f := e.ToFill()
		mu.Lock()
		fills = append(fills, f)
		mu.Unlock()
		slog.Info("execution", "perm_id", f.PermID, "symbol", f.Symbol, "side", string(f.Side), "price", f.Price)
	})

	if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
		return 0, err
	}

	mu.Lock()
	defer mu.Unlock()
	if len(fills) == 0 {
		slog.Info("no executions captured")
		return 0, nil
	}
	return collector.WriteTrades(fills, lg, cfg.Strategy)
}
