package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/zt/zerotheta-data/internal/config"
	"github.com/zt/zerotheta-data/internal/ledger"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	cmd := os.Args[1]

	switch cmd {
	case "import":
		runImport(cfg)
	case "summary":
		runSummary(cfg)
	case "pnl":
		runPnL(cfg)
	case "trades":
		limit := 50
		if len(os.Args) > 2 {
			if n, err := strconv.Atoi(os.Args[2]); err == nil {
				limit = n
			}
		}
		runTrades(cfg, limit)
	case "open":
		runOpen(cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: tradelog <command>

Commands:
  import        Rebuild the reporting db from the CSV ledger
  summary       Show the performance overview
  pnl           Show the daily PnL table
  trades [N]    Show last N trades (default 50)
  open          Show open trades only`)
}

func openStore(cfg *config.Config) *ledger.Store {
	store, err := ledger.OpenStore(cfg.DBPath)
	if err != nil {
		slog.Error("opening db", "err", err)
		os.Exit(1)
	}
	return store
}

func runImport(cfg *config.Config) {
	rows, err := ledger.NewCSV(cfg.LedgerPath).ReadAll()
	if err != nil {
		slog.Error("reading ledger", "err", err)
		os.Exit(1)
	}

	store := openStore(cfg)
	defer store.Close()

	n, err := store.Replace(context.Background(), rows)
	if err != nil {
		slog.Error("import failed", "err", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d trades from %s\n", n, cfg.LedgerPath)
}

func runSummary(cfg *config.Config) {
	store := openStore(cfg)
	defer store.Close()

	ctx := context.Background()
	sum, err := store.Summary(ctx)
	if err != nil {
		slog.Error("query failed", "err", err)
		os.Exit(1)
	}

	if sum.Trades == 0 {
		fmt.Println("No trades. Run 'tradelog import' first.")
		return
	}

	winRate := 0.0
	if sum.Closed > 0 {
		winRate = float64(sum.Wins) / float64(sum.Closed) * 100
	}
	avg := 0.0
	if sum.Closed > 0 {
		avg = sum.TotalProfit / float64(sum.Closed)
	}

	fmt.Printf("Days traded:   %d\n", sum.DaysTraded)
	fmt.Printf("Total trades:  %d (%d closed)\n", sum.Trades, sum.Closed)
	fmt.Printf("Total profit:  %s\n", dollars(sum.TotalProfit))
	fmt.Printf("Avg profit:    %s\n", dollars(avg))
	fmt.Printf("Win rate:      %.1f%%\n", winRate)

	strategies, err := store.StrategyPnL(ctx)
	if err != nil {
		slog.Error("query failed", "err", err)
		os.Exit(1)
	}
	fmt.Println()
	fmt.Printf("%-20s %7s %7s %12s\n", "Strategy", "Trades", "Closed", "Profit")
	fmt.Println("-------------------------------------------------")
	for _, s := range strategies {
		fmt.Printf("%-20s %7d %7d %12s\n", s.Strategy, s.Trades, s.Closed, dollars(s.Profit))
	}
}

func runPnL(cfg *config.Config) {
	store := openStore(cfg)
	defer store.Close()

	rows, err := store.DailyPnL(context.Background())
	if err != nil {
		slog.Error("query failed", "err", err)
		os.Exit(1)
	}

	if len(rows) == 0 {
		fmt.Println("No PnL data. Run 'tradelog import' first.")
		return
	}

	fmt.Printf("%-12s %7s %7s %5s %12s\n", "Date", "Trades", "Closed", "Wins", "Profit")
	fmt.Println("---------------------------------------------------")
	var totalTrades, totalClosed, totalWins int
	var totalProfit float64
	for _, r := range rows {
		fmt.Printf("%-12s %7d %7d %5d %12s\n", r.Date, r.Trades, r.Closed, r.Wins, dollars(r.Profit))
		totalTrades += r.Trades
		totalClosed += r.Closed
		totalWins += r.Wins
		totalProfit += r.Profit
	}
	fmt.Println("---------------------------------------------------")
	fmt.Printf("%-12s %7d %7d %5d %12s\n", "TOTAL", totalTrades, totalClosed, totalWins, dollars(totalProfit))
}

func runTrades(cfg *config.Config, limit int) {
	store := openStore(cfg)
	defer store.Close()

	rows, err := store.Trades(context.Background(), limit)
	if err != nil {
		slog.Error("query failed", "err", err)
		os.Exit(1)
	}
	printTrades(rows, "No trades. Run 'tradelog import' first.")
}

func runOpen(cfg *config.Config) {
	store := openStore(cfg)
	defer store.Close()

	rows, err := store.OpenTrades(context.Background())
	if err != nil {
		slog.Error("query failed", "err", err)
		os.Exit(1)
	}
	printTrades(rows, "No open trades.")
}

func printTrades(rows []ledger.Row, empty string) {
	if len(rows) == 0 {
		fmt.Println(empty)
		return
	}

	fmt.Printf("%-20s %-9s %-8s %-9s %4s %8s %8s %10s %-7s %s\n",
		"Entry", "Type", "Symbol", "Strikes", "Act", "Entry", "Exit", "Profit", "Status", "Strategy")
	fmt.Println("--------------------------------------------------------------------------------------------------------")
	for _, r := range rows {
		exit := r.ExitPrice
		if exit == "" {
			exit = "-"
		}
		fmt.Printf("%-20s %-9s %-8s %-9s %4s %8s %8s %10s %-7s %s\n",
			r.EntryTime, r.TradeType, r.Symbol, r.Strikes, r.EntryAction,
			r.EntryPrice, exit, r.Profit, r.Status, r.Strategy)
	}
}

func dollars(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}
