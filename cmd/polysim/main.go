package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"polysim/internal/config"
	"polysim/internal/exit"
	"polysim/internal/gamma"
	"polysim/internal/journal"
	"polysim/internal/ledger"
	"polysim/internal/market"
	"polysim/internal/performance"
	"polysim/internal/scheduler"
	"polysim/internal/strategy"
)

func main() {
	// Parse CLI flags.
	configPath := flag.String("config", "", "Path to TOML config (defaults to config.toml)")
	balance := flag.Float64("balance", 0, "Override starting balance")
	flag.Parse()

	// Load configuration.
	path := "config.toml"
	if p := os.Getenv("POLYSIM_CONFIG_PATH"); p != "" {
		path = p
	}
	if *configPath != "" {
		path = *configPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *balance > 0 {
		cfg.General.InitialBalance = *balance
	}

	// Set up structured logging.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.General.LogLevel),
	})))

	slog.Info("polysim starting", "initial_balance", cfg.General.InitialBalance)

	// Initialize trade journal.
	database, err := journal.Open(cfg.General.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := journal.Migrate(database); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database initialized", "path", cfg.General.DBPath)

	// Wire the engine.
	client := gamma.NewClient(cfg.General.GammaURL)
	history := market.NewHistory(cfg.Analyzer.HistoryCap)
	analyzer := market.NewAnalyzer(cfg.Analyzer, history)
	store := market.NewAnalysisStore(cfg.Analyzer.AnalysisCap)
	selector := strategy.NewSelector(cfg.Selector)
	ldgr := ledger.New(cfg.Ledger, cfg.General.InitialBalance)
	policy := exit.NewPolicy(cfg.Exit)
	recorder := journal.NewRecorder(database)
	tracker := performance.NewTracker(database)

	sched := scheduler.New(
		client, history, analyzer, store, selector,
		ldgr, policy, recorder, tracker, cfg,
	)

	// Graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	stats := ldgr.Stats()
	slog.Info("polysim stopped",
		"balance", stats.Balance,
		"net_worth", stats.NetWorth,
		"total_trades", stats.TotalTrades,
		"win_rate", stats.WinRate,
	)
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
