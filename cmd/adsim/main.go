package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/adsim/config"
	"github.com/alejandrodnm/adsim/internal/adapters/report"
	"github.com/alejandrodnm/adsim/internal/adapters/storage"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (empty: built-in demo defaults)")
	scenarioName := flag.String("scenario", "", "load arms and params from the stored scenario")
	saveName := flag.String("save", "", "store the effective arms and params under this name and exit")
	deleteName := flag.String("delete", "", "delete a stored scenario and exit")
	listScenarios := flag.Bool("scenarios", false, "list the scenario catalog and exit")
	once := flag.Bool("once", false, "run a single simulation and print per-arm detail")
	impressions := flag.Int("impressions", 0, "impressions per run (overrides config)")
	runs := flag.Int("runs", 0, "runs to aggregate (overrides config)")
	seed := flag.Uint64("seed", 0, "base RNG seed (0: derive from clock)")
	workers := flag.Int("workers", 0, "parallel workers (0: one per CPU)")
	dbPath := flag.String("db", "", "scenario catalog file (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	if *dbPath != "" {
		cfg.Storage.DSN = *dbPath
	}

	store, err := storage.NewSQLite(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open scenario catalog", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	reporter := report.NewConsole()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *listScenarios {
		if err := runScenarios(ctx, store, reporter); err != nil {
			slog.Error("failed to list scenarios", "err", err)
			os.Exit(1)
		}
		return
	}
	if *deleteName != "" {
		if err := deleteScenario(ctx, store, *deleteName); err != nil {
			slog.Error("failed to delete scenario", "err", err, "scenario", *deleteName)
			os.Exit(1)
		}
		return
	}

	// Precedencia: config < escenario guardado < flags explícitos
	if *scenarioName != "" {
		if err := applyScenario(ctx, cfg, store, *scenarioName); err != nil {
			slog.Error("failed to load scenario", "err", err, "scenario", *scenarioName)
			os.Exit(1)
		}
	}
	if *impressions > 0 {
		cfg.Simulation.Impressions = *impressions
	}
	if *runs > 0 {
		cfg.Simulation.Runs = *runs
	}
	if *seed > 0 {
		cfg.Simulation.Seed = *seed
	}
	if *workers > 0 {
		cfg.Simulation.Workers = *workers
	}

	if *saveName != "" {
		if err := saveScenario(ctx, store, cfg, *saveName); err != nil {
			slog.Error("failed to save scenario", "err", err, "scenario", *saveName)
			os.Exit(1)
		}
		return
	}

	if cfg.Simulation.Seed == 0 {
		cfg.Simulation.Seed = uint64(time.Now().UnixNano())
	}

	slog.Info("adsim starting",
		"arms", len(cfg.Arms),
		"impressions", cfg.Simulation.Impressions,
		"runs", cfg.Simulation.Runs,
		"seed", cfg.Simulation.Seed,
		"workers", cfg.Simulation.Workers,
		"once", *once,
	)

	if *once {
		err = runOnce(cfg, reporter)
	} else {
		err = runExperiment(ctx, cfg, reporter)
	}
	if err != nil {
		slog.Error("simulation exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("adsim finished cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
