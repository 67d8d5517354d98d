package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/adsim/config"
	"github.com/alejandrodnm/adsim/internal/domain"
	"github.com/alejandrodnm/adsim/internal/ports"
	"github.com/alejandrodnm/adsim/internal/simulation"
)

func runExperiment(ctx context.Context, cfg *config.Config, reporter ports.Reporter) error {
	arms, err := domain.NewArms(cfg.Arms)
	if err != nil {
		return err
	}

	// Como mucho una línea de progreso cada medio segundo, más la final
	limiter := rate.NewLimiter(rate.Every(500*time.Millisecond), 1)

	agg := simulation.NewAggregator(simulation.Params{
		Arms:        cfg.Arms,
		Impressions: cfg.Simulation.Impressions,
		Runs:        cfg.Simulation.Runs,
		Seed:        cfg.Simulation.Seed,
		Workers:     cfg.Simulation.Workers,
	}, simulation.WithProgress(func(completed, total int) {
		if completed == total || limiter.Allow() {
			slog.Info("experiment progress", "completed", completed, "total", total)
		}
	}))

	result, err := agg.Run(ctx)
	if err != nil {
		return err
	}

	reporter.PrintAggregate(result, arms)
	return nil
}

func runOnce(cfg *config.Config, reporter ports.Reporter) error {
	arms, err := domain.NewArms(cfg.Arms)
	if err != nil {
		return err
	}

	// Misma pareja (seed, 0) que el run 0 de un experimento agregado
	rng := rand.New(rand.NewPCG(cfg.Simulation.Seed, 0))
	result, err := simulation.Run(rng, arms, cfg.Simulation.Impressions)
	if err != nil {
		return err
	}

	reporter.PrintRun(result, arms)
	return nil
}

func runScenarios(ctx context.Context, store ports.ScenarioStore, reporter ports.Reporter) error {
	scenarios, err := store.List(ctx)
	if err != nil {
		return err
	}
	reporter.PrintScenarios(scenarios)
	return nil
}

// applyScenario vuelca los arms y parámetros de un escenario guardado sobre
// la config; los flags explícitos se aplican después y ganan.
func applyScenario(ctx context.Context, cfg *config.Config, store ports.ScenarioStore, name string) error {
	sc, err := store.Get(ctx, name)
	if err != nil {
		return err
	}
	cfg.Arms = sc.Arms
	cfg.Simulation.Impressions = sc.Impressions
	cfg.Simulation.Runs = sc.Runs
	slog.Debug("scenario loaded",
		"name", sc.Name,
		"arms", len(sc.Arms),
		"impressions", sc.Impressions,
		"runs", sc.Runs,
	)
	return nil
}

func saveScenario(ctx context.Context, store ports.ScenarioStore, cfg *config.Config, name string) error {
	sc := domain.Scenario{
		Name:        name,
		Arms:        cfg.Arms,
		Impressions: cfg.Simulation.Impressions,
		Runs:        cfg.Simulation.Runs,
	}
	if err := store.Save(ctx, sc); err != nil {
		return err
	}
	slog.Info("scenario saved",
		"name", name,
		"arms", len(sc.Arms),
		"impressions", sc.Impressions,
		"runs", sc.Runs,
	)
	return nil
}

func deleteScenario(ctx context.Context, store ports.ScenarioStore, name string) error {
	if err := store.Delete(ctx, name); err != nil {
		return err
	}
	slog.Info("scenario deleted", "name", name)
	return nil
}
