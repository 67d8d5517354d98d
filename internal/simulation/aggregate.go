package simulation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/alejandrodnm/adsim/internal/domain"
)

// Params defines a full experiment: the arm line-up plus the execution
// parameters. Workers <= 0 means one worker per CPU.
type Params struct {
	Arms        []domain.ArmConfig
	Impressions int
	Runs        int
	Seed        uint64
	Workers     int
}

// ProgressFunc is invoked after each completed run with (completed, total).
// Always called from a single goroutine, never required for correctness.
type ProgressFunc func(completed, total int)

// Aggregator repeats the single-run simulation with fresh state each time
// and folds the results into cross-run statistics.
type Aggregator struct {
	params     Params
	onProgress ProgressFunc
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithProgress registers a callback fired once per completed run.
func WithProgress(fn ProgressFunc) Option {
	return func(a *Aggregator) { a.onProgress = fn }
}

// NewAggregator builds an aggregator for the given experiment parameters.
func NewAggregator(params Params, opts ...Option) *Aggregator {
	a := &Aggregator{params: params}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the experiment: Runs independent simulations, each with its
// own arms, policy and seed-derived RNG, reduced into one AggregateResult.
// It fails atomically. Configuration errors surface before any run starts,
// and cancellation or internal errors never yield a partial result.
func (a *Aggregator) Run(ctx context.Context) (domain.AggregateResult, error) {
	p := a.params
	if p.Runs < 1 {
		return domain.AggregateResult{}, fmt.Errorf("simulation.Aggregator: runs %d < 1: %w",
			p.Runs, domain.ErrConfiguration)
	}
	if p.Impressions < 1 {
		return domain.AggregateResult{}, fmt.Errorf("simulation.Aggregator: impressions %d < 1: %w",
			p.Impressions, domain.ErrConfiguration)
	}
	if _, err := domain.NewArms(p.Arms); err != nil {
		return domain.AggregateResult{}, err
	}

	results, err := a.runAll(ctx)
	if err != nil {
		return domain.AggregateResult{}, err
	}

	return a.reduce(results), nil
}

// reduce folds the per-run results into the cross-run statistics: per-step
// mean and population standard deviation for both strategies, mean per-arm
// tallies for the bandit, and the derived summary metrics.
func (a *Aggregator) reduce(results []domain.RunResult) domain.AggregateResult {
	p := a.params
	runs := float64(len(results))

	agg := domain.AggregateResult{
		ID:          uuid.New().String(),
		Seed:        p.Seed,
		Runs:        len(results),
		Impressions: p.Impressions,

		BanditMean: make([]float64, p.Impressions),
		BanditStd:  make([]float64, p.Impressions),
		ABMean:     make([]float64, p.Impressions),
		ABStd:      make([]float64, p.Impressions),

		BanditImpressions: make(map[int]float64, len(p.Arms)),
		BanditClicks:      make(map[int]float64, len(p.Arms)),
		Beliefs:           make(map[int]domain.Posterior, len(p.Arms)),
	}

	col := make([]float64, len(results))
	for i := 0; i < p.Impressions; i++ {
		for r, res := range results {
			col[r] = float64(res.BanditCumClicks[i])
		}
		agg.BanditMean[i] = stat.Mean(col, nil)
		agg.BanditStd[i] = stat.PopStdDev(col, nil)

		for r, res := range results {
			col[r] = float64(res.ABCumClicks[i])
		}
		agg.ABMean[i] = stat.Mean(col, nil)
		agg.ABStd[i] = stat.PopStdDev(col, nil)
	}

	// Every configured arm gets an entry even if the bandit never picked it.
	for _, c := range p.Arms {
		agg.BanditImpressions[c.ID] = 0
		agg.BanditClicks[c.ID] = 0
	}
	for _, res := range results {
		for id, v := range res.BanditImpressions {
			agg.BanditImpressions[id] += float64(v)
		}
		for id, v := range res.BanditClicks {
			agg.BanditClicks[id] += float64(v)
		}
	}
	for id := range agg.BanditImpressions {
		agg.BanditImpressions[id] /= runs
	}
	for id := range agg.BanditClicks {
		agg.BanditClicks[id] /= runs
	}

	// Average posterior per arm, rebuilt from the mean tallies: shape
	// parameters are mean clicks + 1 and mean misses + 1.
	for _, c := range p.Arms {
		clicks := agg.BanditClicks[c.ID]
		misses := agg.BanditImpressions[c.ID] - clicks
		agg.Beliefs[c.ID] = domain.Posterior{Alpha: clicks + 1, Beta: misses + 1}
	}

	agg.BanditFinal = agg.BanditMean[p.Impressions-1]
	agg.ABFinal = agg.ABMean[p.Impressions-1]
	agg.BanditCTR = domain.CTR(agg.BanditFinal, p.Impressions)
	agg.ABCTR = domain.CTR(agg.ABFinal, p.Impressions)
	agg.UpliftPct = domain.Uplift(agg.BanditFinal, agg.ABFinal)

	return agg
}
