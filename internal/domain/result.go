package domain

// RunResult captures everything a single simulation run produced: per-arm
// final tallies for both strategies plus the per-step cumulative click
// series. It references arm ids only, never Arm values; the aggregator
// reads it once and discards it. Pure statistics, no identity: two runs
// with the same seed and inputs are equal values.
type RunResult struct {
	BanditImpressions map[int]int
	BanditClicks      map[int]int
	BanditCumClicks   []int

	ABImpressions map[int]int
	ABClicks      map[int]int
	ABCumClicks   []int
}

// BanditFinal returns the run's final cumulative click count for the bandit.
func (r RunResult) BanditFinal() int {
	if len(r.BanditCumClicks) == 0 {
		return 0
	}
	return r.BanditCumClicks[len(r.BanditCumClicks)-1]
}

// ABFinal returns the run's final cumulative click count for the baseline.
func (r RunResult) ABFinal() int {
	if len(r.ABCumClicks) == 0 {
		return 0
	}
	return r.ABCumClicks[len(r.ABCumClicks)-1]
}

// Posterior is the Beta posterior reconstructed for one arm from averaged
// counts after aggregation: Alpha = mean clicks + 1, Beta = mean misses + 1.
type Posterior struct {
	Alpha float64
	Beta  float64
}

// Mean returns the posterior mean, Alpha / (Alpha + Beta).
func (p Posterior) Mean() float64 {
	total := p.Alpha + p.Beta
	if total == 0 {
		return 0
	}
	return p.Alpha / total
}

// AggregateResult holds the cross-run statistics of one experiment.
// Mean and Std series have length Impressions; Std is the population
// standard deviation across runs (the runs ARE the population, not a
// sample from one), so a single-run experiment yields an all-zero Std.
type AggregateResult struct {
	ID          string
	Seed        uint64
	Runs        int
	Impressions int

	BanditMean []float64
	BanditStd  []float64
	ABMean     []float64
	ABStd      []float64

	// Mean final per-arm tallies for the bandit strategy.
	BanditImpressions map[int]float64
	BanditClicks      map[int]float64
	Beliefs           map[int]Posterior

	BanditFinal float64
	ABFinal     float64
	BanditCTR   float64
	ABCTR       float64
	UpliftPct   float64
}

// BanditShare returns the fraction of a run's impressions the bandit
// allocated to the given arm, averaged across runs.
func (a AggregateResult) BanditShare(armID int) float64 {
	if a.Impressions <= 0 {
		return 0
	}
	return a.BanditImpressions[armID] / float64(a.Impressions)
}

// Uplift returns the relative click gain of the bandit over the A/B baseline
// in percent. Defined as 0 when the baseline scored no clicks at all.
func Uplift(banditFinal, abFinal float64) float64 {
	if abFinal == 0 {
		return 0
	}
	return (banditFinal - abFinal) / abFinal * 100
}

// CTR returns clicks per impression, 0 for a degenerate impression count.
func CTR(clicks float64, impressions int) float64 {
	if impressions <= 0 {
		return 0
	}
	return clicks / float64(impressions)
}
