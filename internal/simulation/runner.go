package simulation

import (
	"fmt"
	"math/rand/v2"

	"github.com/alejandrodnm/adsim/internal/domain"
	"github.com/alejandrodnm/adsim/internal/policy"
)

// Run executes one complete simulation: totalImpressions steps through a
// fresh Thompson policy and the round-robin baseline, both drawing from the
// same run-scoped RNG. Arms and policy state never survive the call, so no
// state leaks between runs.
func Run(rng *rand.Rand, arms []domain.Arm, totalImpressions int) (domain.RunResult, error) {
	return runWith(rng, policy.NewThompson(rng, arms), arms, totalImpressions)
}

// runWith drives the impression loop with an explicit policy. It is the
// seam the tests use to force the failure paths a correct policy never hits.
func runWith(rng *rand.Rand, pol policy.Selector, arms []domain.Arm, totalImpressions int) (domain.RunResult, error) {
	if len(arms) == 0 {
		return domain.RunResult{}, fmt.Errorf("simulation.Run: empty arm set: %w", domain.ErrConfiguration)
	}
	if totalImpressions < 1 {
		return domain.RunResult{}, fmt.Errorf("simulation.Run: impressions %d < 1: %w",
			totalImpressions, domain.ErrConfiguration)
	}

	byID := make(map[int]domain.Arm, len(arms))
	for _, a := range arms {
		byID[a.ID] = a
	}

	res := domain.RunResult{
		BanditImpressions: make(map[int]int, len(arms)),
		BanditClicks:      make(map[int]int, len(arms)),
		BanditCumClicks:   make([]int, 0, totalImpressions),
		ABImpressions:     make(map[int]int, len(arms)),
		ABClicks:          make(map[int]int, len(arms)),
		ABCumClicks:       make([]int, 0, totalImpressions),
	}

	banditTotal, abTotal := 0, 0
	for i := 0; i < totalImpressions; i++ {
		// Bandit branch: the policy picks, the arm answers, the policy learns.
		picked := pol.Select()
		arm, ok := byID[picked]
		if !ok {
			return domain.RunResult{}, fmt.Errorf("simulation.Run: policy %q selected unknown arm %d: %w",
				pol.Name(), picked, domain.ErrInternalConsistency)
		}
		r := arm.Observe(rng)
		if err := pol.Observe(picked, r); err != nil {
			return domain.RunResult{}, fmt.Errorf("simulation.Run: record outcome: %w", err)
		}
		res.BanditImpressions[picked]++
		res.BanditClicks[picked] += r
		banditTotal += r
		res.BanditCumClicks = append(res.BanditCumClicks, banditTotal)

		// Baseline branch: fixed round-robin split. The outcome draw is
		// independent from the bandit branch's; the strategies see
		// statistically equivalent traffic, not identical users.
		base := arms[domain.RoundRobinIndex(i, len(arms))]
		r2 := base.Observe(rng)
		res.ABImpressions[base.ID]++
		res.ABClicks[base.ID] += r2
		abTotal += r2
		res.ABCumClicks = append(res.ABCumClicks, abTotal)
	}

	return res, nil
}
