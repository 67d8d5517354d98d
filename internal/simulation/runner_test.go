package simulation

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/adsim/internal/domain"
	"github.com/alejandrodnm/adsim/internal/policy"
)

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

func demoConfigs() []domain.ArmConfig {
	return []domain.ArmConfig{
		{ID: 1, Name: "Ad A (Low CTR)", Rate: 0.015},
		{ID: 2, Name: "Ad B (High CTR)", Rate: 0.021},
		{ID: 3, Name: "Ad C (Mid CTR)", Rate: 0.018},
	}
}

func mustArms(t *testing.T, configs []domain.ArmConfig) []domain.Arm {
	t.Helper()
	arms, err := domain.NewArms(configs)
	require.NoError(t, err)
	return arms
}

// --- mocks ---

// rogueSelector devuelve un arm que no existe en ningún registry.
type rogueSelector struct{}

func (rogueSelector) Name() string           { return "rogue" }
func (rogueSelector) Select() int            { return 999 }
func (rogueSelector) Observe(_, _ int) error { return nil }

// sulkySelector selecciona un arm válido pero falla al registrar outcomes.
type sulkySelector struct{ armID int }

func (s sulkySelector) Name() string { return "sulky" }
func (s sulkySelector) Select() int  { return s.armID }
func (s sulkySelector) Observe(_, _ int) error {
	return fmt.Errorf("sulky: %w", domain.ErrInternalConsistency)
}

// --- tests ---

func TestRun_SeriesShapeAndTotals(t *testing.T) {
	const impressions = 600
	arms := mustArms(t, demoConfigs())

	res, err := Run(testRNG(1), arms, impressions)
	require.NoError(t, err)

	for _, series := range [][]int{res.BanditCumClicks, res.ABCumClicks} {
		require.Len(t, series, impressions)
		prev := 0
		for i, v := range series {
			delta := v - prev
			require.True(t, delta == 0 || delta == 1,
				"step %d: cumulative delta %d, want 0 or 1", i, delta)
			prev = v
		}
	}

	banditTotal, abTotal := 0, 0
	for _, v := range res.BanditImpressions {
		banditTotal += v
	}
	for _, v := range res.ABImpressions {
		abTotal += v
	}
	assert.Equal(t, impressions, banditTotal)
	assert.Equal(t, impressions, abTotal)
}

func TestRun_ClicksConsistentWithSeries(t *testing.T) {
	arms := mustArms(t, demoConfigs())

	res, err := Run(testRNG(2), arms, 500)
	require.NoError(t, err)

	banditClicks, abClicks := 0, 0
	for _, v := range res.BanditClicks {
		banditClicks += v
	}
	for _, v := range res.ABClicks {
		abClicks += v
	}
	assert.Equal(t, res.BanditFinal(), banditClicks)
	assert.Equal(t, res.ABFinal(), abClicks)
}

func TestRun_ABExactSplit(t *testing.T) {
	// 400 impresiones entre 4 arms → el baseline muestra cada uno
	// exactamente 100 veces.
	configs := []domain.ArmConfig{
		{ID: 1, Rate: 0.1}, {ID: 2, Rate: 0.2}, {ID: 3, Rate: 0.3}, {ID: 4, Rate: 0.4},
	}
	arms := mustArms(t, configs)

	res, err := Run(testRNG(3), arms, 400)
	require.NoError(t, err)

	for _, c := range configs {
		assert.Equal(t, 100, res.ABImpressions[c.ID], "arm %d", c.ID)
	}
}

func TestRun_SeededDeterminism(t *testing.T) {
	arms := mustArms(t, demoConfigs())

	a, err := Run(testRNG(42), arms, 300)
	require.NoError(t, err)
	b, err := Run(testRNG(42), arms, 300)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRun_SingleArm(t *testing.T) {
	arms := mustArms(t, []domain.ArmConfig{{ID: 5, Name: "solo", Rate: 0.3}})

	res, err := Run(testRNG(4), arms, 300)
	require.NoError(t, err)

	// Con un solo arm el bandit lo selecciona siempre, igual que el baseline.
	assert.Equal(t, 300, res.BanditImpressions[5])
	assert.Equal(t, 300, res.ABImpressions[5])
	assert.Len(t, res.BanditCumClicks, 300)
	assert.Len(t, res.ABCumClicks, 300)
}

func TestRun_EmptyArms(t *testing.T) {
	_, err := Run(testRNG(5), nil, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestRun_NoImpressions(t *testing.T) {
	arms := mustArms(t, demoConfigs())

	_, err := Run(testRNG(6), arms, 0)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = Run(testRNG(6), arms, -3)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestRun_UnknownArmSelectedAborts(t *testing.T) {
	arms := mustArms(t, demoConfigs())

	res, err := runWith(testRNG(7), rogueSelector{}, arms, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInternalConsistency)
	// fallo atómico: nada de resultado parcial
	assert.Empty(t, res.BanditCumClicks)
	assert.Empty(t, res.BanditImpressions)
}

func TestRun_ObserveErrorAborts(t *testing.T) {
	arms := mustArms(t, demoConfigs())

	res, err := runWith(testRNG(8), sulkySelector{armID: 1}, arms, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInternalConsistency)
	assert.Empty(t, res.ABCumClicks)
}

func TestRun_PolicyObservesEveryImpression(t *testing.T) {
	const impressions = 400
	rng := testRNG(9)
	arms := mustArms(t, demoConfigs())
	pol := policy.NewThompson(rng, arms)

	res, err := runWith(rng, pol, arms, impressions)
	require.NoError(t, err)

	trials := 0
	for id, b := range pol.Beliefs() {
		require.GreaterOrEqual(t, b.Successes, 1, "arm %d", id)
		require.GreaterOrEqual(t, b.Failures, 1, "arm %d", id)
		trials += b.Trials()
	}
	// cada impresión del bandit actualizó exactamente una belief
	assert.Equal(t, impressions, trials)

	for id, b := range pol.Beliefs() {
		assert.Equal(t, res.BanditClicks[id], b.Successes-1, "arm %d clicks", id)
		assert.Equal(t, res.BanditImpressions[id]-res.BanditClicks[id], b.Failures-1, "arm %d misses", id)
	}
}
