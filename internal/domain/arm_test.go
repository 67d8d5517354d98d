package domain

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

func TestNewArms_PreservesOrderAndNames(t *testing.T) {
	arms, err := NewArms([]ArmConfig{
		{ID: 7, Name: "Ad A (Low CTR)", Rate: 0.015},
		{ID: 2, Rate: 0.021},
	})
	require.NoError(t, err)
	require.Len(t, arms, 2)
	assert.Equal(t, 7, arms[0].ID)
	assert.Equal(t, "Ad A (Low CTR)", arms[0].Name)
	assert.Equal(t, 2, arms[1].ID)
	assert.Equal(t, "Ad 2", arms[1].Name) // nombre por defecto
}

func TestNewArms_EmptySet(t *testing.T) {
	_, err := NewArms(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNewArms_DuplicateID(t *testing.T) {
	_, err := NewArms([]ArmConfig{{ID: 1, Rate: 0.1}, {ID: 1, Rate: 0.2}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNewArms_RateOutOfRange(t *testing.T) {
	_, err := NewArms([]ArmConfig{{ID: 1, Rate: 1.2}})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewArms([]ArmConfig{{ID: 1, Rate: -0.01}})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNewArms_BoundaryRatesValid(t *testing.T) {
	arms, err := NewArms([]ArmConfig{{ID: 1, Rate: 0}, {ID: 2, Rate: 1}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, arms[0].Rate)
	assert.Equal(t, 1.0, arms[1].Rate)
}

// --- Observe ---

func TestArm_Observe_BinaryOutcomes(t *testing.T) {
	rng := testRNG(1)
	arm := Arm{ID: 1, Rate: 0.5}
	for i := 0; i < 500; i++ {
		r := arm.Observe(rng)
		require.True(t, r == 0 || r == 1, "outcome must be binary, got %d", r)
	}
}

func TestArm_Observe_DegenerateRates(t *testing.T) {
	rng := testRNG(2)
	always := Arm{ID: 1, Rate: 1}
	never := Arm{ID: 2, Rate: 0}
	for i := 0; i < 200; i++ {
		assert.Equal(t, 1, always.Observe(rng))
		assert.Equal(t, 0, never.Observe(rng))
	}
}

func TestArm_Observe_SeededDeterminism(t *testing.T) {
	arm := Arm{ID: 1, Rate: 0.3}
	a := testRNG(42)
	b := testRNG(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, arm.Observe(a), arm.Observe(b))
	}
}

func TestArm_Observe_FrequencyTracksRate(t *testing.T) {
	// 5000 ensayos con p=0.2: la frecuencia observada debe quedar a
	// pocas desviaciones de la media (σ ≈ 0.0057).
	rng := testRNG(7)
	arm := Arm{ID: 1, Rate: 0.2}
	clicks := 0
	const n = 5000
	for i := 0; i < n; i++ {
		clicks += arm.Observe(rng)
	}
	assert.InDelta(t, 0.2, float64(clicks)/n, 0.025)
}

// --- RoundRobinIndex ---

func TestRoundRobinIndex_Cycles(t *testing.T) {
	assert.Equal(t, 0, RoundRobinIndex(0, 3))
	assert.Equal(t, 1, RoundRobinIndex(1, 3))
	assert.Equal(t, 2, RoundRobinIndex(2, 3))
	assert.Equal(t, 0, RoundRobinIndex(3, 3))
	assert.Equal(t, 2, RoundRobinIndex(2000, 3)) // 2000 mod 3
}

func TestRoundRobinIndex_WindowCoversAllArms(t *testing.T) {
	// En cualquier ventana de k impresiones consecutivas cada arm
	// aparece exactamente una vez.
	const k = 4
	for start := 0; start < 40; start++ {
		seen := make(map[int]int, k)
		for i := start; i < start+k; i++ {
			seen[RoundRobinIndex(i, k)]++
		}
		require.Len(t, seen, k)
		for idx, count := range seen {
			assert.Equal(t, 1, count, "arm index %d shown %d times in window", idx, count)
		}
	}
}

func TestRoundRobinIndex_SingleArm(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, 0, RoundRobinIndex(i, 1))
	}
}

// --- BeliefState ---

func TestNewBeliefState_UniformPrior(t *testing.T) {
	b := NewBeliefState()
	assert.Equal(t, 1, b.Successes)
	assert.Equal(t, 1, b.Failures)
	assert.Equal(t, 0, b.Trials())
	assert.Equal(t, 0.5, b.Mean())
}

func TestBeliefState_Update(t *testing.T) {
	b := NewBeliefState()
	b.Update(1)
	b.Update(0)
	b.Update(1)
	b.Update(1)

	// 3 clicks y 1 miss sobre el prior (1,1) → Beta(4,2)
	assert.Equal(t, 4, b.Successes)
	assert.Equal(t, 2, b.Failures)
	assert.Equal(t, 4, b.Trials())
	assert.InDelta(t, 4.0/6.0, b.Mean(), 0.0001)
}

func TestBeliefState_NeverBelowPrior(t *testing.T) {
	b := NewBeliefState()
	for i := 0; i < 50; i++ {
		b.Update(i % 2)
		require.GreaterOrEqual(t, b.Successes, 1)
		require.GreaterOrEqual(t, b.Failures, 1)
	}
}
