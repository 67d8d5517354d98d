package policy

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/alejandrodnm/adsim/internal/domain"
)

// Thompson implementa Beta-Bernoulli Thompson Sampling: mantiene una
// BeliefState por arm y selecciona por el sample mayor de las posteriors.
// Nunca ve los rates reales de los arms, solo los outcomes que observa.
type Thompson struct {
	rng     *rand.Rand
	arms    []domain.Arm // orden del registry: fija los desempates de Select
	beliefs map[int]*domain.BeliefState
}

// NewThompson crea la policy con prior uniforme Beta(1,1) para cada arm.
// El RNG alimenta los samples de las posteriors; inyectarlo por run hace la
// policy reproducible y segura bajo runs paralelos.
func NewThompson(rng *rand.Rand, arms []domain.Arm) *Thompson {
	beliefs := make(map[int]*domain.BeliefState, len(arms))
	for _, a := range arms {
		beliefs[a.ID] = domain.NewBeliefState()
	}
	return &Thompson{rng: rng, arms: arms, beliefs: beliefs}
}

// Name devuelve el identificador de la policy.
func (t *Thompson) Name() string { return "thompson" }

// Select dibuja un sample independiente de la posterior Beta de cada arm y
// devuelve el id del sample estrictamente mayor; en empates gana el primer
// arm en orden de registry. Posteriors anchas producen samples altos de vez
// en cuando aunque su media sea baja (exploración); posteriors estrechas con
// media alta dominan cuando la evidencia se acumula (explotación).
func (t *Thompson) Select() int {
	best := t.arms[0].ID
	maxSample := -1.0 // por debajo de cualquier sample Beta, el primer arm siempre califica
	for _, a := range t.arms {
		b := t.beliefs[a.ID]
		dist := distuv.Beta{
			Alpha: float64(b.Successes),
			Beta:  float64(b.Failures),
			Src:   t.rng,
		}
		if s := dist.Rand(); s > maxSample {
			maxSample = s
			best = a.ID
		}
	}
	return best
}

// Observe actualiza la belief del arm con el outcome observado: click
// incrementa Successes, cualquier otro valor incrementa Failures.
func (t *Thompson) Observe(armID, outcome int) error {
	b, ok := t.beliefs[armID]
	if !ok {
		return fmt.Errorf("policy.Thompson.Observe: arm %d not in registry: %w",
			armID, domain.ErrInternalConsistency)
	}
	b.Update(outcome)
	return nil
}

// Beliefs devuelve una copia del estado de creencias actual para reports y
// tests; mutar la copia no toca el estado interno de la policy.
func (t *Thompson) Beliefs() map[int]domain.BeliefState {
	out := make(map[int]domain.BeliefState, len(t.beliefs))
	for id, b := range t.beliefs {
		out[id] = *b
	}
	return out
}
