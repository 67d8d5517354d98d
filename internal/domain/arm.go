package domain

import (
	"fmt"
	"math/rand/v2"
)

// ArmConfig define un ad creative del experimento: id único dentro del set,
// nombre opcional para los reports y su CTR real (oculto para la policy).
type ArmConfig struct {
	ID   int     `yaml:"id"`
	Name string  `yaml:"name"`
	Rate float64 `yaml:"rate"`
}

// Arm es un creative con probabilidad de éxito fija y oculta.
// Inmutable tras su creación: solo los observadores externos acumulan
// estadísticas sobre él, Rate nunca cambia ni se expone a la policy.
type Arm struct {
	ID   int
	Name string
	Rate float64
}

// NewArms construye el registry de arms del experimento validando la
// configuración: set no vacío, ids únicos, rate dentro de [0,1].
// El orden de entrada se conserva; es el orden de iteración de la policy
// (desempates) y del reparto round-robin del baseline.
func NewArms(configs []ArmConfig) ([]Arm, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("domain.NewArms: empty arm set: %w", ErrConfiguration)
	}

	seen := make(map[int]bool, len(configs))
	arms := make([]Arm, 0, len(configs))
	for _, c := range configs {
		if seen[c.ID] {
			return nil, fmt.Errorf("domain.NewArms: duplicate arm id %d: %w", c.ID, ErrConfiguration)
		}
		if c.Rate < 0 || c.Rate > 1 {
			return nil, fmt.Errorf("domain.NewArms: arm %d rate %v outside [0,1]: %w", c.ID, c.Rate, ErrConfiguration)
		}
		seen[c.ID] = true

		name := c.Name
		if name == "" {
			name = fmt.Sprintf("Ad %d", c.ID)
		}
		arms = append(arms, Arm{ID: c.ID, Name: name, Rate: c.Rate})
	}

	return arms, nil
}

// Observe simula una impresión del creative: un ensayo Bernoulli
// independiente con probabilidad Rate. Devuelve 1 (click) o 0.
// El RNG es explícito e inyectado por el caller; sin estado random global,
// los runs son reproducibles y paralelizables.
func (a Arm) Observe(rng *rand.Rand) int {
	if rng.Float64() < a.Rate {
		return 1
	}
	return 0
}

// RoundRobinIndex devuelve el índice del arm que el baseline A/B muestra en
// la impresión step (0-indexed): reparto fijo equitativo, i mod k.
// Función pura del step y del número de arms.
func RoundRobinIndex(step, numArms int) int {
	return step % numArms
}
