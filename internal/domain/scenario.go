package domain

import "time"

// Scenario es una línea de experimento guardada en el catálogo: el set de
// arms más los parámetros de ejecución, recuperable por nombre. Persiste
// inputs del experimento, nunca resultados.
type Scenario struct {
	ID          string
	Name        string
	Arms        []ArmConfig
	Impressions int
	Runs        int
	CreatedAt   time.Time
}

// DemoScenario devuelve la línea de ejemplo con la que se siembra un
// catálogo vacío: tres creatives con CTRs bajos y cercanos, el caso donde
// la diferencia bandit vs A/B es visible pero no trivial.
func DemoScenario() Scenario {
	return Scenario{
		Name: "demo",
		Arms: []ArmConfig{
			{ID: 1, Name: "Ad A (Low CTR)", Rate: 0.015},
			{ID: 2, Name: "Ad B (High CTR)", Rate: 0.021},
			{ID: 3, Name: "Ad C (Mid CTR)", Rate: 0.018},
		},
		Impressions: 2000,
		Runs:        50,
	}
}
