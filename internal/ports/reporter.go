package ports

import "github.com/alejandrodnm/adsim/internal/domain"

// Reporter presenta los resultados de simulación al usuario.
// En la implementación de consola, imprime tablas formateadas.
type Reporter interface {
	// PrintAggregate imprime el informe completo de un experimento multi-run.
	PrintAggregate(result domain.AggregateResult, arms []domain.Arm)

	// PrintRun imprime el detalle de un run individual.
	PrintRun(result domain.RunResult, arms []domain.Arm)

	// PrintScenarios imprime el listado del catálogo de escenarios.
	PrintScenarios(scenarios []domain.Scenario)
}
