package ports

import (
	"context"

	"github.com/alejandrodnm/adsim/internal/domain"
)

// ScenarioStore persiste el catálogo de escenarios: líneas de experimento
// con nombre, recuperables entre sesiones. Guarda inputs de simulación,
// nunca resultados.
type ScenarioStore interface {
	// Save guarda el escenario; si ya existe uno con el mismo nombre,
	// reemplaza sus arms y parámetros (upsert por nombre).
	Save(ctx context.Context, sc domain.Scenario) error

	// Get devuelve el escenario por nombre, con los arms en su orden original.
	Get(ctx context.Context, name string) (domain.Scenario, error)

	// List devuelve todos los escenarios, los más recientes primero.
	List(ctx context.Context) ([]domain.Scenario, error)

	// Delete elimina el escenario por nombre.
	Delete(ctx context.Context, name string) error

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
