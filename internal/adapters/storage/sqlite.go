package storage

// sqlite.go — catálogo de escenarios sobre SQLite.
//
// Estrategia:
//   - `scenarios`: una fila por línea de experimento, upsert por nombre.
//     El id y created_at originales sobreviven al upsert.
//   - `scenario_arms`: una fila por creatividad, recuperadas por posición
//     para conservar el orden de declaración (el desempate del bandit
//     depende de ese orden).
//   - Siembra: un catálogo vacío recibe el escenario "demo" al abrir, así
//     el primer `-mode scenarios` nunca muestra una tabla vacía.
//
// Solo persiste inputs del experimento; los resultados viven en memoria.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/adsim/internal/domain"
)

const schema = `
-- Una fila por línea de experimento, identificada por nombre
CREATE TABLE IF NOT EXISTS scenarios (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    impressions INTEGER NOT NULL,
    runs        INTEGER NOT NULL,
    created_at  DATETIME NOT NULL
);

-- Una fila por creatividad, ordenadas por posición de declaración
CREATE TABLE IF NOT EXISTS scenario_arms (
    scenario_id TEXT    NOT NULL,
    position    INTEGER NOT NULL,
    arm_id      INTEGER NOT NULL,
    name        TEXT    NOT NULL,
    rate        REAL    NOT NULL,
    PRIMARY KEY (scenario_id, position)
);

CREATE INDEX IF NOT EXISTS idx_scenarios_created ON scenarios(created_at DESC);
`

// SQLite implementa ports.ScenarioStore usando SQLite (pure Go, sin CGo).
type SQLite struct {
	db *sql.DB
}

// NewSQLite abre (o crea) el catálogo en el DSN dado. ":memory:" sirve para
// tests. Aplica el schema y siembra el escenario demo si el catálogo está
// vacío.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLite: open %q: %w", dsn, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLite: apply schema: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.seedDemo(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Save guarda el escenario. Si el nombre ya existe, reemplaza parámetros y
// arms conservando el id y created_at de la fila original.
func (s *SQLite) Save(ctx context.Context, sc domain.Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("storage.Save: empty scenario name: %w", domain.ErrConfiguration)
	}
	if sc.Impressions < 1 || sc.Runs < 1 {
		return fmt.Errorf("storage.Save: scenario %q: impressions=%d runs=%d, both must be >= 1: %w",
			sc.Name, sc.Impressions, sc.Runs, domain.ErrConfiguration)
	}
	if _, err := domain.NewArms(sc.Arms); err != nil {
		return fmt.Errorf("storage.Save: scenario %q: %w", sc.Name, err)
	}

	id := sc.ID
	if id == "" {
		id = uuid.New().String()
	}
	created := sc.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.Save: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scenarios (id, name, impressions, runs, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			impressions = excluded.impressions,
			runs        = excluded.runs`,
		id, sc.Name, sc.Impressions, sc.Runs, created.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("storage.Save: upsert scenario %q: %w", sc.Name, err)
	}

	// El upsert conserva el id existente; hay que releerlo antes de
	// escribir los arms.
	var ownerID string
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM scenarios WHERE name = ?`, sc.Name,
	).Scan(&ownerID); err != nil {
		return fmt.Errorf("storage.Save: resolve id for %q: %w", sc.Name, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM scenario_arms WHERE scenario_id = ?`, ownerID,
	); err != nil {
		return fmt.Errorf("storage.Save: clear arms for %q: %w", sc.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scenario_arms (scenario_id, position, arm_id, name, rate)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.Save: prepare arm insert: %w", err)
	}
	defer stmt.Close()

	for pos, arm := range sc.Arms {
		if _, err := stmt.ExecContext(ctx, ownerID, pos, arm.ID, arm.Name, arm.Rate); err != nil {
			return fmt.Errorf("storage.Save: insert arm %d of %q: %w", arm.ID, sc.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.Save: commit: %w", err)
	}
	return nil
}

// Get devuelve el escenario por nombre, con los arms en su orden original.
func (s *SQLite) Get(ctx context.Context, name string) (domain.Scenario, error) {
	var (
		sc      domain.Scenario
		created string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, impressions, runs, created_at
		FROM scenarios
		WHERE name = ?`, name,
	).Scan(&sc.ID, &sc.Name, &sc.Impressions, &sc.Runs, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Scenario{}, fmt.Errorf("storage.Get: scenario %q not found: %w", name, err)
	}
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("storage.Get: query scenario %q: %w", name, err)
	}
	sc.CreatedAt, _ = time.Parse(time.RFC3339, created)

	sc.Arms, err = s.loadArms(ctx, sc.ID)
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("storage.Get: scenario %q: %w", name, err)
	}
	return sc, nil
}

// List devuelve todos los escenarios, los más recientes primero.
func (s *SQLite) List(ctx context.Context) ([]domain.Scenario, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, impressions, runs, created_at
		FROM scenarios
		ORDER BY created_at DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("storage.List: query scenarios: %w", err)
	}
	defer rows.Close()

	var out []domain.Scenario
	for rows.Next() {
		var (
			sc      domain.Scenario
			created string
		)
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Impressions, &sc.Runs, &created); err != nil {
			return nil, fmt.Errorf("storage.List: scan scenario: %w", err)
		}
		sc.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.List: iterate scenarios: %w", err)
	}

	for i := range out {
		out[i].Arms, err = s.loadArms(ctx, out[i].ID)
		if err != nil {
			return nil, fmt.Errorf("storage.List: scenario %q: %w", out[i].Name, err)
		}
	}
	return out, nil
}

// Delete elimina el escenario por nombre, arms incluidos.
func (s *SQLite) Delete(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.Delete: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM scenario_arms
		WHERE scenario_id IN (SELECT id FROM scenarios WHERE name = ?)`, name,
	); err != nil {
		return fmt.Errorf("storage.Delete: clear arms for %q: %w", name, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM scenarios WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("storage.Delete: delete scenario %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage.Delete: scenario %q not found", name)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.Delete: commit: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// loadArms recupera los arms de un escenario en orden de posición.
func (s *SQLite) loadArms(ctx context.Context, scenarioID string) ([]domain.ArmConfig, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT arm_id, name, rate
		FROM scenario_arms
		WHERE scenario_id = ?
		ORDER BY position ASC`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("query arms: %w", err)
	}
	defer rows.Close()

	var arms []domain.ArmConfig
	for rows.Next() {
		var a domain.ArmConfig
		if err := rows.Scan(&a.ID, &a.Name, &a.Rate); err != nil {
			return nil, fmt.Errorf("scan arm: %w", err)
		}
		arms = append(arms, a)
	}
	return arms, rows.Err()
}

// seedDemo inserta el escenario demo si el catálogo está vacío.
func (s *SQLite) seedDemo(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scenarios`,
	).Scan(&count); err != nil {
		return fmt.Errorf("storage.seedDemo: count scenarios: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := s.Save(ctx, domain.DemoScenario()); err != nil {
		return fmt.Errorf("storage.seedDemo: %w", err)
	}
	return nil
}
