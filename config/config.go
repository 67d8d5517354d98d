package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/adsim/internal/domain"
)

// Config es la configuración completa del simulador.
type Config struct {
	Simulation SimulationConfig   `yaml:"simulation"`
	Arms       []domain.ArmConfig `yaml:"arms"`
	Storage    StorageConfig      `yaml:"storage"`
	Log        LogConfig          `yaml:"log"`
}

// SimulationConfig controla los parámetros del experimento.
type SimulationConfig struct {
	Impressions int    `yaml:"impressions"` // 0 → default (2000)
	Runs        int    `yaml:"runs"`        // 0 → default (50)
	Seed        uint64 `yaml:"seed"`        // 0 → derivar del reloj al arrancar
	Workers     int    `yaml:"workers"`     // 0 → runtime.NumCPU()
}

// StorageConfig controla dónde se persiste el catálogo de escenarios.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Con path vacío arranca solo con defaults (escenario demo). Los
// valores de entorno sobreescriben a los del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate comprueba que la configuración describe un experimento ejecutable.
func (c *Config) Validate() error {
	if c.Simulation.Impressions < 1 {
		return fmt.Errorf("config.Validate: impressions=%d, must be >= 1: %w",
			c.Simulation.Impressions, domain.ErrConfiguration)
	}
	if c.Simulation.Runs < 1 {
		return fmt.Errorf("config.Validate: runs=%d, must be >= 1: %w",
			c.Simulation.Runs, domain.ErrConfiguration)
	}
	if _, err := domain.NewArms(c.Arms); err != nil {
		return fmt.Errorf("config.Validate: %w", err)
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ADSIM_IMPRESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.Impressions = n
		}
	}
	if v := os.Getenv("ADSIM_RUNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.Runs = n
		}
	}
	if v := os.Getenv("ADSIM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Simulation.Seed = n
		}
	}
	if v := os.Getenv("ADSIM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.Workers = n
		}
	}
	if v := os.Getenv("ADSIM_DB_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults rellena los valores sin establecer. Solo el cero cuenta como
// ausente; un valor negativo se conserva para que Validate lo rechace.
func setDefaults(cfg *Config) {
	if cfg.Simulation.Impressions == 0 {
		cfg.Simulation.Impressions = 2000
	}
	if cfg.Simulation.Runs == 0 {
		cfg.Simulation.Runs = 50
	}
	if len(cfg.Arms) == 0 {
		cfg.Arms = domain.DemoScenario().Arms
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "adsim.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
