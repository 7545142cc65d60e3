package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del backtester.
type Config struct {
	Backtest BacktestConfig `yaml:"backtest"`
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// BacktestConfig controla el comportamiento del engine.
type BacktestConfig struct {
	AllocationPerTrade float64 `yaml:"allocation_per_trade"` // capital fijo por posición
	OutputDir          string  `yaml:"output_dir"`           // directorio de los CSVs
}

// APIConfig contiene los base URLs y las keys de las APIs externas.
// Las keys se leen solo de variables de entorno (.env), nunca del YAML.
type APIConfig struct {
	GammaBase          string `yaml:"gamma_base"`
	CLOBBase           string `yaml:"clob_base"`
	VisualCrossingBase string `yaml:"visualcrossing_base"`
	TomorrowIOBase     string `yaml:"tomorrowio_base"`

	VisualCrossingKey string `yaml:"-"`
	TomorrowIOKey     string `yaml:"-"`
}

// StorageConfig controla dónde se persiste el ledger de runs.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, ":memory:", o vacío para desactivar
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// applyEnvOverrides lee keys y overrides desde variables de entorno.
func applyEnvOverrides(cfg *Config) {
	cfg.API.VisualCrossingKey = os.Getenv("VISUAL_CROSSING_API_KEY")
	cfg.API.TomorrowIOKey = os.Getenv("TOMORROWIO_API_KEY")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Backtest.AllocationPerTrade <= 0 {
		cfg.Backtest.AllocationPerTrade = 100.0
	}
	if cfg.Backtest.OutputDir == "" {
		cfg.Backtest.OutputDir = "test-results"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
