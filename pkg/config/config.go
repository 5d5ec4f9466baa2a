package config

import (
	"time"
)

// Config is the complete configuration for the reporting engine. Values load
// from defaults, then environment variables, and validate before use.
type Config struct {
	Log       LogConfig       `koanf:"log"`
	Engine    EngineConfig    `koanf:"engine"    validate:"required"`
	Presenton PresentonConfig `koanf:"presenton" validate:"required"`
	Export    ExportConfig    `koanf:"export"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `koanf:"level"  env:"LOG_LEVEL"  validate:"omitempty,oneof=debug info warn error"`
	JSON   bool   `koanf:"json"   env:"LOG_JSON"`
	Source bool   `koanf:"source" env:"LOG_SOURCE"`
}

// EngineConfig controls report generation.
type EngineConfig struct {
	// MaxWorkers bounds parallel source collection and widget rendering.
	MaxWorkers int `koanf:"max_workers" env:"ENGINE_MAX_WORKERS" validate:"min=1,max=64"`
	// AliasTablePath optionally overrides the built-in field alias tables.
	AliasTablePath string `koanf:"alias_table_path" env:"ENGINE_ALIAS_TABLE_PATH"`
}

// PresentonConfig configures the external AI presentation service.
type PresentonConfig struct {
	BaseURL         string        `koanf:"base_url"         env:"PRESENTON_BASE_URL"         validate:"omitempty,url"`
	HealthTimeout   time.Duration `koanf:"health_timeout"   env:"PRESENTON_HEALTH_TIMEOUT"   validate:"min=0"`
	GenerateTimeout time.Duration `koanf:"generate_timeout" env:"PRESENTON_GENERATE_TIMEOUT" validate:"min=0"`
	Retries         int           `koanf:"retries"          env:"PRESENTON_RETRIES"          validate:"min=0,max=10"`
}

// ExportConfig controls artifact output.
type ExportConfig struct {
	OutputDir string `koanf:"output_dir" env:"EXPORT_OUTPUT_DIR"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Engine: EngineConfig{
			MaxWorkers: 4,
		},
		Presenton: PresentonConfig{
			BaseURL:         "http://localhost:3050",
			HealthTimeout:   5 * time.Second,
			GenerateTimeout: 120 * time.Second,
			Retries:         2,
		},
		Export: ExportConfig{
			OutputDir: "reports",
		},
	}
}
