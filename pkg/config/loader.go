package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces all environment overrides.
const envPrefix = "ARLO_"

// envMappings routes environment variables with underscores in their leaf
// names to the right koanf paths; everything else falls through to the
// generic prefix transform.
var envMappings = map[string]string{
	"ARLO_LOG_LEVEL":                  "log.level",
	"ARLO_LOG_JSON":                   "log.json",
	"ARLO_LOG_SOURCE":                 "log.source",
	"ARLO_ENGINE_MAX_WORKERS":         "engine.max_workers",
	"ARLO_ENGINE_ALIAS_TABLE_PATH":    "engine.alias_table_path",
	"ARLO_PRESENTON_BASE_URL":         "presenton.base_url",
	"ARLO_PRESENTON_HEALTH_TIMEOUT":   "presenton.health_timeout",
	"ARLO_PRESENTON_GENERATE_TIMEOUT": "presenton.generate_timeout",
	"ARLO_PRESENTON_RETRIES":          "presenton.retries",
	"ARLO_EXPORT_OUTPUT_DIR":          "export.output_dir",
}

// Loader loads and validates configuration.
type Loader struct {
	koanf     *koanf.Koanf
	validator *validator.Validate
}

// NewLoader creates a configuration loader.
func NewLoader() *Loader {
	return &Loader{
		koanf:     koanf.New("."),
		validator: validator.New(),
	}
}

// Load builds the configuration from defaults and environment variables.
func (l *Loader) Load(_ context.Context) (*Config, error) {
	if err := l.koanf.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := l.koanf.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			if path, ok := envMappings[key]; ok {
				return path, value
			}
			key = strings.TrimPrefix(key, envPrefix)
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := l.koanf.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := l.validator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration is invalid: %w", err)
	}
	return cfg, nil
}
