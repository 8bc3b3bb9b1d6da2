package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"isoplan/internal/bateman"
	"isoplan/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig `validate:"required"`
	Data     DataConfig   `validate:"required"`
	Engine   EngineConfig `validate:"required"`
	Database DatabaseConfig
	LogLevel string `validate:"oneof=ERROR WARN INFO DEBUG TRACE"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required,numeric"`
	GinMode string `validate:"oneof=debug release test"`
}

// DataConfig points at optional registry and nuclear-data files. Empty
// values select the embedded defaults.
type DataConfig struct {
	RoutesFile      string `validate:"omitempty,routesfile"`
	NuclearDataFile string `validate:"omitempty,endswith=.yaml|endswith=.yml"`
}

// EngineConfig tunes evaluation and chain solving.
type EngineConfig struct {
	BatchConcurrency  int64  `validate:"gte=1"`
	EulerMaxSteps     int    `validate:"gte=1000"`
	MonteCarloSamples int    `validate:"gte=0,ne=1"`
	MonteCarloSeed    uint64 `validate:"-"`
}

// DatabaseConfig enables the Postgres route registry when URL is set.
// Migrate creates the routes table and seeds it with the embedded routes
// when it is empty.
type DatabaseConfig struct {
	URL     string `validate:"omitempty,url"`
	Migrate bool
}

// Enabled reports whether a database registry is configured.
func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

var configValidate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("routesfile", func(fl validator.FieldLevel) bool {
		name := strings.ToLower(fl.Field().String())
		for _, ext := range []string{".yaml", ".yml", ".xlsx", ".csv"} {
			if strings.HasSuffix(name, ext) {
				return true
			}
		}
		return false
	})
	return v
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Data: DataConfig{
			RoutesFile:      os.Getenv("ROUTES_FILE"),
			NuclearDataFile: os.Getenv("NUCLEAR_DATA_FILE"),
		},
		Engine: EngineConfig{
			BatchConcurrency:  int64(getEnvIntOrDefault("BATCH_CONCURRENCY", 8)),
			EulerMaxSteps:     getEnvIntOrDefault("EULER_MAX_STEPS", bateman.DefaultMaxSteps),
			MonteCarloSamples: getEnvIntOrDefault("MONTE_CARLO_SAMPLES", 0),
			MonteCarloSeed:    getEnvUintOrDefault("MONTE_CARLO_SEED", 42),
		},
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			Migrate: getEnvBoolOrDefault("DATABASE_MIGRATE", false),
		},
		LogLevel: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUintOrDefault(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
