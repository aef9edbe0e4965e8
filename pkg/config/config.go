package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/wms-platform/handy-terminal/pkg/api"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "HANDY_"

// Config holds application configuration
type Config struct {
	Environment string         `yaml:"environment" validate:"required"`
	Server      ServerConfig   `yaml:"server"`
	Backend     BackendConfig  `yaml:"backend"`
	Workflow    WorkflowConfig `yaml:"workflow"`
	Logging     LoggingConfig  `yaml:"logging"`
	Tracing     TracingConfig  `yaml:"tracing"`
}

// ServerConfig configures the presentation adapter
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	// ValidateDocuments checks every response document against its schema
	// and logs violations.
	ValidateDocuments bool `yaml:"validate_documents"`
}

// BackendConfig configures the warehouse backend gateway
type BackendConfig struct {
	BaseURL          string        `yaml:"base_url" validate:"required,url"`
	APIKey           string        `yaml:"api_key" validate:"required"`
	Token            string        `yaml:"token"`
	Timeout          time.Duration `yaml:"timeout" validate:"gt=0"`
	ValidateContract bool          `yaml:"validate_contract"`
	Breaker          BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the backend circuit breaker
type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	FailureThreshold uint32        `yaml:"failure_threshold" validate:"min=1"`
	OpenTimeout      time.Duration `yaml:"open_timeout" validate:"gt=0"`
}

// WorkflowConfig configures the incoming workflow engine
type WorkflowConfig struct {
	Debounce       time.Duration `yaml:"debounce" validate:"gt=0"`
	SuccessDisplay time.Duration `yaml:"success_display" validate:"gte=0"`
	Locale         string        `yaml:"locale" validate:"oneof=ja en"`
}

// LoggingConfig configures structured logging
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// TracingConfig configures OpenTelemetry export
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Addr:            ":8030",
			ShutdownTimeout: 10 * time.Second,
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 15 * time.Second,
			Breaker: BreakerConfig{
				Enabled:          true,
				FailureThreshold: 5,
				OpenTimeout:      15 * time.Second,
			},
		},
		Workflow: WorkflowConfig{
			Debounce:       300 * time.Millisecond,
			SuccessDisplay: 1500 * time.Millisecond,
			Locale:         "ja",
		},
		Logging: LoggingConfig{Level: "info"},
		Tracing: TracingConfig{
			Endpoint:   "localhost:4317",
			SampleRate: 1.0,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in that order. A .env file in the working directory is
// loaded into the environment first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if appErr := api.ValidateStruct(c); appErr != nil {
		return fmt.Errorf("invalid configuration: %w", appErr)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	stringVars := map[string]*string{
		"ENVIRONMENT":      &cfg.Environment,
		"SERVER_ADDR":      &cfg.Server.Addr,
		"BACKEND_BASE_URL": &cfg.Backend.BaseURL,
		"BACKEND_API_KEY":  &cfg.Backend.APIKey,
		"BACKEND_TOKEN":    &cfg.Backend.Token,
		"WORKFLOW_LOCALE":  &cfg.Workflow.Locale,
		"LOG_LEVEL":        &cfg.Logging.Level,
		"TRACING_ENDPOINT": &cfg.Tracing.Endpoint,
	}
	for key, target := range stringVars {
		if value, ok := lookup(key); ok {
			*target = value
		}
	}

	durations := map[string]*time.Duration{
		"SERVER_SHUTDOWN_TIMEOUT":  &cfg.Server.ShutdownTimeout,
		"BACKEND_TIMEOUT":          &cfg.Backend.Timeout,
		"BACKEND_BREAKER_TIMEOUT":  &cfg.Backend.Breaker.OpenTimeout,
		"WORKFLOW_DEBOUNCE":        &cfg.Workflow.Debounce,
		"WORKFLOW_SUCCESS_DISPLAY": &cfg.Workflow.SuccessDisplay,
	}
	for key, target := range durations {
		if value, ok := lookup(key); ok {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
			}
			*target = d
		}
	}

	bools := map[string]*bool{
		"SERVER_VALIDATE_DOCUMENTS": &cfg.Server.ValidateDocuments,
		"BACKEND_VALIDATE_CONTRACT": &cfg.Backend.ValidateContract,
		"BACKEND_BREAKER_ENABLED":   &cfg.Backend.Breaker.Enabled,
		"TRACING_ENABLED":           &cfg.Tracing.Enabled,
	}
	for key, target := range bools {
		if value, ok := lookup(key); ok {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
			}
			*target = b
		}
	}

	if value, ok := lookup("BACKEND_BREAKER_FAILURE_THRESHOLD"); ok {
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid %sBACKEND_BREAKER_FAILURE_THRESHOLD: %w", EnvPrefix, err)
		}
		cfg.Backend.Breaker.FailureThreshold = uint32(n)
	}

	if value, ok := lookup("TRACING_SAMPLE_RATE"); ok {
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid %sTRACING_SAMPLE_RATE: %w", EnvPrefix, err)
		}
		cfg.Tracing.SampleRate = rate
	}

	return nil
}

func lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
