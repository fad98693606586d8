// Package config loads the directory service configuration: built-in
// defaults, then an optional YAML file, then DIRECTORY_* environment
// variables, validated as a whole.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. DIRECTORY_HTTP_PORT.
const EnvPrefix = "DIRECTORY"

const (
	SourceMemory   = "memory"
	SourceDatabase = "database"
)

// Config struct for YAML configuration
type Config struct {
	HTTPPort int `yaml:"HTTP_PORT" envconfig:"HTTP_PORT" validate:"min=1,max=65535"`
	// GRPCPort serves the health service; 0 disables it.
	GRPCPort int `yaml:"GRPC_PORT" envconfig:"GRPC_PORT" validate:"min=0,max=65535"`

	LogLevel  string `yaml:"LOG_LEVEL" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"LOG_FORMAT" envconfig:"LOG_FORMAT" validate:"oneof=json console"`

	Source        string        `yaml:"SOURCE" envconfig:"SOURCE" validate:"oneof=memory database"`
	FetchDelay    time.Duration `yaml:"FETCH_DELAY" envconfig:"FETCH_DELAY" validate:"min=0"`
	FetchFail     bool          `yaml:"FETCH_FAIL" envconfig:"FETCH_FAIL"`
	FetchRetries  uint64        `yaml:"FETCH_RETRIES" envconfig:"FETCH_RETRIES" validate:"max=10"`
	RetryInterval time.Duration `yaml:"RETRY_INTERVAL" envconfig:"RETRY_INTERVAL" validate:"min=0"`

	PageSize  int    `yaml:"PAGE_SIZE" envconfig:"PAGE_SIZE" validate:"oneof=5 10 20"`
	Collation string `yaml:"COLLATION" envconfig:"COLLATION" validate:"bcp47_language_tag"`

	ReloadPerMinute int `yaml:"RELOAD_PER_MINUTE" envconfig:"RELOAD_PER_MINUTE" validate:"min=1"`
	// Production turns on HTTPS redirects and strict security headers.
	Production bool `yaml:"PRODUCTION" envconfig:"PRODUCTION"`

	DBDriver   string `yaml:"DB_DRIVER" envconfig:"DB_DRIVER" validate:"oneof=sqlite postgres"`
	DBPath     string `yaml:"DB_PATH" envconfig:"DB_PATH"`
	DBHost     string `yaml:"DB_HOST" envconfig:"DB_HOST" validate:"required_if=DBDriver postgres"`
	DBPort     int    `yaml:"DB_PORT" envconfig:"DB_PORT" validate:"min=0,max=65535"`
	DBUser     string `yaml:"DB_USER" envconfig:"DB_USER"`
	DBPassword string `yaml:"DB_PASSWORD" envconfig:"DB_PASSWORD"`
	DBName     string `yaml:"DB_NAME" envconfig:"DB_NAME" validate:"required_if=DBDriver postgres"`
	DBSSLMode  string `yaml:"DB_SSLMODE" envconfig:"DB_SSLMODE"`

	KafkaBrokers []string `yaml:"KAFKA_BROKERS" envconfig:"KAFKA_BROKERS"`
	Topic        string   `yaml:"TOPIC" envconfig:"TOPIC" validate:"required_with=KafkaBrokers"`
}

// Default returns the configuration used when nothing else is given.
func Default() Config {
	return Config{
		HTTPPort:        8080,
		GRPCPort:        0,
		LogLevel:        "info",
		LogFormat:       "json",
		Source:          SourceMemory,
		FetchDelay:      700 * time.Millisecond,
		FetchRetries:    0,
		RetryInterval:   200 * time.Millisecond,
		PageSize:        5,
		Collation:       "en",
		ReloadPerMinute: 30,
		DBDriver:        "sqlite",
		DBPort:          5432,
		DBSSLMode:       "disable",
		Topic:           "directory.events",
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load builds the configuration. A missing file at path is not an error;
// an empty path skips the file step.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(file, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
