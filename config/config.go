package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// EnvPrefix namespaces every environment variable the server reads
const EnvPrefix = "ROVER_"

// Store drivers
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the server configuration
type Config struct {
	Host  string      `yaml:"host" env:"HOST"`
	Port  int         `yaml:"port" env:"PORT"`
	Debug bool        `yaml:"debug" env:"DEBUG"`
	Store StoreConfig `yaml:"store" envPrefix:"STORE_"`
	Ngrok NgrokConfig `yaml:"ngrok" envPrefix:"NGROK_"`
}

// StoreConfig selects and locates the rover store backend
type StoreConfig struct {
	Driver  string `yaml:"driver" env:"DRIVER"`
	DataDir string `yaml:"data_dir" env:"DATA_DIR"`
	DSN     string `yaml:"dsn" env:"DSN"`
}

// NgrokConfig controls the optional public tunnel
type NgrokConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	AuthToken string `yaml:"authtoken" env:"AUTHTOKEN"`
	Domain    string `yaml:"domain" env:"DOMAIN"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		Host: "localhost",
		Port: 8080,
		Store: StoreConfig{
			Driver:  DriverMemory,
			DataDir: "rovers",
			DSN:     "rovers.db",
		},
	}
}

// Load layers defaults, an optional YAML file and ROVER_* environment
// variables, in that order. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks ranges and enumerations
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Store.DataDir == "" {
			return fmt.Errorf("%w: store.data_dir is required for the file driver", ErrInvalidConfig)
		}
	case DriverSQLite, DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: store.dsn is required for the %s driver", ErrInvalidConfig, c.Store.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.Store.Driver)
	}

	return nil
}

// Addr returns host:port
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
