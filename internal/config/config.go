// Package config loads server settings from TASKHIVE_* environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/and161185/taskhive/internal/limiter"
)

// Environment selects logger flavour and other dev conveniences.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Prefix is the environment variable prefix.
const Prefix = "TASKHIVE"

// Config holds the configuration for the server.
type Config struct {
	HTTPAddr       string      `envconfig:"HTTP_ADDR" default:":8080"`
	GRPCHealthAddr string      `envconfig:"GRPC_HEALTH_ADDR" default:":9090"`
	Environment    Environment `envconfig:"ENV" default:"production"`

	// Storage
	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DSN      string `envconfig:"DSN" default:"file:taskhive.db"`

	// Auth
	JWTKey        string        `envconfig:"JWT_KEY"`
	AccessTTL     time.Duration `envconfig:"ACCESS_TTL" default:"24h"`
	LoginWindow   time.Duration `envconfig:"LOGIN_WINDOW" default:"15m"`
	LoginMaxFails int           `envconfig:"LOGIN_MAX_FAILS" default:"5"`
	LoginBlockFor time.Duration `envconfig:"LOGIN_BLOCK_FOR" default:"15m"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	// RewardSeed seeds reward selection; zero means time-based.
	RewardSeed uint64 `envconfig:"REWARD_SEED" default:"0"`
}

// Load parses the environment into a Config. It does not validate.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	return &cfg, nil
}

// BindFlags registers command-line overrides whose defaults are the
// already loaded values.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.HTTPAddr, "addr", c.HTTPAddr, "HTTP listen address")
	fs.StringVar(&c.GRPCHealthAddr, "health-addr", c.GRPCHealthAddr, "gRPC health listen address")
	fs.StringVar(&c.DBDriver, "driver", c.DBDriver, "storage driver: sqlite or postgres")
	fs.StringVar(&c.DSN, "dsn", c.DSN, "storage DSN")
	fs.StringVar(&c.JWTKey, "jwt-key", c.JWTKey, "HS256 signing key (required)")
	fs.DurationVar(&c.AccessTTL, "access-ttl", c.AccessTTL, "access token TTL")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "graceful shutdown timeout")
	fs.Func("env", "development or production", func(v string) error {
		c.Environment = Environment(v)
		return nil
	})
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.JWTKey == "" {
		return errors.New("missing jwt signing key (TASKHIVE_JWT_KEY or --jwt-key)")
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DSN == "" {
		return errors.New("empty DSN")
	}
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unsupported ENV: %s", c.Environment)
	}
	if c.AccessTTL <= 0 {
		return fmt.Errorf("access ttl must be positive, got %s", c.AccessTTL)
	}
	if c.LoginWindow <= 0 || c.LoginBlockFor <= 0 || c.LoginMaxFails <= 0 {
		return errors.New("login limiter settings must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// IsDevelopment returns true if the environment is set to development.
func (c *Config) IsDevelopment() bool { return c.Environment == EnvDevelopment }

// LoginPolicy derives the limiter policy.
func (c *Config) LoginPolicy() limiter.Policy {
	return limiter.Policy{Window: c.LoginWindow, MaxFails: c.LoginMaxFails, BlockFor: c.LoginBlockFor}
}
