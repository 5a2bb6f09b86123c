// Package config loads runtime settings from POSTS_* environment variables.
//
// A `.env` file in the working directory is loaded first when present.
// Keys map by lower-casing the name without its prefix, so
// POSTS_REDIS_ADDR becomes redis_addr.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "POSTS_"

type Config struct {
	Env        string        `koanf:"env" validate:"required,oneof=development production"`
	Port       string        `koanf:"port" validate:"required,numeric"`
	RedisAddr  string        `koanf:"redis_addr" validate:"required"`
	BadgerPath string        `koanf:"badger_path" validate:"required"`
	GCInterval time.Duration `koanf:"gc_interval" validate:"required"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Env:        "development",
		Port:       "8000",
		RedisAddr:  "localhost:6379",
		BadgerPath: "./badger-data",
		GCInterval: 5 * time.Minute,
	}
}

// Load applies the environment on top of Default.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config after flags have been applied.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
