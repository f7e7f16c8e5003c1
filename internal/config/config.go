// Package config loads lumos settings from LUMOS_* environment variables.
// Command-line flags override whatever is loaded here.
package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

const namespace = "LUMOS"

// Env is the process configuration.
type Env struct {
	DBPath          string `envconfig:"DB_PATH" default:"lumos.db"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	MaxOpenConns    int    `envconfig:"MAX_OPEN_CONNS" default:"1"`
	ExportDir       string `envconfig:"EXPORT_DIR" default:"exports"`
	SaveConcurrency int    `envconfig:"SAVE_CONCURRENCY" default:"4"`
}

// Load reads the environment.
func Load() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if env.MaxOpenConns < 1 {
		return nil, fmt.Errorf("LUMOS_MAX_OPEN_CONNS must be at least 1, got %d", env.MaxOpenConns)
	}
	if env.SaveConcurrency < 1 {
		return nil, fmt.Errorf("LUMOS_SAVE_CONCURRENCY must be at least 1, got %d", env.SaveConcurrency)
	}
	return &env, nil
}

// SlogLevel parses LogLevel, falling back to info.
func (e *Env) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
