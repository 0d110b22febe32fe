// Package config loads termsnake settings from the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"

	"github.com/brensch/termsnake/game"
)

// Config holds command configuration. Flags override env vars, which
// override the defaults in the struct tags.
type Config struct {
	Width    int        `env:"SNAKE_WIDTH" envDefault:"20"`
	Height   int        `env:"SNAKE_HEIGHT" envDefault:"14"`
	Speed    game.Speed `env:"SNAKE_SPEED" envDefault:"fast"`
	Seed     int64      `env:"SNAKE_SEED"`
	LogFile  string     `env:"SNAKE_LOG_FILE"`
	LogLevel slog.Level `env:"SNAKE_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	if fs == nil {
		return Config{}, errors.New("flag parser is required")
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.IntVar(&cfg.Width, "width", cfg.Width, "Game size width")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "Game size height")
	fs.TextVar(&cfg.Speed, "speed", cfg.Speed, "Game speed: fast|medium|slow")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Apple placement seed (0 picks one from the clock)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Write JSON logs to this file (logging is off when empty)")
	fs.TextVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Board returns the configured board size.
func (c Config) Board() game.Dimension {
	return game.Dimension{X: c.Width, Y: c.Height}
}

// Validate checks the values the engine cannot run with.
func (c Config) Validate() error {
	if err := c.Board().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Engine converts the config into engine settings.
func (c Config) Engine(logger *slog.Logger) game.Config {
	return game.Config{
		Board:  c.Board(),
		Speed:  c.Speed,
		Seed:   c.Seed,
		Logger: logger,
	}
}
