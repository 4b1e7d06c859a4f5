// Package config reads runtime settings from FISH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"fish/game"

	"github.com/joeshaw/envdecode"
	"github.com/rs/zerolog"
)

type Config struct {
	LogLevel string `env:"FISH_LOG_LEVEL,default=info"`

	// Referee and tournament
	Timeout       time.Duration `env:"FISH_TIMEOUT,default=5s"`
	AcceptTimeout time.Duration `env:"FISH_ACCEPT_TIMEOUT,default=5s"`
	PartySize     int           `env:"FISH_PARTY_SIZE,default=4"`
	Advancement   string        `env:"FISH_ADVANCEMENT,default=survivors"`

	// Board
	Rows        int `env:"FISH_ROWS,default=5"`
	Cols        int `env:"FISH_COLS,default=5"`
	FishPerTile int `env:"FISH_FISH_PER_TILE,default=0"`

	// AI
	Depth int `env:"FISH_DEPTH,default=2"`

	// Lobby
	Addr         string        `env:"FISH_ADDR,default=:8080"`
	MinPlayers   int           `env:"FISH_MIN_PLAYERS,default=2"`
	MaxPlayers   int           `env:"FISH_MAX_PLAYERS,default=10"`
	SignUpWindow time.Duration `env:"FISH_SIGNUP_WINDOW,default=30s"`

	RecordsDir string `env:"FISH_RECORDS_DIR"`
}

var (
	ErrInvalid = errors.New("invalid configuration")
)

// Load decodes the environment into a Config with defaults for unset variables.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("failed to decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	if c.Timeout <= 0 || c.AcceptTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalid)
	}
	if c.Depth < 1 {
		return fmt.Errorf("%w: depth %d", ErrInvalid, c.Depth)
	}
	if c.MinPlayers < 2 || c.MaxPlayers < c.MinPlayers {
		return fmt.Errorf("%w: players %d..%d", ErrInvalid, c.MinPlayers, c.MaxPlayers)
	}
	if c.Advancement != "survivors" && c.Advancement != "top-scorers" {
		return fmt.Errorf("%w: advancement %q", ErrInvalid, c.Advancement)
	}
	return nil
}

func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// Board returns the board every tournament game is played on. A zero fish
// count means random fish per tile.
func (c Config) Board() game.BoardParameters {
	return game.BoardParameters{Rows: c.Rows, Cols: c.Cols, FishPerTile: c.FishPerTile}
}
