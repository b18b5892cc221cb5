package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/arcade/internal/pin"
)

// Settings are process-level options.
type Settings struct {
	Registry  string `env:"ARCADE_REGISTRY"`
	Responses string `env:"ARCADE_RESPONSES"`
	Snapshot  string `env:"ARCADE_SNAPSHOT"`

	// DisplayCap is the default leaderboard length. Zero shows every row.
	DisplayCap int `env:"ARCADE_DISPLAY_CAP" envDefault:"10"`

	PinLimit     int           `env:"ARCADE_PIN_LIMIT" envDefault:"3"`
	PinFallback  bool          `env:"ARCADE_PIN_FALLBACK" envDefault:"true"`
	RefreshEvery time.Duration `env:"ARCADE_REFRESH_EVERY" envDefault:"0s"`
	LogLevel     string        `env:"ARCADE_LOG_LEVEL" envDefault:"info"`
}

// LoadSettings parses Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	if s.DisplayCap < 0 {
		return Settings{}, fmt.Errorf("parse env: ARCADE_DISPLAY_CAP must not be negative, got %d", s.DisplayCap)
	}
	return s, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// PinPolicy returns the pin display policy.
func (s Settings) PinPolicy() pin.Policy {
	return pin.Policy{Limit: s.PinLimit, FallbackRarest: s.PinFallback}
}

// Level parses LogLevel.
func (s Settings) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}
