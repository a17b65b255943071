package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment on every invocation.
type Config struct {
	APIURL     string        `env:"FARM_API_URL" envDefault:"http://localhost:8080"`
	SessionDir string        `env:"FARM_SESSION_DIR"`
	Password   string        `env:"FARM_PASSWORD"`
	LogLevel   string        `env:"FARM_LOG_LEVEL" envDefault:"warn"`
	Timeout    time.Duration `env:"FARM_TIMEOUT" envDefault:"15s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return cfg, fmt.Errorf("locate config dir: %w", err)
		}
		cfg.SessionDir = filepath.Join(dir, "granja")
	}
	if cfg.Timeout <= 0 {
		return cfg, fmt.Errorf("FARM_TIMEOUT must be positive")
	}
	return cfg, nil
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
