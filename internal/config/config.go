package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/cluehunt.db"`
	RedisURL string     `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// Game tuning.
	SabotageCost   int           `env:"SABOTAGE_COST" envDefault:"50"`
	FreezeDuration time.Duration `env:"FREEZE_DURATION" envDefault:"5m"`
	LeaderboardTTL time.Duration `env:"LEADERBOARD_TTL" envDefault:"15s"`

	// Pago a Pago payment provider. PublicURL is the externally reachable
	// base URL the provider calls back on.
	PagoAPIURL string `env:"PAGO_PAGO_API_URL" envDefault:"https://api.pagoapago.com/v1/process"`
	PagoAPIKey string `env:"PAGO_PAGO_API_KEY"`
	PublicURL  string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
