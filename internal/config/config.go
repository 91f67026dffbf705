package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server configuration, populated from the environment.
// A .env file in the working directory is loaded first when present.
type Config struct {
	HTTPAddr    string `env:"MAFIA_HTTP_ADDR" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationsDir is where goose finds the SQL migrations.
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`

	// TokenSecret signs the per-room websocket join tokens.
	TokenSecret string `env:"WEBSOCKET_TOKEN_SECRET" envDefault:"dev-secret-change-in-production"`

	// RateLimitEnabled turns on the per-IP limiter for create/join/chat.
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`

	// Session TTLs; expired records are swept by the purge loop.
	GameTTL time.Duration `env:"GAME_TTL" envDefault:"6h"`
	RoomTTL time.Duration `env:"ROOM_TTL" envDefault:"24h"`

	// Database pool sizing.
	DBMaxConns int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns int32 `env:"DB_MIN_CONNS" envDefault:"2"`
}

// Load reads .env (if any) and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
