package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret signs session tokens. Required: an unsigned token would let
	// any holder forge or extend a session.
	JWTSecret string `env:"JWT_SECRET, required"`

	// AdminEmail is the static allow-list: registering with this email yields
	// the admin role, every other registration yields student. Evaluated only
	// at creation time; changing it never alters existing records.
	AdminEmail string `env:"ADMIN_EMAIL, default=akilannandhakumar@gmail.com"`

	TokenTTL time.Duration `env:"TOKEN_TTL, default=168h"`

	Mongo MongoConfig
	Redis RedisConfig
	Login LoginConfig
}

type MongoConfig struct {
	// URI has no default: a missing connection string is a hard startup
	// failure rather than a 500 on first use.
	URI      string `env:"MONGO_URI, required"`
	Database string `env:"MONGO_DB,  default=quizapp"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type LoginConfig struct {
	MaxAttempts int64         `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	Window      time.Duration `env:"LOGIN_WINDOW,       default=15m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
