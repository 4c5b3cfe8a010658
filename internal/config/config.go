// Package config loads the service configuration from CATALOG_* environment
// variables, optionally seeded from .env files.
//
// Variables map onto nested keys by their first underscore:
// CATALOG_SERVER_READ_TIMEOUT becomes server.read_timeout.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CATALOG_"

type Config struct {
	Env       string          `koanf:"env" validate:"required"`
	Server    ServerConfig    `koanf:"server"`
	DB        DBConfig        `koanf:"db"`
	Search    SearchConfig    `koanf:"search"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes" validate:"gt=0"`
	// CORSOrigins is a comma separated allow list; "*" allows any origin.
	CORSOrigins string `koanf:"cors_origins"`
	EnableHSTS  bool   `koanf:"enable_hsts"`
}

type DBConfig struct {
	Driver       string        `koanf:"driver" validate:"oneof=sqlite sqlite3 postgres"`
	DSN          string        `koanf:"dsn" validate:"required"`
	MaxConns     int32         `koanf:"max_conns" validate:"gte=0"`
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gte=0"`
	// Migrate applies pending migrations on start.
	Migrate bool `koanf:"migrate"`
}

type SearchConfig struct {
	CaseSensitive bool `koanf:"case_sensitive"`
}

type RateLimitConfig struct {
	RPS   float64 `koanf:"rps" validate:"gte=0"`
	Burst int     `koanf:"burst" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// Default returns the configuration used when no variable overrides it.
func Default() Config {
	return Config{
		Env: "development",
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		DB: DBConfig{
			Driver:       "sqlite",
			DSN:          "books.db",
			MaxConns:     10,
			QueryTimeout: 5 * time.Second,
			Migrate:      true,
		},
		RateLimit: RateLimitConfig{RPS: 20, Burst: 40},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
}

// LoadEnvFiles reads .env.local then .env. Variables already present in the
// process environment are never overridden.
func LoadEnvFiles() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")
}

// Load builds the configuration from defaults and the environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.DB.Driver = strings.ToLower(cfg.DB.Driver)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	// A zero burst bucket never admits a request.
	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst < 1 {
		return nil, fmt.Errorf("invalid config: ratelimit.burst must be at least 1 when ratelimit.rps is %g", cfg.RateLimit.RPS)
	}
	return &cfg, nil
}

// envKey maps CATALOG_DB_QUERY_TIMEOUT to db.query_timeout.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key
	}
	return section + "." + rest
}

// IsDevelopment reports whether the service runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "local"
}

// CORSOriginList splits the CORS allow list.
func (c *Config) CORSOriginList() []string {
	var out []string
	for _, o := range strings.Split(c.Server.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
