package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config captures all runtime configuration derived from environment variables.
// It is built once at startup and passed by value to the components that need it.
type Config struct {
	Port               string        `env:"PORT" envDefault:"8080"`
	DBURL              string        `env:"DB_URL"`
	JWTSecret          string        `env:"JWT_SECRET"`
	TokenTTL           time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	AdminUsernames     []string      `env:"ADMIN_USERNAMES" envSeparator:","`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat          string        `env:"LOG_FORMAT" envDefault:"json"`
	AuthRateLimit      int           `env:"AUTH_RATE_LIMIT" envDefault:"20"`
	BcryptCost         int           `env:"BCRYPT_COST" envDefault:"10"`
	ReadTimeoutSecs    int           `env:"SERVER_READ_TIMEOUT" envDefault:"15"`
	WriteTimeoutSecs   int           `env:"SERVER_WRITE_TIMEOUT" envDefault:"15"`
	IdleTimeoutSecs    int           `env:"SERVER_IDLE_TIMEOUT" envDefault:"60"`
	DBMaxConns         int           `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns         int           `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxIdleSecs      int           `env:"DB_MAX_CONN_IDLE_SECS" envDefault:"300"`
	DBMaxLifeSecs      int           `env:"DB_MAX_CONN_LIFETIME_SECS" envDefault:"3600"`
	DBConnTimeoutSecs  int           `env:"DB_CONN_TIMEOUT_SECS" envDefault:"10"`
	DBStatementCache   int           `env:"DB_STATEMENT_CACHE_CAPACITY" envDefault:"256"`
}

const minSecretLength = 16

// Load reads configuration from environment variables, applying defaults and validation.
// A .env file in the working directory is loaded first when present; variables already
// set in the environment win.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.CORSAllowedOrigins = cleanList(cfg.CORSAllowedOrigins, false)
	cfg.AdminUsernames = cleanList(cfg.AdminUsernames, true)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	if cfg.DBURL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength)
	}
	if cfg.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if cfg.AuthRateLimit < 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT must be non-negative")
	}
	switch cfg.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	if cfg.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	return nil
}

// IsAdmin reports whether the normalized username is configured as an administrator.
func (cfg Config) IsAdmin(username string) bool {
	for _, admin := range cfg.AdminUsernames {
		if admin == username {
			return true
		}
	}
	return false
}

func cleanList(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if lower {
			v = strings.ToLower(v)
		}
		out = append(out, v)
	}
	return out
}
