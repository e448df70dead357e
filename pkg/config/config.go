package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultPasswordHashCost is used when PASSWORD_HASH_COST is unset.
	DefaultPasswordHashCost = 12
	// MinPasswordHashCost is the lowest work factor accepted from the environment.
	MinPasswordHashCost = 10
	// MaxPasswordHashCost mirrors bcrypt's upper bound.
	MaxPasswordHashCost = 31
	// DefaultDBMaxConns is the Postgres pool size when DB_MAX_CONNS is unset.
	DefaultDBMaxConns = 10
)

// ErrMissingSecret is returned when TOKEN_SECRET is absent or blank.
var ErrMissingSecret = errors.New("TOKEN_SECRET is not set")

type Config struct {
	Port        string
	DatabaseURL string
	DBMaxConns  int32
	LogLevel    string
	BodyLimit   int

	TokenSecret   string
	TokenIssuer   string
	TokenLifetime time.Duration

	PasswordHashCost    int
	PasswordHashWorkers int

	StoreTimeout time.Duration
}

// Load reads environment variables, optionally from a .env file if present.
// Required settings that are missing are reported together.
func Load() (Config, error) {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()
	return Parse(os.Getenv)
}

// Parse builds a Config from the given lookup function.
func Parse(getenv func(string) string) (Config, error) {
	var (
		missing []string
		errs    []error
	)

	cfg := Config{
		Port:        getEnv(getenv, "PORT", "8080"),
		DatabaseURL: getenv("DATABASE_URL"),
		LogLevel:    getEnv(getenv, "LOG_LEVEL", "info"),
		TokenIssuer: getEnv(getenv, "TOKEN_ISSUER", "taskmanager"),
	}

	cfg.TokenSecret = firstOf(getenv, "TOKEN_SECRET", "JWT_SECRET")
	if strings.TrimSpace(cfg.TokenSecret) == "" {
		errs = append(errs, ErrMissingSecret)
	}

	if raw := firstOf(getenv, "TOKEN_LIFETIME", "JWT_EXPIRES_IN"); raw == "" {
		missing = append(missing, "TOKEN_LIFETIME")
	} else if d, err := ParseLifetime(raw); err != nil {
		errs = append(errs, fmt.Errorf("TOKEN_LIFETIME: %w", err))
	} else {
		cfg.TokenLifetime = d
	}

	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	maxConns, err := getEnvInt(getenv, "DB_MAX_CONNS", DefaultDBMaxConns)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS: %w", err))
	case maxConns < 1 || maxConns > math.MaxInt32:
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", maxConns))
	default:
		cfg.DBMaxConns = int32(maxConns)
	}

	cost, err := getEnvInt(getenv, "PASSWORD_HASH_COST", DefaultPasswordHashCost)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("PASSWORD_HASH_COST: %w", err))
	case cost < MinPasswordHashCost || cost > MaxPasswordHashCost:
		errs = append(errs, fmt.Errorf("PASSWORD_HASH_COST must be between %d and %d, got %d",
			MinPasswordHashCost, MaxPasswordHashCost, cost))
	default:
		cfg.PasswordHashCost = cost
	}

	if cfg.PasswordHashWorkers, err = getEnvInt(getenv, "PASSWORD_HASH_WORKERS", runtime.NumCPU()); err != nil {
		errs = append(errs, fmt.Errorf("PASSWORD_HASH_WORKERS: %w", err))
	} else if cfg.PasswordHashWorkers < 1 {
		errs = append(errs, errors.New("PASSWORD_HASH_WORKERS must be positive"))
	}

	if cfg.BodyLimit, err = getEnvInt(getenv, "BODY_LIMIT", 10*1024); err != nil {
		errs = append(errs, fmt.Errorf("BODY_LIMIT: %w", err))
	}

	if cfg.StoreTimeout, err = getEnvDuration(getenv, "STORE_TIMEOUT", 3*time.Second); err != nil {
		errs = append(errs, fmt.Errorf("STORE_TIMEOUT: %w", err))
	}

	if len(missing) > 0 {
		errs = append([]error{fmt.Errorf("required environment variables are not set: %v", missing)}, errs...)
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// ParseLifetime accepts Go durations ("90m", "24h") and whole days ("90d").
func ParseLifetime(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	var (
		d   time.Duration
		err error
	)
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, convErr := strconv.Atoi(days)
		if convErr != nil {
			return 0, fmt.Errorf("invalid day count %q", raw)
		}
		d = time.Duration(n) * 24 * time.Hour
	} else if d, err = time.ParseDuration(raw); err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("lifetime must be positive, got %s", raw)
	}
	return d, nil
}

func getEnv(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func firstOf(getenv func(string) string, keys ...string) string {
	for _, k := range keys {
		if v := getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(strings.TrimSpace(v))
}

func getEnvDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(strings.TrimSpace(v))
}
