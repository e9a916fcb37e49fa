package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	SweepDisabled = "off"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Config struct {
	AppURL                 string
	DatabaseDSN            string
	DatabaseTable          string
	SessionSecret          string
	SessionBackend         string
	SessionTTL             time.Duration
	SecureCookie           bool
	RedisAddr              string
	Users                  map[string]string
	Location               *time.Location
	SweepSchedule          string
	RateLimit              int
	ShutdownTimeoutSeconds int
	LogLevel               slog.Level
}

func Load() (Config, error) {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	var errs []error

	users, err := parseUsers(os.Getenv("AUTH_USERS"))
	errs = append(errs, err)

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		errs = append(errs, fmt.Errorf("APP_TIMEZONE: %w", err))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	ttlMinutes, err := getEnvAsInt("SESSION_TTL_MINUTES", 720)
	errs = append(errs, err)
	rateLimit, err := getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120)
	errs = append(errs, err)
	shutdownTimeout, err := getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20)
	errs = append(errs, err)
	secureCookie, err := getEnvAsBool("SESSION_SECURE_COOKIE", false)
	errs = append(errs, err)

	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDSN:            getEnv("DATABASE_DSN", "tasks.db"),
		DatabaseTable:          getEnv("DATABASE_TABLE", "tasks"),
		SessionSecret:          os.Getenv("SESSION_SECRET"),
		SessionBackend:         strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
		SessionTTL:             time.Duration(ttlMinutes) * time.Minute,
		SecureCookie:           secureCookie,
		RedisAddr:              fmt.Sprintf("%s:%s", redisHost, redisPort),
		Users:                  users,
		Location:               loc,
		SweepSchedule:          getEnv("SWEEP_SCHEDULE", "@every 1h"),
		RateLimit:              rateLimit,
		ShutdownTimeoutSeconds: shutdownTimeout,
		LogLevel:               level,
	}

	if err := errors.Join(errs...); err != nil {
		return cfg, err
	}
	return cfg, validate(cfg)
}

func validate(cfg Config) error {
	if cfg.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN must not be empty")
	}
	if !tableNamePattern.MatchString(cfg.DatabaseTable) {
		return fmt.Errorf("DATABASE_TABLE %q is not a valid table name", cfg.DatabaseTable)
	}
	if cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if cfg.SessionBackend != SessionBackendMemory && cfg.SessionBackend != SessionBackendRedis {
		return fmt.Errorf("SESSION_BACKEND must be %q or %q", SessionBackendMemory, SessionBackendRedis)
	}
	if cfg.SessionTTL <= 0 {
		return errors.New("SESSION_TTL_MINUTES must be greater than 0")
	}
	if len(cfg.Users) == 0 {
		return errors.New("AUTH_USERS must define at least one user (user:password)")
	}
	if cfg.RateLimit <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0")
	}
	return nil
}

// parseUsers reads "alice:secret,bob:hunter2".
func parseUsers(raw string) (map[string]string, error) {
	users := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, password, ok := strings.Cut(pair, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("AUTH_USERS entry %q must look like user:password", pair)
		}
		users[name] = password
	}
	return users, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s", key)
		}
		return i, nil
	}
	return defaultVal, nil
}

func getEnvAsBool(key string, defaultVal bool) (bool, error) {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("invalid boolean value for %s", key)
		}
		return b, nil
	}
	return defaultVal, nil
}
