package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// KV backends accepted by KV_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// DefaultCronQueries are refreshed by the scheduled job when CRON_QUERIES is unset.
var DefaultCronQueries = []string{
	"businesses in Ossett",
	"businesses in Wakefield",
	"businesses in Dewsbury",
	"businesses in Horbury",
	"businesses in Batley",
}

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port     string
	LogLevel string

	KVBackend   string
	RedisURL    string
	DatabaseURL string

	JWTSecret            string
	TokenTTL             time.Duration
	OperatorEmail        string
	OperatorPasswordHash string

	GoogleAPIKey     string
	PageSpeedAPIKey  string
	PlacesBaseURL    string
	PageSpeedBaseURL string
	YellBaseURL      string

	ResendAPIKey       string
	ResendBaseURL      string
	FromEmail          string
	OperatorInbox      string
	TurnstileSecret    string
	TurnstileVerifyURL string

	CronSecret  string
	CronQueries []string

	Concurrency int
	DailyCap    int
	ForceHTTPS  bool
	PhoneRegion string
	HTTPTimeout time.Duration

	RateLimitContact  RateLimitConfig
	RateLimitOutreach RateLimitConfig
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		KVBackend:   strings.ToLower(getEnv("KV_BACKEND", BackendMemory)),
		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:            getEnv("JWT_SECRET", "dev-secret"),
		TokenTTL:             parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		OperatorEmail:        os.Getenv("OPERATOR_EMAIL"),
		OperatorPasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),

		GoogleAPIKey:     os.Getenv("GOOGLE_SERVER_API_KEY"),
		PlacesBaseURL:    os.Getenv("PLACES_BASE_URL"),
		PageSpeedBaseURL: os.Getenv("PAGESPEED_BASE_URL"),
		YellBaseURL:      os.Getenv("YELL_BASE_URL"),

		ResendAPIKey:       os.Getenv("RESEND_API_KEY"),
		ResendBaseURL:      os.Getenv("RESEND_BASE_URL"),
		FromEmail:          getEnv("RESEND_FROM_EMAIL", "hello@legxcysol.dev"),
		OperatorInbox:      getEnv("RESEND_TO_EMAIL", "hello@legxcysol.dev"),
		TurnstileSecret:    os.Getenv("TURNSTILE_SECRET_KEY"),
		TurnstileVerifyURL: os.Getenv("TURNSTILE_VERIFY_URL"),

		CronSecret:  os.Getenv("CRON_SECRET"),
		CronQueries: parseList(os.Getenv("CRON_QUERIES"), "|", DefaultCronQueries),

		PhoneRegion: strings.ToUpper(getEnv("PHONE_REGION", "GB")),
		HTTPTimeout: parseDuration(getEnv("HTTP_TIMEOUT", "12s"), 12*time.Second),
	}
	cfg.PageSpeedAPIKey = getEnv("PAGESPEED_API_KEY", cfg.GoogleAPIKey)

	var err error
	if cfg.Concurrency, err = parsePositiveInt(getEnv("OUTREACH_CONCURRENCY", "4")); err != nil {
		return nil, fmt.Errorf("invalid OUTREACH_CONCURRENCY value: %w", err)
	}
	if cfg.DailyCap, err = parsePositiveInt(getEnv("OUTREACH_DAILY_CAP", "25")); err != nil {
		return nil, fmt.Errorf("invalid OUTREACH_DAILY_CAP value: %w", err)
	}
	if cfg.ForceHTTPS, err = strconv.ParseBool(getEnv("OUTREACH_FORCE_HTTPS", "true")); err != nil {
		return nil, fmt.Errorf("invalid OUTREACH_FORCE_HTTPS value: %w", err)
	}

	switch cfg.KVBackend {
	case BackendMemory:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required for the %s backend", BackendRedis)
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the %s backend", BackendPostgres)
		}
	default:
		return nil, fmt.Errorf("unsupported KV_BACKEND %q", cfg.KVBackend)
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_CONTACT", "3/15min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_CONTACT value: %w", err)
	}
	cfg.RateLimitContact = rl

	rl, err = parseRateLimit(getEnv("RATE_LIMIT_OUTREACH", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_OUTREACH value: %w", err)
	}
	cfg.RateLimitOutreach = rl

	return cfg, nil
}

// OperatorAuthEnabled reports whether operator routes require a token.
func (c *Config) OperatorAuthEnabled() bool {
	return c.OperatorPasswordHash != ""
}

// parseRateLimit accepts <requests>/<unit> with an optional numeric unit
// multiplier, e.g. "5/min" or "3/15min".
func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	digits := 0
	for digits < len(unit) && unit[digits] >= '0' && unit[digits] <= '9' {
		digits++
	}
	multiplier := 1
	if digits > 0 {
		multiplier, err = strconv.Atoi(unit[:digits])
		if err != nil || multiplier <= 0 {
			return RateLimitConfig{}, fmt.Errorf("invalid interval multiplier: %s", unit)
		}
		unit = unit[digits:]
	}

	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: time.Duration(multiplier) * interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parsePositiveInt(input string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

func parseList(input, sep string, fallback []string) []string {
	var items []string
	for _, item := range strings.Split(input, sep) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return append([]string(nil), fallback...)
	}
	return items
}
