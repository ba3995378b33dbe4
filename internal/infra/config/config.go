package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"pucisca/internal/domain/booking"
	"pucisca/internal/domain/pricing"
	"pucisca/internal/domain/property"
)

const (
	AvailabilityStatic = "static"
	AvailabilityWorker = "worker"
	AvailabilityICal   = "ical"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env      string
	HTTPAddr string
	LogLevel string

	MinNights         int
	MaxNights         int
	FallbackRate      int64
	Currency          string
	RatesFile         string
	InquiryRecipient  string
	Timezone          string
	RejectPastCheckIn bool

	AvailabilityMode     string
	AvailabilityURL      string
	AvailabilityTimeout  time.Duration
	ICalFeeds            map[property.Key]string
	AvailabilityFixtures string
	RefreshSchedule      string

	RedisAddr string
	RedisTTL  time.Duration

	MongoURI       string
	MongoDB        string
	IdempotencyTTL time.Duration

	KafkaBrokers       []string
	KafkaTopicPrefix   string
	KafkaRefreshTopic  string
	KafkaGroupID       string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

// Load reads an optional .env file and then the current environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv parses configuration from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:                  getEnv("APP_ENV", "dev"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Currency:             strings.ToUpper(getEnv("CURRENCY", pricing.DefaultCurrency)),
		RatesFile:            os.Getenv("RATES_FILE"),
		InquiryRecipient:     os.Getenv("INQUIRY_RECIPIENT"),
		Timezone:             getEnv("TIMEZONE", "Europe/Zagreb"),
		AvailabilityMode:     strings.ToLower(getEnv("AVAILABILITY_MODE", AvailabilityStatic)),
		AvailabilityURL:      os.Getenv("AVAILABILITY_URL"),
		AvailabilityFixtures: os.Getenv("AVAILABILITY_FIXTURES"),
		RefreshSchedule:      getEnv("REFRESH_SCHEDULE", "@every 10m"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		MongoURI:             os.Getenv("MONGO_URI"),
		MongoDB:              getEnv("MONGO_DB", "pucisca"),
		KafkaTopicPrefix:     getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaRefreshTopic:    getEnv("KAFKA_REFRESH_TOPIC", "availability.changes.v1"),
		KafkaGroupID:         getEnv("KAFKA_GROUP_ID", "pucisca-availability"),
		CORSOrigins:          splitList(getEnv("CORS_ORIGINS", "*")),
		KafkaBrokers:         splitList(os.Getenv("KAFKA_BROKERS")),
	}

	var err error
	if cfg.MinNights, err = parseIntEnv("MIN_NIGHTS", booking.DefaultMinNights); err != nil {
		return Config{}, err
	}
	if cfg.MinNights < 1 {
		return Config{}, fmt.Errorf("MIN_NIGHTS must be at least 1, got %d", cfg.MinNights)
	}
	if cfg.MaxNights, err = parseIntEnv("MAX_NIGHTS", booking.DefaultMaxNights); err != nil {
		return Config{}, err
	}
	if cfg.MaxNights < cfg.MinNights {
		return Config{}, fmt.Errorf("MAX_NIGHTS must be at least MIN_NIGHTS (%d), got %d", cfg.MinNights, cfg.MaxNights)
	}
	fallback, err := parseIntEnv("FALLBACK_RATE", int(pricing.DefaultFallbackRate))
	if err != nil {
		return Config{}, err
	}
	cfg.FallbackRate = int64(fallback)
	if cfg.RejectPastCheckIn, err = parseBoolEnv("REJECT_PAST_CHECKIN", true); err != nil {
		return Config{}, err
	}
	if cfg.AvailabilityTimeout, err = parseDurationEnv("AVAILABILITY_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RedisTTL, err = parseDurationEnv("REDIS_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.RetryBackoff, err = parseDurationList("RETRY_BACKOFF", "1s,5s,30s"); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS, err = parseFloatEnv("RATE_LIMIT_RPS", 10); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitBurst, err = parseIntEnv("RATE_LIMIT_BURST", 20); err != nil {
		return Config{}, err
	}
	if cfg.ICalFeeds, err = parseFeeds(os.Getenv("ICAL_FEEDS")); err != nil {
		return Config{}, err
	}

	switch cfg.AvailabilityMode {
	case AvailabilityStatic:
	case AvailabilityWorker:
		if cfg.AvailabilityURL == "" {
			return Config{}, fmt.Errorf("AVAILABILITY_URL is required when AVAILABILITY_MODE=%s", AvailabilityWorker)
		}
	case AvailabilityICal:
		if len(cfg.ICalFeeds) == 0 {
			return Config{}, fmt.Errorf("ICAL_FEEDS is required when AVAILABILITY_MODE=%s", AvailabilityICal)
		}
	default:
		return Config{}, fmt.Errorf("unknown AVAILABILITY_MODE %q", cfg.AvailabilityMode)
	}
	return cfg, nil
}

// UsesMongo reports whether the idempotency and outbox stores are persistent.
func (c Config) UsesMongo() bool { return c.MongoURI != "" }

// UsesKafka reports whether events are published and refresh signals consumed.
func (c Config) UsesKafka() bool { return len(c.KafkaBrokers) > 0 }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseDurationList(key, def string) ([]time.Duration, error) {
	var out []time.Duration
	for _, raw := range splitList(getEnv(key, def)) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s component %q: %w", key, raw, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %q", key, raw)
	}
	return v, nil
}

func parseFloatEnv(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s number: %q", key, raw)
	}
	return v, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}

// parseFeeds reads "WH=https://...,GH=https://...".
func parseFeeds(raw string) (map[property.Key]string, error) {
	feeds := map[property.Key]string{}
	for _, item := range splitList(raw) {
		name, url, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(url) == "" {
			return nil, fmt.Errorf("invalid ICAL_FEEDS entry %q", item)
		}
		key, err := property.ParseKey(name)
		if err != nil {
			return nil, fmt.Errorf("invalid ICAL_FEEDS entry %q: %w", item, err)
		}
		feeds[key] = strings.TrimSpace(url)
	}
	return feeds, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
