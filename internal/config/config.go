// Package config reads the service settings from the environment, with an
// optional .env file loaded first.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/genzzone/storefront/internal/adapters/storeapi"
	"github.com/genzzone/storefront/internal/validation"
)

// Config is the whole runtime configuration of the service.
type Config struct {
	HTTPAddr string
	LogLevel slog.Level
	Locale   string

	// StoreAPIMode is "http" for the real store API or "fake" for the
	// in-memory demo catalog.
	StoreAPIMode    string
	StoreAPIURL     string
	StoreAPITimeout time.Duration

	RedisAddr     string
	SnapshotTTL   time.Duration
	SubmitLogPath string

	DraftIdleTTL time.Duration

	Phone validation.PhoneFormat

	OTelEnabled     bool
	OTelServiceName string
	OTelEndpoint    string
	OTelEnvironment string
	OTelSampleRatio float64

	BrandName    string
	BrandWebsite string
}

// Load reads files (default ".env") when present and then the environment.
// Variables already set in the environment win over the files.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var errs []error
	duration := func(key, fallback string) time.Duration {
		d, err := time.ParseDuration(getEnv(key, fallback))
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %s: %w", key, err))
		}
		return d
	}

	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		Locale:          getEnv("LOCALE", "bn"),
		StoreAPIMode:    getEnv("STORE_API_MODE", "http"),
		StoreAPIURL:     getEnv("STORE_API_URL", storeapi.DefaultBaseURL),
		StoreAPITimeout: duration("STORE_API_TIMEOUT", "15s"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		SnapshotTTL:     duration("SNAPSHOT_TTL", "30m"),
		SubmitLogPath:   getEnv("SUBMIT_LOG_PATH", "./data/submissions.db"),
		DraftIdleTTL:    duration("DRAFT_IDLE_TTL", "2h"),
		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "storefront"),
		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelEnvironment: getEnv("OTEL_RESOURCE_ATTRIBUTES_ENV", "local"),
		BrandName:       getEnv("BRAND_NAME", "GenZ Zone"),
		BrandWebsite:    getEnv("BRAND_WEBSITE", "www.genzzone.com"),
	}
	if v, ok := os.LookupEnv("SUBMIT_LOG_PATH"); ok && v == "" {
		cfg.SubmitLogPath = ""
	}

	if cfg.StoreAPIMode != "http" && cfg.StoreAPIMode != "fake" {
		errs = append(errs, fmt.Errorf("config: STORE_API_MODE: unknown mode %q", cfg.StoreAPIMode))
	}

	otelEnabled, err := strconv.ParseBool(getEnv("OTEL_ENABLED", "false"))
	if err != nil {
		errs = append(errs, fmt.Errorf("config: OTEL_ENABLED: %w", err))
	}
	cfg.OTelEnabled = otelEnabled

	ratio, err := strconv.ParseFloat(getEnv("OTEL_SAMPLE_RATIO", "1"), 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("config: OTEL_SAMPLE_RATIO: %w", err))
	}
	cfg.OTelSampleRatio = ratio

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("config: LOG_LEVEL: %w", err))
	}

	phone, err := validation.ParsePhoneFormat(getEnv("PHONE_FORMAT", "local"), os.Getenv("PHONE_PATTERN"))
	if err != nil {
		errs = append(errs, fmt.Errorf("config: PHONE_FORMAT: %w", err))
	}
	cfg.Phone = phone

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
