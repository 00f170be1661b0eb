package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	TenantDatabaseURLs map[string]string
	RabbitMQURL        string
	CorsAllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	ShutdownTimeout  time.Duration

	WSSendBuffer   int
	WSPingInterval time.Duration

	// TelemetryWindow is the number of latency samples kept per route for the
	// rolling request-log percentiles.
	TelemetryWindow int
}

func Load() Config {
	cfg := Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8086"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		TenantDatabaseURLs: parseTenantURLs(getEnv("TENANT_DATABASE_URLS", "")),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		HTTPReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		HTTPWriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		HTTPIdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		WSSendBuffer:   getEnvInt("WS_SEND_BUFFER", 32),
		WSPingInterval: getEnvDuration("WS_PING_INTERVAL", 30*time.Second),

		TelemetryWindow: getEnvInt("TELEMETRY_WINDOW", 200),
	}

	if cfg.WSSendBuffer <= 0 {
		cfg.WSSendBuffer = 32
	}
	if cfg.TelemetryWindow <= 0 {
		cfg.TelemetryWindow = 200
	}

	return cfg
}

// parseTenantURLs reads the extra tenant pools from a comma-separated list of
// name=url pairs, e.g. "branch-a=postgres://...,branch-b=postgres://...".
func parseTenantURLs(value string) map[string]string {
	out := make(map[string]string)
	for _, pair := range splitCSV(value) {
		name, url, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		url = strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			continue
		}
		out[name] = url
	}
	return out
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
