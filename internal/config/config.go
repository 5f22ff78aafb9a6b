package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogMode  string
	Timezone string

	// Database
	DatabaseURL      string
	DatabaseMaxConns int

	// Redis
	RedisURL string

	// LeetCode GraphQL
	LeetCodeGraphQLURL     string
	LeetCodeRequestsPerSec float64
	LeetCodeBurst          int
	LeetCodeTimeoutSeconds int

	// Catalog & background work
	CatalogPageSize     int
	CatalogSyncBatch    int
	WorkerCount         int
	DailyRefreshMinutes int

	// API rate limit (per client IP)
	APIRequestsPerMinute int
	APIBurst             int

	// Tracing
	OtelEnabled     bool
	OtelServiceName string
	OtelEndpoint    string
	OtelInsecure    bool
	OtelSampleRatio float64

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		Env:              getEnvOrDefault("ENV", "development"),
		LogMode:          getEnvOrDefault("LOG_MODE", "development"),
		Timezone:         getEnvOrDefault("TIMEZONE", "Local"),
		DatabaseURL:      mustGetEnv("DATABASE_URL"),
		DatabaseMaxConns: getEnvAsIntOrDefault("DATABASE_MAX_CONNS", 5),
		RedisURL:         mustGetEnv("REDIS_URL"),

		LeetCodeGraphQLURL:     getEnvOrDefault("LEETCODE_GRAPHQL_URL", "https://leetcode.com/graphql"),
		LeetCodeRequestsPerSec: getEnvAsFloatOrDefault("LEETCODE_REQUESTS_PER_SECOND", 2),
		LeetCodeBurst:          getEnvAsIntOrDefault("LEETCODE_BURST", 4),
		LeetCodeTimeoutSeconds: getEnvAsIntOrDefault("LEETCODE_TIMEOUT_SECONDS", 30),

		CatalogPageSize:     getEnvAsIntOrDefault("CATALOG_PAGE_SIZE", 50),
		CatalogSyncBatch:    getEnvAsIntOrDefault("CATALOG_SYNC_BATCH_SIZE", 100),
		WorkerCount:         getEnvAsIntOrDefault("WORKER_COUNT", 2),
		DailyRefreshMinutes: getEnvAsIntOrDefault("DAILY_REFRESH_MINUTES", 60),

		APIRequestsPerMinute: getEnvAsIntOrDefault("API_REQUESTS_PER_MINUTE", 120),
		APIBurst:             getEnvAsIntOrDefault("API_BURST", 20),

		OtelEnabled:     getEnvAsBoolOrDefault("OTEL_ENABLED", false),
		OtelServiceName: getEnvOrDefault("OTEL_SERVICE_NAME", "statree-backend"),
		OtelEndpoint:    getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OtelInsecure:    getEnvAsBoolOrDefault("OTEL_EXPORTER_OTLP_INSECURE", false),
		OtelSampleRatio: getEnvAsFloatOrDefault("OTEL_SAMPLE_RATIO", 1),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
