package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string
	ClinicTZ    string

	PrintInterval    time.Duration
	PrintBatchSize   int
	PrintMaxAttempts int
	PrintProvider    string

	RateLimitPerMinute        int
	RateLimitBurst            int
	SessionRateLimitPerMinute int
	SessionRateLimitBurst     int
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	tz := os.Getenv("CLINIC_TZ")
	if tz == "" {
		tz = "Asia/Jakarta"
	}

	return Config{
		Port:        port,
		DatabaseURL: os.Getenv("DB_DSN"),
		ClinicTZ:    tz,

		PrintInterval:    readDurationSeconds("PRINT_SCAN_INTERVAL_SECONDS", 5),
		PrintBatchSize:   readInt("PRINT_BATCH_SIZE", 20),
		PrintMaxAttempts: readInt("PRINT_MAX_ATTEMPTS", 3),
		PrintProvider:    os.Getenv("PRINT_PROVIDER"),

		RateLimitPerMinute:        readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:            readInt("RATE_LIMIT_BURST", 30),
		SessionRateLimitPerMinute: readInt("SESSION_RATE_LIMIT_PER_MIN", 600),
		SessionRateLimitBurst:     readInt("SESSION_RATE_LIMIT_BURST", 120),
	}
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
