package config

import (
	"os"
	"strconv"
	"time"

	"github.com/yeremiapane/garcom-app/utils"
)

type Config struct {
	Port          string
	GinMode       string
	DBDriver      string
	DatabaseDSN   string
	SeedCatalog   bool
	TickInterval  time.Duration
	AllowedOrigin string
	RateLimit     int
	LogLevel      string
}

// Load reads configuration from the environment with defaults suited to a
// single tablet. Call godotenv.Load first if a .env file should apply.
func Load() Config {
	return Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "garcom.db"),
		SeedCatalog:   parseBool("SEED_CATALOG", true),
		TickInterval:  parseDuration("TICK_INTERVAL", time.Minute),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
		RateLimit:     parseInt("RATE_LIMIT", 50),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			utils.ErrorLogger.Printf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}

func parseInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			utils.ErrorLogger.Printf("invalid positive integer for %s: %s", key, v)
			return def
		}
		return n
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			utils.ErrorLogger.Printf("invalid duration for %s: %s", key, v)
			return def
		}
		return d
	}
	return def
}
