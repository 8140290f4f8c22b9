package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret     string
	JWTExpiration time.Duration

	// CORS
	CORSAllowedOrigins []string

	// Battle engine
	MaxRatingDifference int           // widest rating gap the matchmaker pairs across
	BattleTimeLimit     time.Duration // per-match deadline
	SweepInterval       time.Duration // how often expired battles are settled

	// Sandbox service
	SandboxURL         string
	SandboxCaseTimeout time.Duration
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiration:       parseDuration(getEnv("JWT_EXPIRATION", "24h"), 24*time.Hour),
		MaxRatingDifference: parseInt(getEnv("MAX_RATING_DIFFERENCE", "300"), 300),
		BattleTimeLimit:     parseDuration(getEnv("BATTLE_TIME_LIMIT", "30m"), 30*time.Minute),
		SweepInterval:       parseDuration(getEnv("SWEEP_INTERVAL", "10s"), 10*time.Second),
		SandboxURL:          getEnv("SANDBOX_URL", "http://localhost:2358"),
		SandboxCaseTimeout:  parseDuration(getEnv("SANDBOX_CASE_TIMEOUT", "10s"), 10*time.Second),
		CORSAllowedOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
