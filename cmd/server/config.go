package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// config is read from the environment; a .env file in the working directory
// is loaded first when present.
type config struct {
	AppEnv   string
	LogLevel string
	Port     string

	Storage     string // memory | postgres
	DatabaseURL string
	DBMaxConns  int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	InventoryMaxRetries int

	JWTSecret    string
	JWTIssuer    string
	AuthDisabled bool
}

func loadConfig() (config, error) {
	_ = godotenv.Load()

	cfg := config{
		AppEnv:              getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		Port:                getEnv("APP_PORT", "8080"),
		Storage:             getEnv("STORAGE", "memory"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		DBMaxConns:          getEnvInt("DB_MAX_CONNS", 10),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvInt("REDIS_DB", 0),
		CacheTTL:            getEnvDuration("SNAPSHOT_CACHE_TTL", 10*time.Minute),
		InventoryMaxRetries: getEnvInt("INVENTORY_MAX_RETRIES", 3),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		JWTIssuer:           getEnv("JWT_ISSUER", "khaata"),
		AuthDisabled:        getEnv("AUTH_DISABLED", "false") == "true",
	}

	switch cfg.Storage {
	case "memory":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required when STORAGE=postgres")
		}
	default:
		return cfg, fmt.Errorf("unknown STORAGE %q (want memory or postgres)", cfg.Storage)
	}

	if !cfg.AuthDisabled && cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required unless AUTH_DISABLED=true")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
