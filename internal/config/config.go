package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort       string
	DBDriver         string
	DatabaseDSN      string
	RedisAddr        string
	RedisDB          int
	RedisPass        string
	JWTSecret        string
	TokenTTL         time.Duration
	CacheTTL         time.Duration
	RateLimitEnabled bool
	BcryptCost       int
	LogLevel         string
	SwaggerHost      string
	ResetDB          bool

	// Admin bootstrap, read by cmd/seed only.
	AdminEmail    string
	AdminPassword string
	AdminName     string
	AdminPhone    string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		DBDriver:         getEnv("DB_DRIVER", "mysql"),
		DatabaseDSN:      getEnv("DATABASE_DSN", "user:password@tcp(localhost:3306)/autoshop?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisPass:        os.Getenv("REDIS_PASSWORD"),
		JWTSecret:        getEnv("JWT_SECRET", "change-me"),
		TokenTTL:         getEnvDuration("TOKEN_TTL", 24*time.Hour),
		CacheTTL:         getEnvDuration("CACHE_TTL", 5*time.Minute),
		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		BcryptCost:       getEnvInt("BCRYPT_COST", 10),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		SwaggerHost:      os.Getenv("SWAGGER_HOST"),
		ResetDB:          getEnvBool("RESET_DB", false),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "Shop Admin"),
		AdminPhone:    getEnv("ADMIN_PHONE", "000-000-0000"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
