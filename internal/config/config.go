// Package config handles configuration loading for the notes service.
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the notes service.
type Config struct {
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	JWTSecret      string
	JWTExpiry      time.Duration
	Port           string
	Environment    string
	AllowedOrigins []string
	SwaggerHost    string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBHost:         GetEnvRequired("DB_HOST"),
		DBPort:         GetEnvRequired("DB_PORT"),
		DBUser:         GetEnvRequired("DB_USER"),
		DBPassword:     GetEnvRequired("DB_PASSWORD"),
		DBName:         GetEnvRequired("DB_NAME"),
		RedisHost:      GetEnvRequired("REDIS_HOST"),
		RedisPort:      GetEnvRequired("REDIS_PORT"),
		RedisPassword:  GetEnv("REDIS_PASSWORD", ""),
		JWTSecret:      GetEnvRequired("JWT_SECRET"),
		JWTExpiry:      parseDuration(GetEnv("JWT_EXPIRY", "24h"), 24*time.Hour),
		Port:           GetEnv("PORT", "8085"),
		Environment:    GetEnv("ENVIRONMENT", "development"),
		AllowedOrigins: splitList(GetEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		SwaggerHost:    GetEnv("SWAGGER_HOST", ""),
	}
}

// GetEnv returns the value of an environment variable or a default.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvRequired returns the value of an environment variable and exits
// the process when it is unset.
func GetEnvRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("required environment variable %s is not set", key)
	}
	return value
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
