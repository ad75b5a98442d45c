package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// HTTP server
	ListenAddr string

	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration
	RedisHost     string
	RedisPassword string
	RedisPort     string
	RedisEnabled  bool

	// Auth configuration
	Auth AuthConfig

	// Calendar sync configuration
	Calendar CalendarConfig
}

// AuthConfig holds token and password settings
type AuthConfig struct {
	JWTSecret    string
	TokenTTLMins int
	BcryptCost   int
}

// CalendarConfig holds the economic calendar sync settings
type CalendarConfig struct {
	Endpoint string
	// Cron expression; empty disables the schedule (manual trigger only)
	Schedule string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		ListenAddr: getEnvOrDefault("LISTEN_ADDR", ":8080"),

		// Database configuration
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "trade_journal"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "journal"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "journal123"),

		// Redis configuration
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisEnabled:  getEnvOrDefault("REDIS_ENABLED", "true") == "true",

		// Auth configuration
		Auth: AuthConfig{
			JWTSecret:    getEnvOrDefault("JWT_SECRET", ""),
			TokenTTLMins: getEnvInt("JWT_TTL_MINUTES", 1440),
			BcryptCost:   getEnvInt("BCRYPT_COST", 10),
		},

		// Calendar sync configuration
		Calendar: CalendarConfig{
			Endpoint: getEnvOrDefault("CALENDAR_ENDPOINT", ""),
			Schedule: getEnvOrDefault("CALENDAR_SYNC_CRON", ""),
		},
	}
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
