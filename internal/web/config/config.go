package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the web service, including how to
// reach the management service.
type Config struct {
	ServiceName    string
	HTTPPort       string
	LogLevel       string
	ManagementURL  string
	Username       string
	Password       string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		ServiceName:    getEnv("SERVICE_NAME", "web"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ManagementURL:  getEnv("MANAGEMENT_URL", "http://localhost:8081/api/books"),
		Username:       getEnv("MANAGEMENT_USERNAME", "admin"),
		Password:       getEnv("MANAGEMENT_PASSWORD", "admin"),
		ConnectTimeout: getDuration("CONNECT_TIMEOUT_SECONDS", 5),
		ReadTimeout:    getDuration("READ_TIMEOUT_SECONDS", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return time.Duration(defaultSeconds) * time.Second
}
