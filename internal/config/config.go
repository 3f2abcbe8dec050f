// Package config provides configuration management for the application.
package config

import (
	"os"

	"github.com/joho/godotenv"

	"listener-certificate-updater/internal/models"
)

// Config holds all configuration values for the application.
type Config struct {
	// Load balancer
	ListenerARN string

	// AWS
	AWSRegion string

	// Application
	Stage    string
	LogLevel string
	Version  string

	// Local server
	Port string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		ListenerARN: os.Getenv("LISTENER_ARN"),

		AWSRegion: getEnv("AWS_REGION", "us-east-1"),

		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Version:  getEnv("SERVICE_VERSION", "1.0.0"),

		Port: getEnv("PORT", "8080"),
	}

	return cfg, nil
}

// Validate reports configuration that makes a certificate update impossible.
func (c *Config) Validate() error {
	if c.ListenerARN == "" {
		return models.ErrMissingListenerARN
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
