// Package config provides configuration management for the sync connector.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Autotask AutotaskConfig
	Postgres PostgresConfig
	Sync     SyncConfig
	Retry    RetryConfig
	Server   ServerConfig
	Logging  LoggingConfig
}

// AutotaskConfig holds the remote API credentials and client settings.
type AutotaskConfig struct {
	Username        string
	Secret          string
	IntegrationCode string
	// ZoneInfoURL is the global zone lookup endpoint. Overridable for tests.
	ZoneInfoURL string
	// RequestsPerSecond throttles outbound API calls.
	RequestsPerSecond float64
	Timeout           time.Duration
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// URL returns the database URL used by the migration tooling.
func (c *PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// SyncConfig holds sync engine configuration
type SyncConfig struct {
	// BatchQuerySize caps how many parent IDs go into one batched query.
	// The server rejects filters matching more than 500 records.
	BatchQuerySize int
	// CompletedWindow is the trailing window during which records in the
	// terminal "complete" status are still fetched.
	CompletedWindow time.Duration
	MigrationsPath  string
}

// RetryConfig holds retry/backoff configuration for the API client.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// ServerConfig holds the callback server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env file is optional - environment variables can be set directly
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Autotask: AutotaskConfig{
			Username:          getEnv("AUTOTASK_USERNAME", ""),
			Secret:            getEnv("AUTOTASK_SECRET", ""),
			IntegrationCode:   getEnv("AUTOTASK_INTEGRATION_CODE", ""),
			ZoneInfoURL:       getEnv("AUTOTASK_ZONE_INFO_URL", "https://webservices.autotask.net/atservicesrest/v1.0/zoneInformation"),
			RequestsPerSecond: getEnvAsFloat("AUTOTASK_REQUESTS_PER_SECOND", 3.0),
			Timeout:           getEnvAsDuration("AUTOTASK_TIMEOUT", 30*time.Second),
		},
		Postgres: PostgresConfig{
			Host:           getEnv("POSTGRES_HOST", "localhost"),
			Port:           getEnv("POSTGRES_PORT", "5432"),
			Database:       getEnv("POSTGRES_DB", "autotask_sync"),
			User:           getEnv("POSTGRES_USER", "autotask"),
			Password:       getEnv("POSTGRES_PASSWORD", ""),
			MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 20),
		},
		Sync: SyncConfig{
			BatchQuerySize:  getEnvAsInt("SYNC_BATCH_QUERY_SIZE", 400),
			CompletedWindow: getEnvAsDuration("SYNC_COMPLETED_WINDOW", 8*time.Hour),
			MigrationsPath:  getEnv("SYNC_MIGRATIONS_PATH", "migrations"),
		},
		Retry: RetryConfig{
			MaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 4),
			InitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", 1*time.Second),
			MaxDelay:     getEnvAsDuration("RETRY_MAX_DELAY", 30*time.Second),
			Multiplier:   getEnvAsFloat("RETRY_MULTIPLIER", 2.0),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

// Validate checks the settings that every entity sync depends on.
func (c *Config) Validate() error {
	if c.Autotask.Username == "" || c.Autotask.Secret == "" || c.Autotask.IntegrationCode == "" {
		return fmt.Errorf("AUTOTASK_USERNAME, AUTOTASK_SECRET and AUTOTASK_INTEGRATION_CODE must be set")
	}
	if c.Sync.BatchQuerySize <= 0 || c.Sync.BatchQuerySize > 500 {
		return fmt.Errorf("SYNC_BATCH_QUERY_SIZE must be between 1 and 500, got %d", c.Sync.BatchQuerySize)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
