package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	Dataset DatasetConfig
	Cache   CacheConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatasetConfig holds the input dataset settings
type DatasetConfig struct {
	Path string
}

// CacheConfig holds the dataset cache settings
type CacheConfig struct {
	TTL time.Duration
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// LoadConfig reads the .env file, if present, and returns a populated Config.
func LoadConfig() (*Config, error) {
	// Missing .env is fine, system env vars are used directly
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Dataset: DatasetConfig{
			Path: getEnv("DATASET_PATH", "./data/Crime_Data_from_2020_to_Present.csv"),
		},
		Cache: CacheConfig{
			TTL: getEnvDuration("DATASET_CACHE_TTL", time.Hour),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Dataset.Path == "" {
		return fmt.Errorf("dataset path must not be empty")
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %v", c.Cache.TTL)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
