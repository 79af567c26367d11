package config

import (
	"testing"
	"time"
)

// TestLoadConfig_Defaults tests the fallback values when no env vars are set
func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_HOST", "SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
		"SERVER_IDLE_TIMEOUT", "DATASET_PATH", "DATASET_CACHE_TTL", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %v, want %v", cfg.Server.Port, 8080)
	}
	if cfg.Dataset.Path != "./data/Crime_Data_from_2020_to_Present.csv" {
		t.Errorf("Dataset.Path = %q, want the bundled dataset path", cfg.Dataset.Path)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want %v", cfg.Cache.TTL, time.Hour)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v, want nil", err)
	}
}

// TestLoadConfig_Overrides tests env var overrides
func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATASET_PATH", "/tmp/crime.csv")
	t.Setenv("DATASET_CACHE_TTL", "30m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %v, want %v", cfg.Server.Port, 9090)
	}
	if cfg.Dataset.Path != "/tmp/crime.csv" {
		t.Errorf("Dataset.Path = %q, want %q", cfg.Dataset.Path, "/tmp/crime.csv")
	}
	if cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("Cache.TTL = %v, want %v", cfg.Cache.TTL, 30*time.Minute)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

// TestConfig_Validate tests the validation rules
func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080},
			Dataset: DatasetConfig{Path: "/data/crime.csv"},
			Cache:   CacheConfig{TTL: time.Hour},
			Logging: LoggingConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"empty dataset path", func(c *Config) { c.Dataset.Path = "" }, true},
		{"non-positive cache TTL", func(c *Config) { c.Cache.TTL = 0 }, true},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
