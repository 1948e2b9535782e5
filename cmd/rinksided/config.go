package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries the daemon settings. Everything has a default, the
// YAML file refines it, and per-deployment values (port, NATS URL,
// database credentials) override from the environment last.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"-"` // env only, never in the file
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"ssl_mode"`
	} `yaml:"database"`
	Store struct {
		// Backend is "postgres" or "memory". The memory backend keeps
		// everything in-process for local development and demos.
		Backend string `yaml:"backend"`
	} `yaml:"store"`
	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`
	Outbox struct {
		PollInterval time.Duration `yaml:"poll_interval"`
		BatchSize    int           `yaml:"batch_size"`
	} `yaml:"outbox"`
	Ratings struct {
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"ratings"`
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Name = "rinkside"
	cfg.Database.SSLMode = "disable"
	cfg.Store.Backend = "postgres"
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.Outbox.PollInterval = 2 * time.Second
	cfg.Outbox.BatchSize = 50
	cfg.Ratings.CacheTTL = 10 * time.Minute
	return cfg
}

// loadConfig reads the YAML config file when present and applies
// environment overrides for the settings that differ per deployment.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if url := os.Getenv("NATS_URL"); url != "" {
		cfg.NATS.URL = url
	}
	if backend := os.Getenv("STORE_BACKEND"); backend != "" {
		cfg.Store.Backend = backend
	}
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	if p := os.Getenv("DB_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT %q: %w", p, err)
		}
		cfg.Database.Port = port
	}
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	return cfg, nil
}

// DatabaseDSN builds the Postgres connection URL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host,
		c.Database.Port, c.Database.Name, c.Database.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
