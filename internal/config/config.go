// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	DBPath         string
	LogLevel       string
	MemoryStore    bool

	// Stub agent settings.
	Port        string
	FrontendURL string
	UploadDir   string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	timeoutSecs := getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)
	if timeoutSecs <= 0 {
		timeoutSecs = 30
	}

	cfg := &Config{
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8000"),
		RequestTimeout: time.Duration(timeoutSecs) * time.Second,
		DBPath:         getEnv("DB_PATH", "./data/insure-chat.db"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		MemoryStore:    getEnvBool("MEMORY_STORE", false),
		Port:           getEnv("PORT", "8000"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		UploadDir:      getEnv("UPLOAD_DIR", "./data/uploads"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if !c.MemoryStore && c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	return nil
}

// SlogLevel maps the configured log level onto a normalized name.
// Unknown values fall back to info.
func (c *Config) SlogLevel() string {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		return strings.ToLower(c.LogLevel)
	default:
		return "info"
	}
}

// AllowedOrigins returns the CORS origins for the stub agent.
func (c *Config) AllowedOrigins() []string {
	if c.FrontendURL == "" {
		return []string{"*"}
	}
	return []string{c.FrontendURL}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
