package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIBaseURL      = "http://localhost:8000/api/v1"
	DefaultRefreshInterval = 30 * time.Second
	DefaultRestockQuantity = 50
)

type Config struct {
	Environment string
	HTTPPort    string
	CORSOrigins string

	API  APIConfig
	Tabs TabConfig
	Log  LogConfig

	DatabaseDSN string // empty keeps the activity log in memory
	RedisAddr   string // empty keeps snapshots in memory
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type TabConfig struct {
	MenuRefreshInterval time.Duration
	RestockQuantity     int
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] failed to read .env: %v", err)
	}

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", getEnv("VITE_API_BASE_URL", DefaultAPIBaseURL)),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		DatabaseDSN: getEnv("DATABASE_DSN", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
	}

	var err error
	if cfg.API.Timeout, err = getDuration("API_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Tabs.MenuRefreshInterval, err = getDuration("MENU_REFRESH_INTERVAL", DefaultRefreshInterval); err != nil {
		return nil, err
	}
	if cfg.Tabs.RestockQuantity, err = getInt("RESTOCK_QUANTITY", DefaultRestockQuantity); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API_BASE_URL: %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %s", c.API.Timeout)
	}
	if c.Tabs.MenuRefreshInterval <= 0 {
		return fmt.Errorf("MENU_REFRESH_INTERVAL must be positive, got %s", c.Tabs.MenuRefreshInterval)
	}
	if c.Tabs.RestockQuantity <= 0 {
		return fmt.Errorf("RESTOCK_QUANTITY must be positive, got %d", c.Tabs.RestockQuantity)
	}
	if _, err := strconv.Atoi(c.HTTPPort); err != nil {
		return fmt.Errorf("invalid HTTP_PORT: %q", c.HTTPPort)
	}
	return nil
}

// Warnings lists settings still on their development defaults.
func (c *Config) Warnings() []string {
	var out []string
	if c.API.BaseURL == DefaultAPIBaseURL {
		out = append(out, "API_BASE_URL is using the default value")
	}
	if c.CORSOrigins == "http://localhost:5173" {
		out = append(out, "CORS_ALLOWED_ORIGINS is using the default value, set your own domain in production")
	}
	if c.DatabaseDSN == "" {
		out = append(out, "DATABASE_DSN is not set, activity log kept in memory only")
	}
	return out
}

// AllowedOrigins returns the comma separated CORS list trimmed and rejoined.
func (c *Config) AllowedOrigins() string {
	origins := strings.Split(c.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return strings.Join(origins, ",")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration in %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid number in %s: %w", key, err)
	}
	return n, nil
}
