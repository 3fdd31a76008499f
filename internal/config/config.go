package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Scraper  ScraperConfig
	Browser  BrowserConfig
	Metrics  MetricsConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type ScraperConfig struct {
	BaseURL       string
	Concurrency   int
	JobTimeout    time.Duration
	NavTimeout    time.Duration
	PreflightWait time.Duration
	PageDelayMin  time.Duration
	PageDelayMax  time.Duration
	OutputDir     string
	MappingFile   string
}

type BrowserConfig struct {
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
}

type MetricsConfig struct {
	// Addr enables the /metrics + /healthz listener when non-empty.
	Addr string
}

type DatabaseConfig struct {
	// URL enables the Postgres snapshot store when non-empty.
	URL string
}

type RedisConfig struct {
	// Addr enables the job-event stream when non-empty.
	Addr     string
	Password string
	DB       int
	Stream   string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Scraper: ScraperConfig{
			BaseURL:       getEnvOrDefault("SCRAPER_BASE_URL", "https://pcpartpicker.com"),
			Concurrency:   getIntOrDefault("SCRAPER_CONCURRENCY", 5),
			JobTimeout:    getDurationOrDefault("SCRAPER_JOB_TIMEOUT", 20*time.Minute),
			NavTimeout:    getDurationOrDefault("SCRAPER_NAV_TIMEOUT", 30*time.Second),
			PreflightWait: getDurationOrDefault("SCRAPER_PREFLIGHT_WAIT", 30*time.Second),
			PageDelayMin:  getDurationOrDefault("SCRAPER_PAGE_DELAY_MIN", 1*time.Second),
			PageDelayMax:  getDurationOrDefault("SCRAPER_PAGE_DELAY_MAX", 3*time.Second),
			OutputDir:     getEnvOrDefault("SCRAPER_OUTPUT_DIR", "data"),
			MappingFile:   getEnvOrDefault("SCRAPER_MAPPING_FILE", "configs/mappings.yaml"),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			UserAgent:      getEnvOrDefault("BROWSER_USER_AGENT", defaultUserAgent),
		},
		Metrics: MetricsConfig{
			Addr: getEnvOrDefault("SCRAPER_METRICS_ADDR", ""),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("SCRAPER_DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("SCRAPER_REDIS_ADDR", ""),
			Password: getEnvOrDefault("SCRAPER_REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("SCRAPER_REDIS_DB", 0),
			Stream:   getEnvOrDefault("SCRAPER_REDIS_STREAM", "catalog:jobs"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scraper.Concurrency < 1 {
		return fmt.Errorf("SCRAPER_CONCURRENCY must be at least 1")
	}

	if c.Scraper.JobTimeout < c.Scraper.NavTimeout {
		return fmt.Errorf("SCRAPER_JOB_TIMEOUT cannot be shorter than SCRAPER_NAV_TIMEOUT")
	}

	if c.Scraper.BaseURL == "" {
		return fmt.Errorf("SCRAPER_BASE_URL must not be empty")
	}

	if c.Scraper.PageDelayMax < c.Scraper.PageDelayMin {
		return fmt.Errorf("SCRAPER_PAGE_DELAY_MAX cannot be shorter than SCRAPER_PAGE_DELAY_MIN")
	}

	return nil
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
