package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Scraper.Concurrency)
	assert.Equal(t, 20*time.Minute, cfg.Scraper.JobTimeout)
	assert.Equal(t, 30*time.Second, cfg.Scraper.NavTimeout)
	assert.Equal(t, 1*time.Second, cfg.Scraper.PageDelayMin)
	assert.Equal(t, 3*time.Second, cfg.Scraper.PageDelayMax)
	assert.Equal(t, "data", cfg.Scraper.OutputDir)
	assert.Equal(t, "configs/mappings.yaml", cfg.Scraper.MappingFile)
	assert.True(t, cfg.Browser.Headless)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "catalog:jobs", cfg.Redis.Stream)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCRAPER_CONCURRENCY", "2")
	t.Setenv("SCRAPER_JOB_TIMEOUT", "5m")
	t.Setenv("SCRAPER_OUTPUT_DIR", "/tmp/out")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("SCRAPER_METRICS_ADDR", ":9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Scraper.Concurrency)
	assert.Equal(t, 5*time.Minute, cfg.Scraper.JobTimeout)
	assert.Equal(t, "/tmp/out", cfg.Scraper.OutputDir)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero concurrency", func(c *Config) { c.Scraper.Concurrency = 0 }},
		{"job timeout shorter than nav timeout", func(c *Config) {
			c.Scraper.JobTimeout = time.Second
			c.Scraper.NavTimeout = time.Minute
		}},
		{"empty base url", func(c *Config) { c.Scraper.BaseURL = "" }},
		{"page delay max below min", func(c *Config) {
			c.Scraper.PageDelayMin = 5 * time.Second
			c.Scraper.PageDelayMax = time.Second
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
