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

	assert.Equal(t, "firefox", cfg.Browser.Engine)
	assert.Equal(t, "laptop", cfg.Crawler.SearchQuery)
	assert.Equal(t, 500, cfg.Crawler.PriceMin)
	assert.Equal(t, 1500, cfg.Crawler.PriceMax)
	assert.Equal(t, 300, cfg.LazyLoad.ScrollStep)
	assert.Equal(t, 50, cfg.LazyLoad.MaxScrollAttempts)
	assert.Equal(t, 3, cfg.LazyLoad.StabilityCount)
	assert.Equal(t, time.Second, cfg.LazyLoad.ScrollDelay)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Redis.Enabled())

	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BROWSER_ENGINE", "chromium")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("CRAWLER_SEARCH_QUERY", "monitor")
	t.Setenv("CRAWLER_CONCURRENT_TABS", "8")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "chromium", cfg.Browser.Engine)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "monitor", cfg.Crawler.SearchQuery)
	assert.Equal(t, 8, cfg.Crawler.ConcurrentTabs)
	assert.True(t, cfg.Database.Enabled())
	assert.True(t, cfg.Redis.Enabled())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "zero tabs",
			mutate: func(c *Config) { c.Crawler.ConcurrentTabs = 0 },
			want:   "CRAWLER_CONCURRENT_TABS",
		},
		{
			name:   "inverted price range",
			mutate: func(c *Config) { c.Crawler.PriceMin = 2000; c.Crawler.PriceMax = 500 },
			want:   "CRAWLER_PRICE_MIN",
		},
		{
			name:   "unknown engine",
			mutate: func(c *Config) { c.Browser.Engine = "webkit2" },
			want:   "BROWSER_ENGINE",
		},
		{
			name:   "zero stability count",
			mutate: func(c *Config) { c.LazyLoad.StabilityCount = 0 },
			want:   "LAZY_STABILITY_COUNT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
