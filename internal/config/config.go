package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Paths    PathsConfig
	Browser  BrowserConfig
	Crawler  CrawlerConfig
	LazyLoad LazyLoadConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type PathsConfig struct {
	DataDir      string
	LogsDir      string
	ListingsFile string
	DetailsFile  string
}

type BrowserConfig struct {
	Engine         string // firefox or chromium
	Headless       bool
	Timeout        time.Duration
	NavTimeout     time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
}

type CrawlerConfig struct {
	BaseURL           string
	SearchQuery       string
	PriceMin          int
	PriceMax          int
	MaxListingPages   int
	MaxReviewPages    int
	ConcurrentTabs    int
	ProductDelay      time.Duration
	ProductDelayMax   time.Duration
	ElementTimeout    time.Duration
	SearchSettleDelay time.Duration
	PageLoadDelay     time.Duration
}

// LazyLoadConfig tunes the incremental content loader.
type LazyLoadConfig struct {
	ScrollStep          int
	ScrollDelay         time.Duration
	MaxScrollAttempts   int
	MaxStagnantAttempts int
	StabilityCount      int
	LoadingTimeout      time.Duration
	NetworkIdleTimeout  time.Duration
	FinalWait           time.Duration
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxConns int32
}

// Enabled reports whether a Postgres sink has been configured at all.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	dataDir := getEnvOrDefault("CRAWLER_DATA_DIR", "data")
	logsDir := getEnvOrDefault("CRAWLER_LOGS_DIR", "logs")

	cfg := &Config{
		Paths: PathsConfig{
			DataDir:      dataDir,
			LogsDir:      logsDir,
			ListingsFile: filepath.Join(dataDir, getEnvOrDefault("CRAWLER_LISTINGS_FILE", "laptop_products_all_pages.json")),
			DetailsFile:  filepath.Join(dataDir, getEnvOrDefault("CRAWLER_DETAILS_FILE", "laptop_products_with_reviews.json")),
		},
		Browser: BrowserConfig{
			Engine:         getEnvOrDefault("BROWSER_ENGINE", "firefox"),
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 60*time.Second),
			NavTimeout:     getDurationOrDefault("BROWSER_NAV_TIMEOUT", 90*time.Second),
			UserAgent:      getEnvOrDefault("BROWSER_USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
		},
		Crawler: CrawlerConfig{
			BaseURL:           getEnvOrDefault("CRAWLER_BASE_URL", "https://www.bestbuy.com"),
			SearchQuery:       getEnvOrDefault("CRAWLER_SEARCH_QUERY", "laptop"),
			PriceMin:          getIntOrDefault("CRAWLER_PRICE_MIN", 500),
			PriceMax:          getIntOrDefault("CRAWLER_PRICE_MAX", 1500),
			MaxListingPages:   getIntOrDefault("CRAWLER_MAX_LISTING_PAGES", 5),
			MaxReviewPages:    getIntOrDefault("CRAWLER_MAX_REVIEW_PAGES", 10),
			ConcurrentTabs:    getIntOrDefault("CRAWLER_CONCURRENT_TABS", 4),
			ProductDelay:      getDurationOrDefault("CRAWLER_PRODUCT_DELAY", 1*time.Second),
			ProductDelayMax:   getDurationOrDefault("CRAWLER_PRODUCT_DELAY_MAX", 3*time.Second),
			ElementTimeout:    getDurationOrDefault("CRAWLER_ELEMENT_TIMEOUT", 20*time.Second),
			SearchSettleDelay: getDurationOrDefault("CRAWLER_SEARCH_SETTLE_DELAY", 15*time.Second),
			PageLoadDelay:     getDurationOrDefault("CRAWLER_PAGE_LOAD_DELAY", 2*time.Second),
		},
		LazyLoad: LazyLoadConfig{
			ScrollStep:          getIntOrDefault("LAZY_SCROLL_STEP", 300),
			ScrollDelay:         getDurationOrDefault("LAZY_SCROLL_DELAY", 1*time.Second),
			MaxScrollAttempts:   getIntOrDefault("LAZY_MAX_SCROLL_ATTEMPTS", 50),
			MaxStagnantAttempts: getIntOrDefault("LAZY_MAX_STAGNANT_ATTEMPTS", 5),
			StabilityCount:      getIntOrDefault("LAZY_STABILITY_COUNT", 3),
			LoadingTimeout:      getDurationOrDefault("LAZY_LOADING_TIMEOUT", 10*time.Second),
			NetworkIdleTimeout:  getDurationOrDefault("LAZY_NETWORK_IDLE_TIMEOUT", 5*time.Second),
			FinalWait:           getDurationOrDefault("LAZY_FINAL_WAIT", 2*time.Second),
		},
		Server: ServerConfig{
			Port:            getIntOrDefault("SERVER_PORT", 8080),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   getEnvOrDefault("DB_NAME", "playwright_crawler"),
			MaxConns: int32(getIntOrDefault("DB_MAX_CONNS", 5)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntOrDefault("REDIS_DB", 0),
			Stream:   getEnvOrDefault("REDIS_STREAM", "crawler:events"),
		},
		Logging: LoggingConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
			File:  filepath.Join(logsDir, getEnvOrDefault("LOG_FILE", "automation.log")),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Crawler.ConcurrentTabs < 1 {
		return fmt.Errorf("CRAWLER_CONCURRENT_TABS must be at least 1")
	}

	if c.Crawler.PriceMin > c.Crawler.PriceMax {
		return fmt.Errorf("CRAWLER_PRICE_MIN cannot be greater than CRAWLER_PRICE_MAX")
	}

	if c.LazyLoad.MaxScrollAttempts < 1 {
		return fmt.Errorf("LAZY_MAX_SCROLL_ATTEMPTS must be at least 1")
	}

	if c.LazyLoad.StabilityCount < 1 {
		return fmt.Errorf("LAZY_STABILITY_COUNT must be at least 1")
	}

	if c.Browser.Engine != "firefox" && c.Browser.Engine != "chromium" {
		return fmt.Errorf("BROWSER_ENGINE must be firefox or chromium, got %q", c.Browser.Engine)
	}

	return nil
}

// EnsureDirs creates the data and logs directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

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
