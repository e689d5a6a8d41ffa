package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/TharukaVishwajith/playwright-crawler/internal/config"
	"github.com/TharukaVishwajith/playwright-crawler/internal/database"
	"github.com/TharukaVishwajith/playwright-crawler/internal/events"
	"github.com/TharukaVishwajith/playwright-crawler/internal/logging"
	"github.com/TharukaVishwajith/playwright-crawler/internal/scraper"
)

func main() {
	var (
		phase      = flag.String("phase", "all", "crawl phase to run: listings, details or all")
		concurrent = flag.Bool("concurrent", true, "scrape product details over multiple tabs")
		tabs       = flag.Int("tabs", 0, "number of concurrent tabs (0 uses the configured default)")
		limit      = flag.Int("limit", 0, "limit the detail phase to the first N products (0 means all)")
		headless   = flag.Bool("headless", true, "run the browser headless")
	)
	flag.Parse()

	// The env default wins unless -headless was given explicitly.
	headlessSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "headless" {
			headlessSet = true
		}
	})

	if err := run(*phase, *concurrent, *tabs, *limit, *headless, headlessSet); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(phase string, concurrent bool, tabs, limit int, headless, headlessSet bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if headlessSet {
		cfg.Browser.Headless = headless
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	logger, err := logging.Setup(cfg.Logging)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var db *database.DB
	if cfg.Database.Enabled() {
		db, err = database.New(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	var publisher *events.Publisher
	if cfg.Redis.Enabled() {
		publisher = events.NewPublisher(cfg.Redis, logger)
		defer publisher.Close()
	}

	service := scraper.NewService(cfg, db, publisher)
	opts := scraper.DetailsOptions{Concurrent: concurrent, Tabs: tabs, Limit: limit}

	switch phase {
	case "listings":
		count, err := service.RunListings(ctx)
		if err != nil {
			return err
		}
		logger.Info("listing phase finished", "products", count)
	case "details":
		count, err := service.RunDetails(ctx, opts)
		if err != nil {
			return err
		}
		logger.Info("detail phase finished", "products", count)
	case "all":
		count, err := service.RunListings(ctx)
		if err != nil {
			return err
		}
		logger.Info("listing phase finished", "products", count)

		count, err = service.RunDetails(ctx, opts)
		if err != nil {
			return err
		}
		logger.Info("detail phase finished", "products", count)
	default:
		return fmt.Errorf("unknown phase %q, expected listings, details or all", phase)
	}

	return nil
}
