package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/TharukaVishwajith/playwright-crawler/internal/config"
	"github.com/TharukaVishwajith/playwright-crawler/internal/logging"
	"github.com/TharukaVishwajith/playwright-crawler/internal/scraper"
)

const subsetSize = 5

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
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

	service := scraper.NewService(cfg, nil, nil)
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Println()
		fmt.Println("=== Retail Product Crawler ===")
		fmt.Println("1. Collect product listings (search + price filter)")
		fmt.Println("2. Scrape product details and reviews")
		fmt.Printf("3. Scrape details for a test subset (%d products)\n", subsetSize)
		fmt.Println("4. Run both phases")
		fmt.Println("5. Exit")
		fmt.Print("Select an option: ")

		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}

		switch strings.TrimSpace(line) {
		case "1":
			if count, err := service.RunListings(ctx); err != nil {
				logger.Error("listing phase failed", "error", err)
			} else {
				fmt.Printf("Collected %d products.\n", count)
			}
		case "2":
			if !listingsExist(cfg) {
				fmt.Printf("Listings file %s not found. Run option 1 first.\n", cfg.Paths.ListingsFile)
				continue
			}
			opts := scraper.DetailsOptions{Concurrent: true, Tabs: cfg.Crawler.ConcurrentTabs}
			if count, err := service.RunDetails(ctx, opts); err != nil {
				logger.Error("detail phase failed", "error", err)
			} else {
				fmt.Printf("Scraped details for %d products.\n", count)
			}
		case "3":
			if !listingsExist(cfg) {
				fmt.Printf("Listings file %s not found. Run option 1 first.\n", cfg.Paths.ListingsFile)
				continue
			}
			opts := scraper.DetailsOptions{Concurrent: true, Tabs: cfg.Crawler.ConcurrentTabs, Limit: subsetSize}
			if count, err := service.RunDetails(ctx, opts); err != nil {
				logger.Error("detail phase failed", "error", err)
			} else {
				fmt.Printf("Scraped details for %d products.\n", count)
			}
		case "4":
			if count, err := service.RunListings(ctx); err != nil {
				logger.Error("listing phase failed", "error", err)
				continue
			} else {
				fmt.Printf("Collected %d products.\n", count)
			}
			opts := scraper.DetailsOptions{Concurrent: true, Tabs: cfg.Crawler.ConcurrentTabs}
			if count, err := service.RunDetails(ctx, opts); err != nil {
				logger.Error("detail phase failed", "error", err)
			} else {
				fmt.Printf("Scraped details for %d products.\n", count)
			}
		case "5", "q", "quit", "exit":
			return nil
		default:
			fmt.Println("Invalid option, please choose 1-5.")
		}
	}
}

func listingsExist(cfg *config.Config) bool {
	_, err := os.Stat(cfg.Paths.ListingsFile)
	return err == nil
}
