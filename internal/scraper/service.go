package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/TharukaVishwajith/playwright-crawler/internal/browser"
	"github.com/TharukaVishwajith/playwright-crawler/internal/config"
	"github.com/TharukaVishwajith/playwright-crawler/internal/database"
	"github.com/TharukaVishwajith/playwright-crawler/internal/events"
	"github.com/TharukaVishwajith/playwright-crawler/internal/storage"
)

// Service runs the two crawl phases end to end: browser session setup,
// crawling, persistence and optional sinks. Both phases own their
// session for the full run and close it on exit.
type Service struct {
	cfg    *config.Config
	db     *database.DB
	events *events.Publisher
	logger *slog.Logger
}

// DetailsOptions controls the product detail phase.
type DetailsOptions struct {
	Concurrent bool
	Tabs       int
	// Limit restricts the run to the first N listings. Zero means all.
	Limit int
}

func NewService(cfg *config.Config, db *database.DB, publisher *events.Publisher) *Service {
	return &Service{
		cfg:    cfg,
		db:     db,
		events: publisher,
		logger: slog.Default().With("component", "service"),
	}
}

// RunListings executes the search phase and writes the listings file.
// It returns the number of products collected.
func (s *Service) RunListings(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("listing phase cancelled: %w", err)
	}

	s.logger.Info("starting listing phase",
		"query", s.cfg.Crawler.SearchQuery,
		"min_price", s.cfg.Crawler.PriceMin,
		"max_price", s.cfg.Crawler.PriceMax)

	session, err := browser.New(s.cfg.Browser)
	if err != nil {
		return 0, fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			s.logger.Warn("failed to close browser session", "error", err)
		}
	}()

	crawler := NewListingCrawler(session, s.cfg)
	listings, err := crawler.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing crawl failed: %w", err)
	}

	if err := storage.SaveListings(s.cfg.Paths.ListingsFile, listings); err != nil {
		return 0, fmt.Errorf("failed to save listings: %w", err)
	}
	s.logger.Info("listings saved",
		"file", s.cfg.Paths.ListingsFile,
		"count", len(listings))

	// The crawl layers return whatever they had when ctx was cancelled.
	// The partial file is kept, but the run itself must still fail.
	if err := ctx.Err(); err != nil {
		return len(listings), fmt.Errorf("listing phase cancelled after %d products: %w", len(listings), err)
	}

	if s.db != nil {
		if err := s.db.SaveListings(ctx, listings); err != nil {
			s.logger.Warn("failed to mirror listings to database", "error", err)
		}
	}

	if s.events != nil {
		if err := s.events.PublishListingPhaseCompleted(ctx, len(listings), s.cfg.Crawler.MaxListingPages); err != nil {
			s.logger.Warn("failed to publish listing event", "error", err)
		}
	}

	return len(listings), nil
}

// RunDetails executes the product detail phase against a previously
// written listings file and writes the details file. It returns the
// number of products processed.
func (s *Service) RunDetails(ctx context.Context, opts DetailsOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("detail phase cancelled: %w", err)
	}

	listings, err := storage.LoadListings(s.cfg.Paths.ListingsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("listings file %s not found, run the listing phase first", s.cfg.Paths.ListingsFile)
		}
		return 0, fmt.Errorf("failed to load listings: %w", err)
	}
	if len(listings) == 0 {
		return 0, fmt.Errorf("listings file %s is empty", s.cfg.Paths.ListingsFile)
	}

	if opts.Limit > 0 && opts.Limit < len(listings) {
		listings = listings[:opts.Limit]
	}
	if opts.Tabs <= 0 {
		opts.Tabs = s.cfg.Crawler.ConcurrentTabs
	}

	s.logger.Info("starting detail phase",
		"products", len(listings),
		"concurrent", opts.Concurrent,
		"tabs", opts.Tabs)

	session, err := browser.New(s.cfg.Browser)
	if err != nil {
		return 0, fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			s.logger.Warn("failed to close browser session", "error", err)
		}
	}()

	scraper := NewDetailScraper(session, s.cfg)
	details := scraper.ScrapeAll(ctx, listings, opts.Concurrent, opts.Tabs)

	if err := storage.SaveDetails(s.cfg.Paths.DetailsFile, details); err != nil {
		return 0, fmt.Errorf("failed to save details: %w", err)
	}
	s.logger.Info("details saved",
		"file", s.cfg.Paths.DetailsFile,
		"count", len(details))

	if err := ctx.Err(); err != nil {
		return len(details), fmt.Errorf("detail phase cancelled after %d products: %w", len(details), err)
	}

	for _, d := range details {
		if s.db != nil {
			if err := s.db.SaveDetail(ctx, d); err != nil {
				s.logger.Warn("failed to mirror detail to database", "url", d.URL, "error", err)
			}
		}
		if s.events != nil {
			if err := s.events.PublishProductScraped(ctx, d.URL, len(d.Specifications), len(d.Reviews)); err != nil {
				s.logger.Warn("failed to publish product event", "url", d.URL, "error", err)
			}
		}
	}

	if s.events != nil {
		if err := s.events.PublishDetailPhaseCompleted(ctx, len(details)); err != nil {
			s.logger.Warn("failed to publish detail phase event", "error", err)
		}
	}

	return len(details), nil
}
