package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/TharukaVishwajith/playwright-crawler/internal/browser"
	"github.com/TharukaVishwajith/playwright-crawler/internal/config"
	"github.com/TharukaVishwajith/playwright-crawler/internal/models"
	"github.com/TharukaVishwajith/playwright-crawler/internal/parser"
	"github.com/TharukaVishwajith/playwright-crawler/internal/ratelimit"
)

var specButtonStrategies = []Strategy{
	{Name: "specifications button", Selector: `button:has-text("Specifications")`},
	{Name: "specs drawer", Selector: `button[data-testid="specifications-drawer"]`},
	{Name: "full specs link", Selector: `a:has-text("Full Specifications")`},
}

var reviewLinkStrategies = []Strategy{
	{Name: "see all reviews", Selector: `a:has-text("See All Customer Reviews")`},
	{Name: "reviews link", Selector: `a[href*="/review"]`},
	{Name: "reviews tab", Selector: `button:has-text("Reviews")`},
}

var reviewNextStrategies = []Strategy{
	{Name: "review pagination next", Selector: `li.page.next a`},
	{Name: "next page aria", Selector: `a[aria-label="Next page"], a[aria-label="next page"]`},
	{Name: "pagination next class", Selector: `.review-pagination .next a, a.pagination-next`},
}

const (
	specRowSelector    = ".spec-row, [data-testid=\"specification-row\"], dl"
	reviewItemSelector = "li.review-item, .review-item, [data-testid=\"review-item\"]"
)

// DetailScraper runs phase 2: one product page at a time, extracting
// the specifications side panel and the paginated customer reviews.
type DetailScraper struct {
	session *browser.Session
	parser  *parser.BestBuyParser
	cfg     *config.Config
	logger  *slog.Logger
}

func NewDetailScraper(session *browser.Session, cfg *config.Config) *DetailScraper {
	return &DetailScraper{
		session: session,
		parser:  parser.NewBestBuyParser(cfg.Crawler.BaseURL),
		cfg:     cfg,
		logger:  slog.Default().With("component", "detail_scraper"),
	}
}

// ScrapeAll enriches every listing, either sequentially on one tab or
// fanned out over `tabs` concurrent tabs. The output preserves the input
// order in both modes.
func (ds *DetailScraper) ScrapeAll(ctx context.Context, listings []models.ListingRecord, concurrent bool, tabs int) []models.DetailRecord {
	if !concurrent || tabs <= 1 {
		return ds.worker(ctx, 0, listings)
	}
	return Distribute(ctx, listings, tabs, ds.worker, ds.logger)
}

// worker processes its chunk strictly in order on its own tab. A failed
// product keeps its bare listing; it never aborts the chunk.
func (ds *DetailScraper) worker(ctx context.Context, workerID int, chunk []models.ListingRecord) []models.DetailRecord {
	logger := ds.logger.With("worker", workerID)

	page, err := ds.session.NewPage()
	if err != nil {
		logger.Error("failed to open tab", "error", err)
		return nil
	}
	defer page.Close()

	limiter := ratelimit.NewSimpleRateLimiter(ds.cfg.Crawler.ProductDelay, ds.cfg.Crawler.ProductDelayMax)

	out := make([]models.DetailRecord, 0, len(chunk))
	for i, listing := range chunk {
		if ctx.Err() != nil {
			logger.Warn("cancelled mid-chunk", "processed", i)
			return out
		}

		if err := limiter.Wait(ctx); err != nil {
			return out
		}

		record, err := ds.scrapeProduct(ctx, page, listing)
		if err != nil {
			logger.Warn("product scrape failed, keeping bare listing",
				"url", listing.URL, "error", err)
			record = models.NewDetailRecord(listing, nil, nil)
		}

		logger.Info("product processed",
			"index", i,
			"specs", len(record.Specifications),
			"reviews", len(record.Reviews))
		out = append(out, record)
	}

	return out
}

func (ds *DetailScraper) scrapeProduct(ctx context.Context, page playwright.Page, listing models.ListingRecord) (models.DetailRecord, error) {
	if listing.URL == "" {
		// Nothing to visit; the listing survives as-is.
		return models.NewDetailRecord(listing, nil, nil), nil
	}

	if err := ds.session.NavigateWithRetry(page, listing.URL, 3); err != nil {
		return models.DetailRecord{}, fmt.Errorf("navigation failed: %w", err)
	}

	if err := ds.session.WaitForReady(page, ds.cfg.Crawler.BaseURL, ds.cfg.Crawler.ElementTimeout, ds.cfg.Crawler.PageLoadDelay); err != nil {
		ds.logger.Warn("product page readiness check failed", "url", listing.URL, "error", err)
	}

	specs := ds.extractSpecs(page)
	reviews := ds.extractReviews(ctx, page)

	return models.NewDetailRecord(listing, specs, reviews), nil
}

// extractSpecs opens the specifications side panel and reads its rows.
// Absence of the panel is a normal outcome.
func (ds *DetailScraper) extractSpecs(page playwright.Page) map[string]string {
	button, ok := FirstVisible(page, specButtonStrategies)
	if !ok {
		ds.logger.Debug("no specifications control found")
		return nil
	}

	if err := button.ScrollIntoViewIfNeeded(); err == nil {
		if err := button.Click(); err != nil {
			ds.logger.Debug("failed to open specifications panel", "error", err)
			return nil
		}
	}

	_, err := page.WaitForSelector(specRowSelector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(ds.cfg.Crawler.ElementTimeout.Milliseconds())),
	})
	if err != nil {
		ds.logger.Debug("specifications panel did not appear")
		return nil
	}

	html, err := page.Content()
	if err != nil {
		ds.logger.Warn("failed to read product page content", "error", err)
		return nil
	}

	specs, err := ds.parser.ParseSpecs(html)
	if err != nil {
		ds.logger.Warn("failed to parse specifications", "error", err)
		return nil
	}

	// Close the panel so it cannot cover the review section.
	if err := page.Keyboard().Press("Escape"); err == nil {
		time.Sleep(500 * time.Millisecond)
	}

	return specs
}

// extractReviews walks every page of the product's review section.
func (ds *DetailScraper) extractReviews(ctx context.Context, page playwright.Page) []models.ReviewRecord {
	if link, ok := FirstVisible(page, reviewLinkStrategies); ok {
		if err := link.ScrollIntoViewIfNeeded(); err == nil {
			if err := link.Click(); err != nil {
				ds.logger.Debug("failed to open review section", "error", err)
			}
		}
		time.Sleep(ds.cfg.Crawler.PageLoadDelay)
	}

	_, err := page.WaitForSelector(reviewItemSelector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(ds.cfg.Crawler.ElementTimeout.Milliseconds())),
	})
	if err != nil {
		ds.logger.Debug("no reviews found for product")
		return nil
	}

	pager := &reviewPager{scraper: ds, page: page}
	return WalkPages[models.ReviewRecord](ctx, pager, ds.cfg.Crawler.MaxReviewPages, ds.logger)
}

// reviewPager adapts the live review section to the pagination walker.
type reviewPager struct {
	scraper *DetailScraper
	page    playwright.Page
}

func (p *reviewPager) Extract(_ context.Context) ([]models.ReviewRecord, error) {
	html, err := p.page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}
	return p.scraper.parser.ParseReviews(html)
}

func (p *reviewPager) FindNext(_ context.Context) (NextControl, bool) {
	return findNextControl(p.page, reviewNextStrategies)
}

func (p *reviewPager) Settle(_ context.Context) bool {
	_, err := p.page.WaitForSelector(reviewItemSelector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(p.scraper.cfg.Crawler.ElementTimeout.Milliseconds())),
	})
	if err != nil {
		return false
	}
	time.Sleep(p.scraper.cfg.Crawler.PageLoadDelay)
	return true
}
