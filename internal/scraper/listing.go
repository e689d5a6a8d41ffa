package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/TharukaVishwajith/playwright-crawler/internal/browser"
	"github.com/TharukaVishwajith/playwright-crawler/internal/config"
	"github.com/TharukaVishwajith/playwright-crawler/internal/models"
	"github.com/TharukaVishwajith/playwright-crawler/internal/parser"
)

var searchInputStrategies = []Strategy{
	{Name: "search bar testid", Selector: `input[data-testid="SearchBar-TestID"]`},
	{Name: "search placeholder", Selector: `input[placeholder*="Search"]`},
	{Name: "autocomplete bar", Selector: `#autocomplete-search-bar`},
	{Name: "searchbox role", Selector: `[role="searchbox"]`},
	{Name: "search type", Selector: `input[type="search"]`},
}

var searchButtonStrategies = []Strategy{
	{Name: "search button testid", Selector: `button[data-testid="SearchButton-TestID"]`},
	{Name: "search aria label", Selector: `button[aria-label*="Search"]`},
	{Name: "magnifier", Selector: `button.sugg-magnifier`},
	{Name: "search id", Selector: `button[id*="search"]`},
}

var minPriceStrategies = []Strategy{
	{Name: "min placeholder", Selector: `input[placeholder="Min Price"]`},
	{Name: "min partial", Selector: `input[placeholder*="Min"]`},
	{Name: "min testid", Selector: `input[data-testid*="min"]`},
	{Name: "min aria", Selector: `input[aria-label*="minimum"]`},
}

var maxPriceStrategies = []Strategy{
	{Name: "max placeholder", Selector: `input[placeholder="Max Price"]`},
	{Name: "max partial", Selector: `input[placeholder*="Max"]`},
	{Name: "max testid", Selector: `input[data-testid*="max"]`},
	{Name: "max aria", Selector: `input[aria-label*="maximum"]`},
}

var setButtonStrategies = []Strategy{
	{Name: "facet set button", Selector: `button.current-price-facet-set-button:has-text("Set")`},
	{Name: "set text", Selector: `button:has-text("Set")`},
	{Name: "set aria", Selector: `button[aria-label*="Set"]`},
}

var listingNextStrategies = []Strategy{
	{Name: "sku next", Selector: `a.sku-list-page-next`},
	{Name: "sku next class", Selector: `.sku-list-page-next`},
	{Name: "next aria", Selector: `a[aria-label="Next Page"]`},
	{Name: "next text", Selector: `a:has-text("Next")`},
}

const listingItemSelector = "li.sku-item, .sku-item"

// ListingCrawler runs phase 1: navigate, search, apply the price facet,
// force lazy content to load, and walk the result pages.
type ListingCrawler struct {
	session *browser.Session
	parser  *parser.BestBuyParser
	loader  *Loader
	cfg     *config.Config
	logger  *slog.Logger
}

func NewListingCrawler(session *browser.Session, cfg *config.Config) *ListingCrawler {
	logger := slog.Default().With("component", "listing_crawler")
	return &ListingCrawler{
		session: session,
		parser:  parser.NewBestBuyParser(cfg.Crawler.BaseURL),
		loader:  NewLoader(cfg.LazyLoad, logger),
		cfg:     cfg,
		logger:  logger,
	}
}

// Run produces the full ordered listing set for the configured search.
func (lc *ListingCrawler) Run(ctx context.Context) ([]models.ListingRecord, error) {
	page, err := lc.session.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	if err := lc.session.NavigateWithRetry(page, lc.cfg.Crawler.BaseURL, 3); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", lc.cfg.Crawler.BaseURL, err)
	}

	if err := lc.session.WaitForReady(page, lc.cfg.Crawler.BaseURL, lc.cfg.Crawler.ElementTimeout, lc.cfg.Crawler.PageLoadDelay); err != nil {
		return nil, err
	}

	lc.session.DismissInterstitials(page, lc.cfg.Crawler.ElementTimeout, lc.cfg.Crawler.PageLoadDelay)
	lc.session.Screenshot(page, lc.cfg.Paths.DataDir, "before_search.png")

	if err := lc.search(page); err != nil {
		lc.session.Screenshot(page, lc.cfg.Paths.DataDir, "error_state.png")
		return nil, err
	}
	lc.session.Screenshot(page, lc.cfg.Paths.DataDir, "search_results.png")

	if err := lc.applyPriceFilter(page); err != nil {
		lc.session.Screenshot(page, lc.cfg.Paths.DataDir, "error_state.png")
		return nil, err
	}
	lc.session.Screenshot(page, lc.cfg.Paths.DataDir, "filtered_results.png")

	// First page: make the lazy content materialize before extracting.
	lc.waitForItems(page)
	lc.loader.LoadAll(newPageSurface(page, lc.logger))

	pager := &listingPager{crawler: lc, page: page}
	records := WalkPages[models.ListingRecord](ctx, pager, lc.cfg.Crawler.MaxListingPages, lc.logger)

	lc.logger.Info("listing crawl completed", "records", len(records))
	return records, nil
}

func (lc *ListingCrawler) search(page playwright.Page) error {
	input, ok := WaitForAny(page, searchInputStrategies, 5000)
	if !ok {
		return fmt.Errorf("search input field not found")
	}

	if err := input.Fill(lc.cfg.Crawler.SearchQuery); err != nil {
		return fmt.Errorf("failed to fill search input: %w", err)
	}
	lc.logger.Info("typed search query", "query", lc.cfg.Crawler.SearchQuery)

	if button, ok := FirstVisible(page, searchButtonStrategies); ok {
		if err := button.Click(); err != nil {
			return fmt.Errorf("failed to click search button: %w", err)
		}
	} else {
		lc.logger.Info("search button not found, pressing Enter")
		if err := input.Press("Enter"); err != nil {
			return fmt.Errorf("failed to submit search: %w", err)
		}
	}

	// Result pages render progressively; give them a fixed settle window
	// before looking at the DOM at all.
	time.Sleep(lc.cfg.Crawler.SearchSettleDelay)

	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		lc.logger.Warn("load state wait after search", "error", err)
	}

	lc.logger.Info("search results page loaded")
	return nil
}

func (lc *ListingCrawler) applyPriceFilter(page playwright.Page) error {
	minInput, ok := WaitForAny(page, minPriceStrategies, 5000)
	if !ok {
		return fmt.Errorf("min price input field not found")
	}
	if err := minInput.Fill(strconv.Itoa(lc.cfg.Crawler.PriceMin)); err != nil {
		return fmt.Errorf("failed to set min price: %w", err)
	}

	maxInput, ok := WaitForAny(page, maxPriceStrategies, 5000)
	if !ok {
		return fmt.Errorf("max price input field not found")
	}
	if err := maxInput.Fill(strconv.Itoa(lc.cfg.Crawler.PriceMax)); err != nil {
		return fmt.Errorf("failed to set max price: %w", err)
	}

	setButton, ok := WaitForAny(page, setButtonStrategies, 5000)
	if !ok {
		return fmt.Errorf("price filter set button not found")
	}
	if err := setButton.Click(); err != nil {
		return fmt.Errorf("failed to apply price filter: %w", err)
	}

	lc.logger.Info("price filter applied",
		"min", lc.cfg.Crawler.PriceMin,
		"max", lc.cfg.Crawler.PriceMax)

	time.Sleep(3 * time.Second)
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		lc.logger.Warn("load state wait after price filter", "error", err)
	}

	return nil
}

func (lc *ListingCrawler) waitForItems(page playwright.Page) bool {
	_, err := page.WaitForSelector(listingItemSelector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(lc.cfg.Crawler.ElementTimeout.Milliseconds())),
	})
	if err != nil {
		lc.logger.Warn("listing items did not appear", "error", err)
		return false
	}
	return true
}

// listingPager adapts the live results page to the pagination walker.
type listingPager struct {
	crawler *ListingCrawler
	page    playwright.Page
}

func (p *listingPager) Extract(_ context.Context) ([]models.ListingRecord, error) {
	html, err := p.page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}
	return p.crawler.parser.ParseListings(html)
}

func (p *listingPager) FindNext(_ context.Context) (NextControl, bool) {
	return findNextControl(p.page, listingNextStrategies)
}

func (p *listingPager) Settle(_ context.Context) bool {
	if !p.crawler.waitForItems(p.page) {
		return false
	}
	p.crawler.loader.LoadAll(newPageSurface(p.page, p.crawler.logger))
	time.Sleep(p.crawler.cfg.Crawler.PageLoadDelay)
	return true
}
