package scraper

import (
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// paginationStrategies locate the end-of-content pagination footer on
// listing pages.
var paginationStrategies = []Strategy{
	{Name: "pagination list", Selector: "ol.paging-list"},
	{Name: "pagination container", Selector: ".pagination, nav[aria-label*=\"agination\"]"},
	{Name: "next page control", Selector: "a.sku-list-page-next"},
}

// loadMoreStrategies locate an explicit load-more control.
var loadMoreStrategies = []Strategy{
	{Name: "load more button", Selector: `button:has-text("Load more")`},
	{Name: "show more button", Selector: `button:has-text("Show more")`},
	{Name: "load more class", Selector: ".load-more button, button.load-more"},
}

const loadingIndicatorSelector = `.loading-spinner, .spinner, [class*="skeleton"], [aria-busy="true"]`

// pageSurface adapts a live playwright page to the loader's
// ScrollSurface. Every lookup failure is reported as an absent value.
type pageSurface struct {
	page   playwright.Page
	logger *slog.Logger
}

func newPageSurface(page playwright.Page, logger *slog.Logger) *pageSurface {
	return &pageSurface{page: page, logger: logger.With("component", "page_surface")}
}

func (ps *pageSurface) ContentHeight() (int, bool) {
	return ps.evalInt(`() => document.body.scrollHeight`)
}

func (ps *pageSurface) ScrollBottom() (int, bool) {
	return ps.evalInt(`() => window.pageYOffset + window.innerHeight`)
}

func (ps *pageSurface) ScrollTo(pos int) {
	if _, err := ps.page.Evaluate(`pos => window.scrollTo(0, pos)`, pos); err != nil {
		ps.logger.Debug("scroll failed", "pos", pos, "error", err)
	}
}

func (ps *pageSurface) PaginationVisible() bool {
	_, ok := FirstVisible(ps.page, paginationStrategies)
	return ok
}

func (ps *pageSurface) WaitLoadingGone(timeout time.Duration) {
	loc := ps.page.Locator(loadingIndicatorSelector).First()
	visible, err := loc.IsVisible()
	if err != nil || !visible {
		return
	}

	err = loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		ps.logger.Debug("loading indicator still visible after timeout")
	}
}

func (ps *pageSurface) WaitNetworkIdle(timeout time.Duration) {
	err := ps.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		ps.logger.Debug("network idle timeout", "error", err)
	}
}

func (ps *pageSurface) TriggerLoadMore() bool {
	if loc, ok := FirstVisible(ps.page, loadMoreStrategies); ok {
		if err := loc.Click(); err == nil {
			return true
		}
	}

	// No explicit control: nudge infinite-scroll listeners directly.
	_, err := ps.page.Evaluate(`() => {
		window.dispatchEvent(new Event('scroll'));
		window.dispatchEvent(new Event('resize'));
	}`)
	return err == nil
}

func (ps *pageSurface) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (ps *pageSurface) evalInt(script string) (int, bool) {
	result, err := ps.page.Evaluate(script)
	if err != nil {
		ps.logger.Debug("evaluate failed", "error", err)
		return 0, false
	}

	switch v := result.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
