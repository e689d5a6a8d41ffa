package scraper

import (
	"github.com/playwright-community/playwright-go"
)

// Strategy is one candidate way of finding a target element. Strategies
// are evaluated in priority order, first match wins, so per-site selector
// churn stays out of the loop logic.
type Strategy struct {
	Name     string
	Selector string
}

// FirstMatch returns the first strategy's locator that matches at least
// one element. Absence is a normal value.
func FirstMatch(page playwright.Page, strategies []Strategy) (playwright.Locator, bool) {
	for _, s := range strategies {
		loc := page.Locator(s.Selector).First()
		count, err := loc.Count()
		if err != nil || count == 0 {
			continue
		}
		return loc, true
	}
	return nil, false
}

// FirstVisible is FirstMatch restricted to currently visible elements.
func FirstVisible(page playwright.Page, strategies []Strategy) (playwright.Locator, bool) {
	for _, s := range strategies {
		loc := page.Locator(s.Selector).First()
		count, err := loc.Count()
		if err != nil || count == 0 {
			continue
		}
		if visible, err := loc.IsVisible(); err != nil || !visible {
			continue
		}
		return loc, true
	}
	return nil, false
}

// WaitForAny waits for each strategy in turn until one becomes visible
// within the per-strategy timeout.
func WaitForAny(page playwright.Page, strategies []Strategy, timeoutMs float64) (playwright.Locator, bool) {
	for _, s := range strategies {
		loc := page.Locator(s.Selector).First()
		err := loc.WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: playwright.Float(timeoutMs),
		})
		if err != nil {
			continue
		}
		return loc, true
	}
	return nil, false
}
