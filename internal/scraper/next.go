package scraper

import (
	"context"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// locatorControl adapts a playwright locator to NextControl.
type locatorControl struct {
	loc playwright.Locator
}

// Disabled checks the attribute and class-name conventions sites use to
// mark an inert pagination control.
func (c *locatorControl) Disabled() bool {
	if v, err := c.loc.GetAttribute("aria-disabled"); err == nil && v == "true" {
		return true
	}
	if v, err := c.loc.GetAttribute("disabled"); err == nil && v != "" {
		return true
	}
	if class, err := c.loc.GetAttribute("class"); err == nil {
		for _, token := range strings.Fields(class) {
			if token == "disabled" || strings.HasSuffix(token, "--disabled") {
				return true
			}
		}
	}
	return false
}

func (c *locatorControl) Activate(_ context.Context) error {
	return c.loc.Click()
}

// findNextControl evaluates the candidate strategies in order and wraps
// the first match.
func findNextControl(page playwright.Page, strategies []Strategy) (NextControl, bool) {
	loc, ok := FirstMatch(page, strategies)
	if !ok {
		return nil, false
	}
	return &locatorControl{loc: loc}, true
}
