package browser

import (
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// popupSelectors are candidate locators for location-permission prompts
// and generic overlay dismissal, tried in order.
var popupSelectors = []string{
	`button:has-text("Allow")`,
	`button:has-text("Block")`,
	`button:has-text("Enable Location")`,
	`button:has-text("Share Location")`,
	`button:has-text("Not now")`,
	`button:has-text("Later")`,
	`[data-testid*="location"]`,
	`button[aria-label="Close"]`,
	`[role="dialog"] button`,
	`button:has-text("Dismiss")`,
	`button:has-text("Close")`,
	`.close-button`,
	`.dismiss-button`,
}

var popupKeywords = []string{"allow", "enable", "share", "dismiss", "close", "not now", "later", "block"}

// DismissInterstitials clears the country-selection screen and any
// location/overlay popups that block the main site. Everything here is
// best-effort; a popup that cannot be dismissed is not fatal.
func (s *Session) DismissInterstitials(page playwright.Page, elementTimeout, settleDelay time.Duration) {
	s.dismissCountrySelection(page, elementTimeout, settleDelay)
	s.dismissPopups(page)
}

// dismissCountrySelection handles the "Choose a country." screen by
// clicking the United States option.
func (s *Session) dismissCountrySelection(page playwright.Page, elementTimeout, settleDelay time.Duration) {
	header := page.Locator(`h1:has-text("Choose a country.")`).First()
	count, err := header.Count()
	if err != nil || count == 0 {
		s.logger.Debug("no country selection screen detected")
		return
	}

	s.logger.Info("country selection screen detected")

	usOption := page.Locator(`h4:has-text("United States")`).First()
	count, err = usOption.Count()
	if err != nil || count == 0 {
		s.logger.Warn("United States option not found on country selection screen")
		return
	}

	if err := usOption.Click(); err != nil {
		s.logger.Warn("failed to click country option", "error", err)
		return
	}

	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		s.logger.Warn("load state wait after country selection", "error", err)
	}

	time.Sleep(settleDelay)
	s.logger.Info("country selected, continuing to main site")
}

// dismissPopups accepts browser dialogs and clicks through known popup
// buttons; falls back to Escape when nothing matched.
func (s *Session) dismissPopups(page playwright.Page) {
	handler := func(dialog playwright.Dialog) {
		s.logger.Info("dialog detected", "type", dialog.Type(), "message", dialog.Message())
		if err := dialog.Accept(); err != nil {
			dialog.Dismiss()
		}
	}
	page.OnDialog(handler)
	defer page.RemoveListener("dialog", handler)

	// Give late popups a moment to render.
	time.Sleep(3 * time.Second)

	handled := false
	for _, selector := range popupSelectors {
		elements, err := page.Locator(selector).All()
		if err != nil {
			continue
		}

		for _, el := range elements {
			visible, err := el.IsVisible()
			if err != nil || !visible {
				continue
			}

			text, err := el.TextContent()
			if err != nil {
				continue
			}
			text = strings.TrimSpace(text)

			if !matchesPopupKeyword(text) && text != "X" && text != "" {
				continue
			}

			s.logger.Info("dismissing popup", "selector", selector, "text", text)
			if err := el.Click(); err != nil {
				s.logger.Debug("popup click failed", "selector", selector, "error", err)
				continue
			}
			handled = true
			time.Sleep(2 * time.Second)
			break
		}

		if handled {
			break
		}
	}

	if !handled {
		s.logger.Debug("no popup buttons found, pressing Escape")
		if err := page.Keyboard().Press("Escape"); err == nil {
			time.Sleep(1 * time.Second)
		}
	}
}

func matchesPopupKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range popupKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
