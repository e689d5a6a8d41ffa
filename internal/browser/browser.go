package browser

import (
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/TharukaVishwajith/playwright-crawler/internal/config"
)

// Session owns the playwright runtime, one browser, and one shared
// context. It is acquired at phase start and must be closed on every
// exit path; components receive it explicitly instead of sharing a
// global automation object.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	cfg     config.BrowserConfig
	logger  *slog.Logger
}

func New(cfg config.BrowserConfig) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	}

	var browser playwright.Browser
	switch cfg.Engine {
	case "chromium":
		browser, err = pw.Chromium.Launch(launchOpts)
	default:
		browser, err = pw.Firefox.Launch(launchOpts)
	}
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", cfg.Engine, err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(cfg.UserAgent),
		Viewport: &playwright.Size{
			Width:  cfg.ViewportWidth,
			Height: cfg.ViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	// Location prompts are answered up front so they never block a worker.
	if err := context.GrantPermissions([]string{"geolocation"}); err != nil {
		slog.Default().Warn("could not grant geolocation permission", "error", err)
	}

	return &Session{
		pw:      pw,
		browser: browser,
		context: context,
		cfg:     cfg,
		logger:  slog.Default().With("component", "browser"),
	}, nil
}

// NewPage opens a tab in the shared context with default timeouts applied.
func (s *Session) NewPage() (playwright.Page, error) {
	page, err := s.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}

	page.SetDefaultTimeout(float64(s.cfg.Timeout.Milliseconds()))
	page.SetDefaultNavigationTimeout(float64(s.cfg.NavTimeout.Milliseconds()))

	return page, nil
}

func (s *Session) Close() error {
	var errs []error

	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}

	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	return nil
}

// NavigateWithRetry navigates with domcontentloaded semantics, backing
// off linearly between attempts.
func (s *Session) NavigateWithRetry(page playwright.Page, targetURL string, maxRetries int) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			s.logger.Info("retrying navigation", "attempt", i+1, "url", targetURL)
			time.Sleep(time.Duration(i+1) * time.Second)
		}

		_, err := page.Goto(targetURL, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(float64(s.cfg.NavTimeout.Milliseconds())),
		})
		if err == nil {
			return nil
		}

		lastErr = err
		s.logger.Error("navigation failed", "error", err, "attempt", i+1)
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// WaitForReady probes for structural page elements after navigation.
// Every probe is best-effort; the only hard failure is landing on an
// unexpected host.
func (s *Session) WaitForReady(page playwright.Page, expectedURL string, elementTimeout, settleDelay time.Duration) error {
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(15000),
	}); err != nil {
		s.logger.Warn("network idle timeout", "error", err)
	}

	structural := []string{
		"header",
		"nav",
		`main, #main, [role="main"]`,
	}

	found := 0
	for _, selector := range structural {
		_, err := page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: playwright.Float(float64(elementTimeout.Milliseconds())),
		})
		if err != nil {
			s.logger.Warn("structural element not found within timeout", "selector", selector)
			continue
		}
		found++
	}

	if found == 0 {
		s.logger.Warn("no structural elements found, continuing anyway")
	} else {
		s.logger.Debug("structural elements found", "count", found, "expected", len(structural))
	}

	time.Sleep(settleDelay)

	host := hostOf(expectedURL)
	if host != "" && !strings.Contains(page.URL(), host) {
		return fmt.Errorf("unexpected URL after navigation: %s", page.URL())
	}

	return nil
}

// Screenshot captures a full-page screenshot checkpoint into dir.
func (s *Session) Screenshot(page playwright.Page, dir, name string) {
	path := filepath.Join(dir, name)
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		s.logger.Warn("failed to take screenshot", "path", path, "error", err)
		return
	}
	s.logger.Info("screenshot saved", "path", path)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}
