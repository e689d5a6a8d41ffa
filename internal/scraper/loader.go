package scraper

import (
	"log/slog"
	"time"

	"github.com/TharukaVishwajith/playwright-crawler/internal/config"
)

// ScrollSurface is the minimal view of a lazy-loading page the content
// loader needs. Lookups that find nothing report ok=false; that is a
// normal observation, not an error.
type ScrollSurface interface {
	// ContentHeight returns the current scrollable content height.
	ContentHeight() (int, bool)
	// ScrollBottom returns the bottom edge of the current viewport.
	ScrollBottom() (int, bool)
	// ScrollTo moves the viewport so its bottom edge is at pos.
	ScrollTo(pos int)
	// PaginationVisible reports whether an end-of-content pagination
	// control is currently visible.
	PaginationVisible() bool
	// WaitLoadingGone blocks until visible loading indicators disappear
	// or the timeout elapses.
	WaitLoadingGone(timeout time.Duration)
	// WaitNetworkIdle blocks until the page reaches network idle or the
	// timeout elapses.
	WaitNetworkIdle(timeout time.Duration)
	// TriggerLoadMore attempts to provoke further lazy loading: clicking
	// a load-more control if one exists, otherwise dispatching synthetic
	// scroll events. Reports whether anything was triggered.
	TriggerLoadMore() bool
	// Sleep pauses between observations.
	Sleep(d time.Duration)
}

// LoadResult summarizes why the loader stopped.
type LoadResult struct {
	Iterations       int
	FinalHeight      int
	Stabilized       bool
	PaginationFound  bool
	StagnantAttempts int
}

// Loader forces lazy-loaded content to materialize by scrolling in fixed
// steps and watching content height. Height stability over consecutive
// bottom observations is the completeness proxy; a hard iteration ceiling
// guarantees termination regardless of page behavior.
type Loader struct {
	cfg    config.LazyLoadConfig
	logger *slog.Logger
}

func NewLoader(cfg config.LazyLoadConfig, logger *slog.Logger) *Loader {
	return &Loader{
		cfg:    cfg,
		logger: logger.With("component", "content_loader"),
	}
}

// LoadAll scrolls until the content stabilizes, a pagination control
// appears, or the attempt ceilings are hit. Individual waits inside the
// loop are best-effort; only the termination conditions end it.
func (l *Loader) LoadAll(s ScrollSurface) LoadResult {
	res := LoadResult{}

	prevHeight, _ := s.ContentHeight()
	stable := 0

	for res.Iterations = 0; res.Iterations < l.cfg.MaxScrollAttempts; res.Iterations++ {
		if res.StagnantAttempts >= l.cfg.MaxStagnantAttempts || res.Stabilized {
			break
		}

		if s.PaginationVisible() {
			l.logger.Debug("pagination control visible, content considered loaded")
			res.PaginationFound = true
			break
		}

		s.WaitLoadingGone(l.cfg.LoadingTimeout)

		height, ok := s.ContentHeight()
		if !ok {
			l.logger.Warn("could not read content height")
			res.StagnantAttempts++
			continue
		}
		res.FinalHeight = height

		bottom, ok := s.ScrollBottom()
		if !ok {
			bottom = 0
		}

		if bottom < height {
			// Not at the bottom yet: advance by one step, capped at the
			// current height.
			next := bottom + l.cfg.ScrollStep
			if next > height {
				next = height
			}
			s.ScrollTo(next)
			s.Sleep(l.cfg.ScrollDelay)
			s.WaitLoadingGone(l.cfg.LoadingTimeout)
			s.WaitNetworkIdle(l.cfg.NetworkIdleTimeout)
			continue
		}

		// At the bottom: did the content grow since the last observation?
		if height > prevHeight {
			l.logger.Debug("content grew", "previous", prevHeight, "current", height)
			prevHeight = height
			stable = 0
			res.StagnantAttempts = 0
			continue
		}

		stable++
		if stable >= l.cfg.StabilityCount {
			l.logger.Debug("content height stable", "height", height, "observations", stable)
			res.Stabilized = true
			continue
		}

		// No growth yet: force the true bottom, wait longer, and try to
		// provoke the page's infinite-scroll heuristics.
		res.StagnantAttempts++
		s.ScrollTo(height)
		s.Sleep(l.cfg.FinalWait)
		if s.TriggerLoadMore() {
			l.logger.Debug("triggered load-more", "attempt", res.StagnantAttempts)
		}
	}

	l.logger.Info("content loading finished",
		"iterations", res.Iterations,
		"height", res.FinalHeight,
		"stabilized", res.Stabilized,
		"pagination_found", res.PaginationFound)

	return res
}
