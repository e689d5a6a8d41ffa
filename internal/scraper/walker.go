package scraper

import (
	"context"
	"log/slog"
)

// NextControl is a located next-page control.
type NextControl interface {
	// Disabled reports whether the control is present but inert (via
	// attribute or class convention). A disabled control is treated
	// identically to no control at all.
	Disabled() bool
	// Activate clicks the control.
	Activate(ctx context.Context) error
}

// Pager is one page-local view of a paginated listing: it can extract the
// current page's items, locate the next-page control, and wait for the
// page to settle after the control is activated.
type Pager[T any] interface {
	Extract(ctx context.Context) ([]T, error)
	// FindNext returns the next-page control, or ok=false when no
	// candidate locator matches. Absence is a normal value.
	FindNext(ctx context.Context) (NextControl, bool)
	// Settle waits for the expected item container to reappear after a
	// page change. A false return means the page never settled and the
	// walk stops with whatever was already accumulated.
	Settle(ctx context.Context) bool
}

// WalkPages accumulates items across pages until no usable next control
// remains or maxPages is reached. An extraction failure on one page skips
// that page and continues; partial results are a success, not a failure.
func WalkPages[T any](ctx context.Context, pager Pager[T], maxPages int, logger *slog.Logger) []T {
	var all []T

	for pageNum := 1; pageNum <= maxPages; pageNum++ {
		if ctx.Err() != nil {
			logger.Warn("walk cancelled", "page", pageNum)
			return all
		}

		items, err := pager.Extract(ctx)
		if err != nil {
			logger.Warn("extraction failed, skipping page", "page", pageNum, "error", err)
		} else {
			logger.Info("extracted page", "page", pageNum, "items", len(items))
			all = append(all, items...)
		}

		next, ok := pager.FindNext(ctx)
		if !ok {
			logger.Info("no next control found", "pages", pageNum)
			return all
		}
		if next.Disabled() {
			logger.Info("next control disabled", "pages", pageNum)
			return all
		}

		if err := next.Activate(ctx); err != nil {
			logger.Warn("failed to activate next control", "page", pageNum, "error", err)
			return all
		}

		if !pager.Settle(ctx) {
			logger.Warn("page did not settle after pagination", "page", pageNum)
			return all
		}
	}

	logger.Info("page ceiling reached", "max_pages", maxPages)
	return all
}
