package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/TharukaVishwajith/playwright-crawler/internal/scraper"
)

// StartWorker drains the queue until ctx is cancelled. Run it in its
// own goroutine; exactly one worker may run per manager.
func (m *Manager) StartWorker(ctx context.Context) {
	m.logger.Info("job worker started")

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("job worker stopping")
			return
		case jobID := <-m.queue:
			m.runJob(ctx, jobID)
		}
	}
}

func (m *Manager) runJob(ctx context.Context, jobID string) {
	job := m.GetJob(jobID)
	if job == nil {
		return
	}

	m.logger.Info("processing job", "id", jobID, "phase", job.Phase)

	now := time.Now()
	m.update(jobID, func(j *Job) {
		j.Status = StatusRunning
		j.StartedAt = &now
	})

	count, err := m.execute(ctx, job)

	done := time.Now()
	m.update(jobID, func(j *Job) {
		j.CompletedAt = &done
		j.ProductCount = count
		if err != nil {
			j.Status = StatusFailed
			j.Error = err.Error()
		} else {
			j.Status = StatusCompleted
		}
	})

	if err != nil {
		m.logger.Error("job failed", "id", jobID, "error", err)
		return
	}
	m.logger.Info("job completed", "id", jobID, "products", count)
}

func (m *Manager) execute(ctx context.Context, job *Job) (int, error) {
	opts := scraper.DetailsOptions{
		Concurrent: job.Concurrent,
		Tabs:       job.Tabs,
		Limit:      job.Limit,
	}

	switch job.Phase {
	case PhaseListings:
		return m.runner.RunListings(ctx)
	case PhaseDetails:
		return m.runner.RunDetails(ctx, opts)
	case PhaseAll:
		if _, err := m.runner.RunListings(ctx); err != nil {
			return 0, fmt.Errorf("listing phase failed: %w", err)
		}
		return m.runner.RunDetails(ctx, opts)
	default:
		return 0, fmt.Errorf("unknown phase %q", job.Phase)
	}
}
