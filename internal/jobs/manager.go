package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TharukaVishwajith/playwright-crawler/internal/scraper"
)

const (
	PhaseListings = "listings"
	PhaseDetails  = "details"
	PhaseAll      = "all"

	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Runner is the crawl surface the manager drives. *scraper.Service
// satisfies it; tests substitute a fake.
type Runner interface {
	RunListings(ctx context.Context) (int, error)
	RunDetails(ctx context.Context, opts scraper.DetailsOptions) (int, error)
}

// Job represents one queued crawl run.
type Job struct {
	ID           string     `json:"id"`
	Phase        string     `json:"phase"`
	Concurrent   bool       `json:"concurrent"`
	Tabs         int        `json:"tabs"`
	Limit        int        `json:"limit,omitempty"`
	Status       string     `json:"status"`
	ProductCount int        `json:"product_count"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// Stats summarizes the manager's job history.
type Stats struct {
	TotalJobs     int     `json:"total_jobs"`
	PendingJobs   int     `json:"pending_jobs"`
	RunningJobs   int     `json:"running_jobs"`
	CompletedJobs int     `json:"completed_jobs"`
	FailedJobs    int     `json:"failed_jobs"`
	SuccessRate   float64 `json:"success_rate"`
}

// Manager queues crawl jobs and runs them one at a time. The browser
// session is exclusive, so there is exactly one worker; jobs are kept
// in memory and lost on restart.
type Manager struct {
	runner Runner
	logger *slog.Logger

	mu    sync.Mutex
	jobs  map[string]*Job
	queue chan string
}

func NewManager(runner Runner, logger *slog.Logger) *Manager {
	return &Manager{
		runner: runner,
		logger: logger.With("component", "job_manager"),
		jobs:   make(map[string]*Job),
		queue:  make(chan string, 64),
	}
}

// CreateJob enqueues a new crawl run.
func (m *Manager) CreateJob(phase string, concurrent bool, tabs, limit int) (*Job, error) {
	switch phase {
	case PhaseListings, PhaseDetails, PhaseAll:
	default:
		return nil, fmt.Errorf("unknown phase %q", phase)
	}

	job := &Job{
		ID:         uuid.New().String(),
		Phase:      phase,
		Concurrent: concurrent,
		Tabs:       tabs,
		Limit:      limit,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	select {
	case m.queue <- job.ID:
	default:
		m.mu.Lock()
		delete(m.jobs, job.ID)
		m.mu.Unlock()
		return nil, fmt.Errorf("job queue is full")
	}

	m.logger.Info("job created", "id", job.ID, "phase", phase)
	return job, nil
}

// GetJob returns a copy of the job, or nil if unknown.
func (m *Manager) GetJob(jobID string) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil
	}
	copy := *job
	return &copy
}

// ListJobs returns all jobs, newest first.
func (m *Manager) ListJobs() []*Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		copy := *job
		jobs = append(jobs, &copy)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

// GetStats aggregates counts over the job history.
func (m *Manager) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := Stats{TotalJobs: len(m.jobs)}
	for _, job := range m.jobs {
		switch job.Status {
		case StatusPending:
			stats.PendingJobs++
		case StatusRunning:
			stats.RunningJobs++
		case StatusCompleted:
			stats.CompletedJobs++
		case StatusFailed:
			stats.FailedJobs++
		}
	}
	finished := stats.CompletedJobs + stats.FailedJobs
	if finished > 0 {
		stats.SuccessRate = float64(stats.CompletedJobs) / float64(finished)
	}
	return stats
}

func (m *Manager) update(jobID string, fn func(*Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		fn(job)
	}
}
