package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TharukaVishwajith/playwright-crawler/internal/scraper"
)

type fakeRunner struct {
	listingCount int
	detailCount  int
	listingErr   error
	detailErr    error
	detailOpts   []scraper.DetailsOptions
}

func (f *fakeRunner) RunListings(ctx context.Context) (int, error) {
	return f.listingCount, f.listingErr
}

func (f *fakeRunner) RunDetails(ctx context.Context, opts scraper.DetailsOptions) (int, error) {
	f.detailOpts = append(f.detailOpts, opts)
	return f.detailCount, f.detailErr
}

func waitForStatus(t *testing.T, m *Manager, jobID, status string) *Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job := m.GetJob(jobID)
		if job != nil && job.Status == status {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", jobID, status)
	return nil
}

func TestCreateJobRejectsUnknownPhase(t *testing.T) {
	m := NewManager(&fakeRunner{}, slog.Default())

	_, err := m.CreateJob("reviews", false, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown phase")
}

func TestWorkerCompletesListingJob(t *testing.T) {
	runner := &fakeRunner{listingCount: 42}
	m := NewManager(runner, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.StartWorker(ctx)

	job, err := m.CreateJob(PhaseListings, false, 0, 0)
	require.NoError(t, err)

	done := waitForStatus(t, m, job.ID, StatusCompleted)
	assert.Equal(t, 42, done.ProductCount)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.CompletedAt)
	assert.Empty(t, done.Error)
}

func TestWorkerRecordsFailure(t *testing.T) {
	runner := &fakeRunner{listingErr: assert.AnError}
	m := NewManager(runner, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.StartWorker(ctx)

	job, err := m.CreateJob(PhaseListings, false, 0, 0)
	require.NoError(t, err)

	failed := waitForStatus(t, m, job.ID, StatusFailed)
	assert.NotEmpty(t, failed.Error)
}

func TestWorkerForwardsDetailOptions(t *testing.T) {
	runner := &fakeRunner{detailCount: 5}
	m := NewManager(runner, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.StartWorker(ctx)

	job, err := m.CreateJob(PhaseDetails, true, 4, 10)
	require.NoError(t, err)

	waitForStatus(t, m, job.ID, StatusCompleted)
	require.Len(t, runner.detailOpts, 1)
	assert.True(t, runner.detailOpts[0].Concurrent)
	assert.Equal(t, 4, runner.detailOpts[0].Tabs)
	assert.Equal(t, 10, runner.detailOpts[0].Limit)
}

func TestStatsAggregateJobHistory(t *testing.T) {
	runner := &fakeRunner{listingCount: 1}
	m := NewManager(runner, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.StartWorker(ctx)

	first, err := m.CreateJob(PhaseListings, false, 0, 0)
	require.NoError(t, err)
	waitForStatus(t, m, first.ID, StatusCompleted)

	runner.listingErr = assert.AnError
	second, err := m.CreateJob(PhaseListings, false, 0, 0)
	require.NoError(t, err)
	waitForStatus(t, m, second.ID, StatusFailed)

	stats := m.GetStats()
	assert.Equal(t, 2, stats.TotalJobs)
	assert.Equal(t, 1, stats.CompletedJobs)
	assert.Equal(t, 1, stats.FailedJobs)
	assert.InDelta(t, 0.5, stats.SuccessRate, 0.001)
}
