package scraper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TharukaVishwajith/playwright-crawler/internal/config"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Paths: config.PathsConfig{
			DataDir:      dir,
			ListingsFile: filepath.Join(dir, "listings.json"),
			DetailsFile:  filepath.Join(dir, "details.json"),
		},
	}
	return NewService(cfg, nil, nil)
}

func TestRunListingsFailsOnCancelledContext(t *testing.T) {
	svc := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RunListings(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunDetailsFailsOnCancelledContext(t *testing.T) {
	svc := newTestService(t)

	content := `[{"product_name":"Test Laptop","url":"https://example.com/p/1"}]`
	require.NoError(t, os.WriteFile(svc.cfg.Paths.ListingsFile, []byte(content), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RunDetails(ctx, DetailsOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunDetailsFailsWithoutListingsFile(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.RunDetails(context.Background(), DetailsOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run the listing phase first")
}
