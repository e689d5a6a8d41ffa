package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TharukaVishwajith/playwright-crawler/internal/config"
	"github.com/TharukaVishwajith/playwright-crawler/internal/jobs"
	"github.com/TharukaVishwajith/playwright-crawler/internal/scraper"
)

type stubRunner struct{}

func (stubRunner) RunListings(ctx context.Context) (int, error) { return 0, nil }
func (stubRunner) RunDetails(ctx context.Context, opts scraper.DetailsOptions) (int, error) {
	return 0, nil
}

func newTestHandlers(t *testing.T) (*Handlers, *chi.Mux) {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Paths: config.PathsConfig{
			ListingsFile: filepath.Join(dir, "listings.json"),
			DetailsFile:  filepath.Join(dir, "details.json"),
		},
	}

	manager := jobs.NewManager(stubRunner{}, slog.Default())
	h := NewHandlers(cfg, manager, nil, slog.Default())

	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Post("/api/v1/jobs", h.CreateJob)
	r.Get("/api/v1/jobs", h.ListJobs)
	r.Get("/api/v1/jobs/{jobID}", h.GetJob)
	r.Get("/api/v1/listings", h.GetListings)
	r.Get("/api/v1/stats", h.GetStats)

	return h, r
}

func TestHealthEndpoint(t *testing.T) {
	_, r := newTestHandlers(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestCreateJobValidatesPhase(t *testing.T) {
	_, r := newTestHandlers(t)

	body := strings.NewReader(`{"phase":"bogus"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/jobs", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown phase")
}

func TestCreateAndFetchJob(t *testing.T) {
	_, r := newTestHandlers(t)

	body := strings.NewReader(`{"phase":"listings"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/jobs", body))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"job_id"`)

	listRec := httptest.NewRecorder()
	r.ServeHTTP(listRec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil))
	assert.Equal(t, http.StatusOK, listRec.Code)
	assert.Contains(t, listRec.Body.String(), `"phase":"listings"`)
}

func TestGetJobNotFound(t *testing.T) {
	_, r := newTestHandlers(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/does-not-exist", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetListingsBeforeCrawl(t *testing.T) {
	_, r := newTestHandlers(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "run the listing phase first")
}

func TestGetStatsWithoutDatabase(t *testing.T) {
	_, r := newTestHandlers(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"jobs"`)
	// No database sink configured, so no product counts are reported.
	assert.NotContains(t, rec.Body.String(), `"products"`)
}

func TestGetListingsServesFile(t *testing.T) {
	h, r := newTestHandlers(t)

	content := `[{"product_name":"Test Laptop","price":"$999.99","rating":"4.5","review_count":"12","url":"https://example.com/p/1"}]`
	require.NoError(t, os.WriteFile(h.cfg.Paths.ListingsFile, []byte(content), 0644))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Test Laptop")
}
