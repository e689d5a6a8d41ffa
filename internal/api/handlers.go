package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/TharukaVishwajith/playwright-crawler/internal/config"
	"github.com/TharukaVishwajith/playwright-crawler/internal/database"
	"github.com/TharukaVishwajith/playwright-crawler/internal/jobs"
	"github.com/TharukaVishwajith/playwright-crawler/internal/storage"
)

type Handlers struct {
	cfg    *config.Config
	jobs   *jobs.Manager
	db     *database.DB
	logger *slog.Logger
}

// NewHandlers wires the API surface. db may be nil when no Postgres
// sink is configured; stats then cover jobs only.
func NewHandlers(cfg *config.Config, jobs *jobs.Manager, db *database.DB, logger *slog.Logger) *Handlers {
	return &Handlers{
		cfg:    cfg,
		jobs:   jobs,
		db:     db,
		logger: logger,
	}
}

// CreateJobRequest represents a new crawl job request
type CreateJobRequest struct {
	Phase      string `json:"phase"`
	Concurrent bool   `json:"concurrent"`
	Tabs       int    `json:"tabs"`
	Limit      int    `json:"limit"`
}

// CreateJobResponse represents the job creation response
type CreateJobResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CreateJob handles new crawl job creation
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Phase == "" {
		req.Phase = jobs.PhaseAll
	}

	job, err := h.jobs.CreateJob(req.Phase, req.Concurrent, req.Tabs, req.Limit)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, CreateJobResponse{
		JobID:   job.ID,
		Status:  job.Status,
		Message: "Job created successfully",
	})
}

// GetJob handles job status retrieval
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		h.respondError(w, http.StatusBadRequest, "job ID is required")
		return
	}

	job := h.jobs.GetJob(jobID)
	if job == nil {
		h.respondError(w, http.StatusNotFound, "job not found")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

// ListJobs handles listing all jobs
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.jobs.ListJobs())
}

// GetListings serves the most recent listings file
func (h *Handlers) GetListings(w http.ResponseWriter, r *http.Request) {
	listings, err := storage.LoadListings(h.cfg.Paths.ListingsFile)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "no listings available, run the listing phase first")
		return
	}

	h.respondJSON(w, http.StatusOK, listings)
}

// GetDetails serves the most recent details file
func (h *Handlers) GetDetails(w http.ResponseWriter, r *http.Request) {
	details, err := storage.LoadDetails(h.cfg.Paths.DetailsFile)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "no details available, run the detail phase first")
		return
	}

	h.respondJSON(w, http.StatusOK, details)
}

// StatsResponse combines the job history with the product counts from
// the database sink, when one is configured.
type StatsResponse struct {
	Jobs     jobs.Stats     `json:"jobs"`
	Products *ProductCounts `json:"products,omitempty"`
}

type ProductCounts struct {
	Total       int `json:"total"`
	WithDetails int `json:"with_details"`
}

// GetStats handles statistics retrieval
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{Jobs: h.jobs.GetStats()}

	if h.db != nil {
		total, withDetails, err := h.db.CountProducts(r.Context())
		if err != nil {
			h.logger.Warn("failed to count products", "error", err)
		} else {
			resp.Products = &ProductCounts{Total: total, WithDetails: withDetails}
		}
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// Health handles liveness checks
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
