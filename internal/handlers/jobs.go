package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"statree-backend/internal/models"
)

type jobEnqueuer interface {
	Enqueue(ctx context.Context, jobType, reference string) (*models.Job, error)
}

type jobReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

type JobHandler struct {
	queue jobEnqueuer
	jobs  jobReader
}

func NewJobHandler(queue jobEnqueuer, jobs jobReader) *JobHandler {
	return &JobHandler{queue: queue, jobs: jobs}
}

func (h *JobHandler) CatalogSync(w http.ResponseWriter, r *http.Request) {
	job, err := h.queue.Enqueue(r.Context(), models.JobCatalogSync, "")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to queue catalog sync", r))
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (h *JobHandler) Prefetch(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"slug": "is required"}, r))
		return
	}
	job, err := h.queue.Enqueue(r.Context(), models.JobDetailPrefetch, slug)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to queue prefetch", r))
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid job ID", r))
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Job not found", r))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load job", r))
		return
	}
	writeJSON(w, http.StatusOK, job)
}
