package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"statree-backend/internal/catalog"
	"statree-backend/internal/models"
)

type CatalogHandler struct {
	sessions *catalog.Registry
}

func NewCatalogHandler(sessions *catalog.Registry) *CatalogHandler {
	return &CatalogHandler{sessions: sessions}
}

type catalogSessionResponse struct {
	ID    uuid.UUID     `json:"id"`
	State catalog.State `json:"state"`
}

type catalogPageResponse struct {
	Outcome catalog.Outcome `json:"outcome"`
	State   catalog.State   `json:"state"`
}

type catalogQueryRequest struct {
	Search     string  `json:"search"`
	Difficulty *string `json:"difficulty"`
	Tag        *string `json:"tag"`
}

func (req catalogQueryRequest) toQuery() (models.CatalogQuery, map[string]string) {
	fields := map[string]string{}
	q := models.CatalogQuery{SearchText: req.Search}
	if req.Difficulty != nil && strings.TrimSpace(*req.Difficulty) != "" {
		d := strings.TrimSpace(*req.Difficulty)
		if !models.ValidDifficulty(d) {
			fields["difficulty"] = "must be one of Easy, Medium, Hard"
		}
		q.Difficulty = &d
	}
	if req.Tag != nil && strings.TrimSpace(*req.Tag) != "" {
		t := strings.TrimSpace(*req.Tag)
		q.Tag = &t
	}
	return q, fields
}

// Create opens a new catalog session. An optional body sets the initial query.
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req catalogQueryRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	q, fields := req.toQuery()
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	id, c := h.sessions.Create()
	c.SetQuery(q)
	writeJSON(w, http.StatusCreated, catalogSessionResponse{ID: id, State: c.Snapshot()})
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, catalogSessionResponse{ID: id, State: c.Snapshot()})
}

func (h *CatalogHandler) SetQuery(w http.ResponseWriter, r *http.Request) {
	id, c, ok := h.session(w, r)
	if !ok {
		return
	}

	var req catalogQueryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	q, fields := req.toQuery()
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	c.SetQuery(q)
	writeJSON(w, http.StatusOK, catalogSessionResponse{ID: id, State: c.Snapshot()})
}

// Next loads the following page. With ?after=<slug> the page is only loaded
// once that row is close to the end of the accumulated records.
func (h *CatalogHandler) Next(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.session(w, r)
	if !ok {
		return
	}

	if after := r.URL.Query().Get("after"); after != "" && !c.ShouldLoadMore(after) {
		writeJSON(w, http.StatusOK, catalogPageResponse{Outcome: catalog.OutcomeSkipped, State: c.Snapshot()})
		return
	}

	outcome, err := c.RequestNextPage(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catalogPageResponse{Outcome: outcome, State: c.Snapshot()})
}

// Refresh drops the accumulated records and loads the first page again.
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.session(w, r)
	if !ok {
		return
	}

	c.Refresh()
	outcome, err := c.RequestNextPage(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catalogPageResponse{Outcome: outcome, State: c.Snapshot()})
}

func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}
	if !h.sessions.Delete(id) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Catalog session not found", r))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) session(w http.ResponseWriter, r *http.Request) (uuid.UUID, *catalog.Collection, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return uuid.Nil, nil, false
	}
	c, ok := h.sessions.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Catalog session not found", r))
		return uuid.Nil, nil, false
	}
	return id, c, true
}
