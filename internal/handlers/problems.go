package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"statree-backend/internal/models"
)

type problemService interface {
	Detail(ctx context.Context, slug string) (*models.ProblemDetail, error)
	Solved(ctx context.Context, username string) ([]string, error)
}

type catalogTotaler interface {
	Total(ctx context.Context) (int, error)
}

type ProblemHandler struct {
	problems problemService
	catalog  catalogTotaler
}

func NewProblemHandler(problems problemService, catalog catalogTotaler) *ProblemHandler {
	return &ProblemHandler{problems: problems, catalog: catalog}
}

func (h *ProblemHandler) Detail(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	detail, err := h.problems.Detail(r.Context(), slug)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *ProblemHandler) Total(w http.ResponseWriter, r *http.Request) {
	total, err := h.catalog.Total(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total": total})
}

func (h *ProblemHandler) Solved(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	slugs, err := h.problems.Solved(r.Context(), username)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username": username,
		"slugs":    slugs,
		"count":    len(slugs),
	})
}
