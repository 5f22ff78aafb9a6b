package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"statree-backend/internal/models"
)

type profileAggregator interface {
	Aggregate(ctx context.Context, username string) (*models.ProfileView, error)
	AggregateStored(ctx context.Context) (*models.ProfileView, error)
}

type ProfileHandler struct {
	profiles profileAggregator
}

func NewProfileHandler(profiles profileAggregator) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Stored builds the profile of the stored username. A username the platform
// no longer knows is cleared before the 404 is returned.
func (h *ProfileHandler) Stored(w http.ResponseWriter, r *http.Request) {
	view, err := h.profiles.AggregateStored(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ProfileHandler) ByUsername(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	view, err := h.profiles.Aggregate(r.Context(), username)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
