package handlers

import (
	"context"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"

	"statree-backend/internal/models"
)

const maxUsernameLength = 64

type settingsStore interface {
	Get(ctx context.Context) (*models.Settings, error)
	GetUsername(ctx context.Context) (string, error)
	SetUsername(ctx context.Context, username string) error
	ListBookmarks(ctx context.Context) ([]string, error)
	AddBookmark(ctx context.Context, slug string) error
	RemoveBookmark(ctx context.Context, slug string) error
	ToggleBookmark(ctx context.Context, slug string) (bool, error)
}

type SettingsHandler struct {
	settings settingsStore
}

func NewSettingsHandler(settings settingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load settings", r))
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SettingsHandler) GetUsername(w http.ResponseWriter, r *http.Request) {
	username, err := h.settings.GetUsername(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load settings", r))
		return
	}
	writeJSON(w, http.StatusOK, models.SetUsernameRequest{Username: username})
}

// SetUsername stores the username. An empty value clears it.
func (h *SettingsHandler) SetUsername(w http.ResponseWriter, r *http.Request) {
	var req models.SetUsernameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	username := strings.TrimSpace(req.Username)
	if msg := validateUsername(username); msg != "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"username": msg}, r))
		return
	}

	if err := h.settings.SetUsername(r.Context(), username); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save username", r))
		return
	}
	writeJSON(w, http.StatusOK, models.SetUsernameRequest{Username: username})
}

func validateUsername(username string) string {
	if len(username) > maxUsernameLength {
		return "must be at most 64 characters"
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return "must not contain whitespace"
	}
	return ""
}

func (h *SettingsHandler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	slugs, err := h.settings.ListBookmarks(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load bookmarks", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bookmarks": slugs})
}

func (h *SettingsHandler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	slug, ok := bookmarkSlug(w, r)
	if !ok {
		return
	}
	if err := h.settings.AddBookmark(r.Context(), slug); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save bookmark", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"slug": slug, "bookmarked": true})
}

func (h *SettingsHandler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	slug, ok := bookmarkSlug(w, r)
	if !ok {
		return
	}
	if err := h.settings.RemoveBookmark(r.Context(), slug); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to remove bookmark", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"slug": slug, "bookmarked": false})
}

func (h *SettingsHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	slug, ok := bookmarkSlug(w, r)
	if !ok {
		return
	}
	bookmarked, err := h.settings.ToggleBookmark(r.Context(), slug)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to toggle bookmark", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"slug": slug, "bookmarked": bookmarked})
}

func bookmarkSlug(w http.ResponseWriter, r *http.Request) (string, bool) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"slug": "is required"}, r))
		return "", false
	}
	return slug, true
}
