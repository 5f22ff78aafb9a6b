package handlers

import (
	"context"
	"net/http"
	"time"

	"statree-backend/internal/models"
)

type dailyService interface {
	Today(ctx context.Context) (*models.DailyChallenge, error)
}

type contestService interface {
	Overview(ctx context.Context, username string, now time.Time) (*models.ContestOverview, error)
}

type usernameReader interface {
	GetUsername(ctx context.Context) (string, error)
}

type DailyHandler struct {
	daily dailyService
}

func NewDailyHandler(daily dailyService) *DailyHandler {
	return &DailyHandler{daily: daily}
}

func (h *DailyHandler) Today(w http.ResponseWriter, r *http.Request) {
	daily, err := h.daily.Today(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, daily)
}

type ContestHandler struct {
	contests contestService
	settings usernameReader
	now      func() time.Time
}

func NewContestHandler(contests contestService, settings usernameReader) *ContestHandler {
	return &ContestHandler{contests: contests, settings: settings, now: time.Now}
}

// Overview lists upcoming contests, plus the stored user's contest history
// when a username is set.
func (h *ContestHandler) Overview(w http.ResponseWriter, r *http.Request) {
	username, err := h.settings.GetUsername(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load settings", r))
		return
	}

	overview, err := h.contests.Overview(r.Context(), username, h.now())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
