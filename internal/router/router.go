package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"statree-backend/internal/handlers"
	"statree-backend/internal/middleware"
	"statree-backend/internal/observability"
	"statree-backend/internal/websocket"
)

type Handlers struct {
	Catalog  *handlers.CatalogHandler
	Problems *handlers.ProblemHandler
	Daily    *handlers.DailyHandler
	Contests *handlers.ContestHandler
	Profile  *handlers.ProfileHandler
	Settings *handlers.SettingsHandler
	Jobs     *handlers.JobHandler
	Health   *handlers.HealthHandler
	Updates  *websocket.Hub
}

func New(h Handlers, limiter *middleware.RateLimiter, frontendURL string) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	r.Get("/health", h.Health.Health)
	r.Handle("/metrics", observability.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limiter.Middleware)

		// ──── Catalog Routes ────
		r.Route("/catalog/sessions", func(r chi.Router) {
			r.Post("/", h.Catalog.Create)
			r.Get("/{id}", h.Catalog.Get)
			r.Put("/{id}/query", h.Catalog.SetQuery)
			r.Post("/{id}/next", h.Catalog.Next)
			r.Post("/{id}/refresh", h.Catalog.Refresh)
			r.Delete("/{id}", h.Catalog.Delete)
		})

		// ──── Problem Routes ────
		r.Route("/problems", func(r chi.Router) {
			r.Get("/total", h.Problems.Total)
			r.Get("/{slug}", h.Problems.Detail)
		})
		r.Get("/solved/{username}", h.Problems.Solved)
		r.Get("/daily", h.Daily.Today)
		r.Get("/contests", h.Contests.Overview)

		// ──── Profile Routes ────
		r.Route("/profile", func(r chi.Router) {
			r.Get("/", h.Profile.Stored)
			r.Get("/{username}", h.Profile.ByUsername)
		})

		// ──── Settings Routes ────
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.Settings.Get)
			r.Get("/username", h.Settings.GetUsername)
			r.Put("/username", h.Settings.SetUsername)
		})
		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", h.Settings.ListBookmarks)
			r.Post("/{slug}", h.Settings.AddBookmark)
			r.Put("/{slug}", h.Settings.ToggleBookmark)
			r.Delete("/{slug}", h.Settings.RemoveBookmark)
		})

		// ──── Job Routes ────
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/catalog-sync", h.Jobs.CatalogSync)
			r.Post("/prefetch/{slug}", h.Jobs.Prefetch)
			r.Get("/{id}", h.Jobs.GetJob)
		})

		// ──── WebSocket ────
		r.Get("/ws", h.Updates.HandleWebSocket)
	})

	return r
}
