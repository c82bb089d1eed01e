package api

import (
	"net/http"

	"github.com/dom/tickify/internal/api/handlers"
	"github.com/dom/tickify/internal/api/middleware"
	"github.com/dom/tickify/internal/config"
	"github.com/dom/tickify/internal/events"
	"github.com/dom/tickify/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, hub *events.Hub, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(services.Account, logger)
	checklistHandler := handlers.NewChecklistHandler(services.Checklist, logger)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Account, cfg.AllowedOrigins, logger)
	requireAuth := middleware.Auth(services.Account, logger)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public account routes
		r.Post("/accounts:signup", accountHandler.Signup)
		r.Post("/accounts:signin", accountHandler.Signin)
		r.Post("/accounts:switch", accountHandler.Switch)
		r.Post("/accounts:verify", accountHandler.Verify)
		r.Get("/accounts:availability", accountHandler.Availability)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/accounts:change-password", accountHandler.ChangePassword)
			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", accountHandler.List)
				r.Post("/", accountHandler.Create)
				r.Get("/me", accountHandler.Me)
				r.Patch("/{id}", accountHandler.Update)
				r.Delete("/{id}", accountHandler.Delete)
			})

			r.Get("/checklist-items:stats", checklistHandler.Stats)
			r.Route("/checklist-items", func(r chi.Router) {
				r.Get("/", checklistHandler.List)
				r.Post("/", checklistHandler.Add)
				r.Put("/{id}", checklistHandler.Update)
				r.Delete("/{id}", checklistHandler.Delete)
			})
		})

		// Live change feed; the token travels in the query string
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
