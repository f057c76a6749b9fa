package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sprintduel/ladder-server/internal/api/handlers"
	"github.com/sprintduel/ladder-server/internal/api/middleware"
	"github.com/sprintduel/ladder-server/internal/config"
	"github.com/sprintduel/ladder-server/internal/repository"
	"github.com/sprintduel/ladder-server/internal/service"
	"github.com/sprintduel/ladder-server/internal/websocket"
)

func NewRouter(services *service.Services, hub *websocket.Hub, repos *repository.Repositories, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	progressionHandler := handlers.NewProgressionHandler(services.Progression, services.Prestige, services.Season, repos.Player)
	seasonHandler := handlers.NewSeasonHandler(services.Season, services.Reward, services.Leaderboard)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			// Progression routes
			r.Route("/progression", func(r chi.Router) {
				r.Get("/", progressionHandler.Get)
				r.Post("/trophies", progressionHandler.AddTrophies)
				r.Put("/trophies", progressionHandler.SetTrophies)
				r.Post("/prestige", progressionHandler.ExecutePrestige)
				r.Post("/sync", progressionHandler.Sync)
			})

			// Season routes
			r.Route("/season", func(r chi.Router) {
				r.Get("/", seasonHandler.Get)
				r.Get("/history", seasonHandler.History)
				r.Post("/{seasonId}/claim", seasonHandler.Claim)
				r.Get("/{seasonId}/leaderboard", seasonHandler.Leaderboard)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
