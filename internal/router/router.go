package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"algobites-backend/internal/handlers"
	"algobites-backend/internal/middleware"
	"algobites-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	catalogHandler *handlers.CatalogHandler,
	progressHandler *handlers.ProgressHandler,
	leetcodeHandler *handlers.LeetCodeHandler,
	chatHandler *handlers.ChatHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	// The public relays throttle aggressively, keep our own callers honest
	leetcodeLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/google", authHandler.GoogleLogin)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Catalog Routes ────
		r.Route("/catalog", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", catalogHandler.List)
		})

		// ──── Progress Routes ────
		r.Route("/progress", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", progressHandler.Get)
			r.Post("/watched/{videoID}/toggle", progressHandler.ToggleWatched)
			r.Post("/favorites/{videoID}/toggle", progressHandler.ToggleFavorite)
			r.Post("/queue/{videoID}/toggle", progressHandler.ToggleQueue)
			r.Put("/notes/{videoID}", progressHandler.UpdateNote)
		})

		// ──── LeetCode Routes ────
		r.Route("/leetcode", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(leetcodeLimiter.Middleware)
			r.Put("/username", leetcodeHandler.LinkUsername)
			r.Get("/profile", leetcodeHandler.GetProfile)
		})

		// ──── Chat Routes ────
		r.Route("/chat", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", chatHandler.Ask)
		})

		// ──── User Routes ────
		r.Route("/user", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", userHandler.GetMe)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
