package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"algobites-backend/internal/config"
	"algobites-backend/internal/database"
	"algobites-backend/internal/handlers"
	"algobites-backend/internal/middleware"
	"algobites-backend/internal/repository"
	"algobites-backend/internal/router"
	"algobites-backend/internal/services"
	"algobites-backend/internal/websocket"
	"algobites-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting AlgoBites Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	progressRepo := repository.NewProgressRepo(pool)

	// ──── Step 5: Initialize YouTube Catalog Service ────
	ctx := context.Background()
	playlistService, err := services.NewPlaylistService(
		ctx,
		cfg.YouTubeAPIKey,
		cfg.PlaylistID,
		redisClients.Cache,
		time.Duration(cfg.CatalogCacheTTL)*time.Minute,
	)
	if err != nil {
		log.Fatalf("✗ YouTube client initialization failed: %v", err)
	}
	log.Println("✓ YouTube Data API client initialized")

	// ──── Step 6: Initialize Gemini Chat Service ────
	transcriptService := services.NewTranscriptService()
	chatService, err := services.NewChatService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs, transcriptService)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer chatService.Close()
	log.Println("✓ Gemini Flash client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, redisClients.Cache, jwtAuth, cfg.GoogleClientID)
	progressService := services.NewProgressService(progressRepo, redisClients.Cache)
	leetcodeService := services.NewLeetCodeService(cfg.LeetCodeRelays)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userRepo)
	catalogHandler := handlers.NewCatalogHandler(playlistService)
	progressHandler := handlers.NewProgressHandler(progressService, playlistService)
	leetcodeHandler := handlers.NewLeetCodeHandler(leetcodeService, progressService)
	chatHandler := handlers.NewChatHandler(chatService, playlistService)

	// ──── Step 7: Start Catalog Refresher ────
	refresher := worker.NewCatalogRefresher(playlistService, time.Duration(cfg.CatalogCacheTTL)*time.Minute)
	refresher.Start()
	log.Println("✓ Catalog refresher started")

	// ──── Step 8: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 9: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		userHandler,
		catalogHandler,
		progressHandler,
		leetcodeHandler,
		chatHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		refresher.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ AlgoBites Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
