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

	"linkmark-backend/internal/config"
	"linkmark-backend/internal/database"
	"linkmark-backend/internal/handlers"
	"linkmark-backend/internal/middleware"
	"linkmark-backend/internal/repository"
	"linkmark-backend/internal/router"
	"linkmark-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting Linkmark Backend...")

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

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	contentRepo := repository.NewContentRepo(pool)
	tagRepo := repository.NewTagRepo(pool)
	articleRepo := repository.NewArticleRepo(pool)

	// ──── Step 5: Initialize YouTube Data API Client ────
	ctx := context.Background()
	videoService, err := services.NewVideoService(ctx, cfg.YouTubeAPIKey, redisClient)
	if err != nil {
		log.Fatalf("✗ YouTube client initialization failed: %v", err)
	}
	log.Println("✓ YouTube Data API client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	scrapeTimeout := time.Duration(cfg.ScrapeTimeoutSeconds) * time.Second
	resolver := services.NewURLResolver(scrapeTimeout, cfg.MaxRedirectHops)
	scraper := services.NewPageScraper(scrapeTimeout, resolver)
	contentService := services.NewContentService(pool, userRepo, contentRepo, tagRepo, scraper, videoService)
	tagService := services.NewTagService(pool, tagRepo, contentRepo)
	articleService := services.NewArticleService(pool, articleRepo, userRepo, tagRepo, contentRepo, contentService)
	userService := services.NewUserService(userRepo, jwtAuth)

	// ──── Initialize Handlers ────
	userHandler := handlers.NewUserHandler(userService)
	contentHandler := handlers.NewContentHandler(contentService)
	tagHandler := handlers.NewTagHandler(tagService)
	articleHandler := handlers.NewArticleHandler(articleService)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		userHandler,
		contentHandler,
		tagHandler,
		articleHandler,
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("✓ Linkmark Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
