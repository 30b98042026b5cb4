// Package main is the entry point for the notes service.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	_ "github.com/GunarsK-portfolio/notes-service/docs"
	"github.com/GunarsK-portfolio/notes-service/internal/cache"
	"github.com/GunarsK-portfolio/notes-service/internal/config"
	"github.com/GunarsK-portfolio/notes-service/internal/database"
	"github.com/GunarsK-portfolio/notes-service/internal/handlers"
	"github.com/GunarsK-portfolio/notes-service/internal/metrics"
	"github.com/GunarsK-portfolio/notes-service/internal/repository"
	"github.com/GunarsK-portfolio/notes-service/internal/routes"
	"github.com/GunarsK-portfolio/notes-service/internal/service"
	"github.com/GunarsK-portfolio/notes-service/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// @title Notes Service API
// @version 1.0
// @description Multi-tenant notes and task management API with JWT authentication and Redis caching
// @host localhost:8085
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize Redis
	redisClient := redis.NewClient(cfg)

	// Metrics and cache
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	cacheService := cache.NewService(redisClient, logger, collector)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	// Initialize services
	jwtService := service.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	if jwtService == nil {
		log.Fatal("JWT secret must be at least 32 bytes")
	}
	authService := service.NewAuthService(userRepo, jwtService, logger)
	noteService := service.NewNoteService(noteRepo, cacheService, logger)

	// Initialize handlers
	h := routes.Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		Note:   handlers.NewNoteHandler(noteService),
		Cache:  handlers.NewCacheHandler(cacheService),
		Health: handlers.NewHealthHandler(db, cacheService),
	}

	// Setup router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// Setup routes
	routes.Setup(router, h, authService, cfg, logger, collector)

	// Start server
	logger.Info("starting notes service", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(fmt.Sprintf(":%s", cfg.Port)); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
