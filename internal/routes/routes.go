// Package routes defines HTTP routes for the notes service.
package routes

import (
	"log/slog"

	"github.com/GunarsK-portfolio/notes-service/docs"
	"github.com/GunarsK-portfolio/notes-service/internal/config"
	"github.com/GunarsK-portfolio/notes-service/internal/handlers"
	"github.com/GunarsK-portfolio/notes-service/internal/metrics"
	"github.com/GunarsK-portfolio/notes-service/internal/middleware"
	"github.com/GunarsK-portfolio/notes-service/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers bundles the HTTP handlers wired into the router.
type Handlers struct {
	Auth   *handlers.AuthHandler
	Note   *handlers.NoteHandler
	Cache  *handlers.CacheHandler
	Health *handlers.HealthHandler
}

// Setup configures all HTTP routes for the application.
func Setup(router *gin.Engine, h Handlers, authService service.AuthService, cfg *config.Config, logger *slog.Logger, collector *metrics.Collector) {
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.Security(middleware.SecurityConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowedHeaders: "Content-Type,Authorization,X-Request-ID",
	}))

	// Health check
	router.GET("/health", h.Health.Check)
	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", middleware.Auth(authService), h.Auth.Me)
	}

	// Note routes
	notes := router.Group("/api/v1/notes")
	notes.Use(middleware.Auth(authService))
	{
		notes.POST("", h.Note.Create)
		notes.GET("", h.Note.List)
		notes.GET("/all", h.Note.GetAll)
		notes.GET("/search", h.Note.Search)
		notes.GET("/date-range", h.Note.DateRange)
		notes.GET("/categories", h.Note.Categories)
		notes.GET("/status/:status", h.Note.ListByStatus)
		notes.GET("/priority/:priority", h.Note.ListByPriority)
		notes.GET("/category/:category", h.Note.ListByCategory)
		notes.GET("/stats/count", h.Note.CountTotal)
		notes.GET("/stats/count/:status", h.Note.CountByStatus)
		notes.GET("/:id", h.Note.GetByID)
		notes.PUT("/:id", h.Note.Update)
		notes.DELETE("/:id", h.Note.Delete)
		notes.PATCH("/:id/complete", h.Note.Complete)
		notes.PATCH("/:id/archive", h.Note.Archive)
		notes.PATCH("/:id/activate", h.Note.Activate)

		admin := notes.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("", h.Note.ListAdmin)
			admin.GET("/stats/priority/:priority", h.Note.CountByPriorityAdmin)
			admin.GET("/:id", h.Note.GetByIDAdmin)
			admin.DELETE("/:id", h.Note.DeleteAdmin)
		}
	}

	// Cache inspection and administration
	cacheGroup := router.Group("/api/v1/cache")
	cacheGroup.Use(middleware.Auth(authService))
	{
		cacheGroup.GET("/health", h.Cache.Health)

		cacheAdmin := cacheGroup.Group("")
		cacheAdmin.Use(middleware.RequireAdmin())
		{
			cacheAdmin.GET("/key/:key", h.Cache.GetKey)
			cacheAdmin.DELETE("/key/:key", h.Cache.DeleteKey)
			cacheAdmin.GET("/key/:key/ttl", h.Cache.KeyTTL)
			cacheAdmin.POST("/clear", h.Cache.Clear)
		}
	}

	// Swagger documentation (only if SWAGGER_HOST is configured)
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}
