// Package middleware provides HTTP middleware for the notes service.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityConfig holds configuration for the CORS/security middleware.
type SecurityConfig struct {
	// AllowedOrigins is the list of origins permitted to call the API
	// from a browser context.
	AllowedOrigins []string
	AllowedMethods string
	AllowedHeaders string
}

// Security returns middleware that sets CORS response headers for
// allowed origins and answers preflight requests. Requests without an
// Origin header (non-browser clients) pass through untouched.
func Security(config SecurityConfig) gin.HandlerFunc {
	// Build a set of allowed origins for O(1) lookup
	allowedSet := make(map[string]bool)
	for _, origin := range config.AllowedOrigins {
		// Normalize: remove trailing slash, lowercase
		normalized := strings.TrimSuffix(strings.ToLower(origin), "/")
		allowedSet[normalized] = true
	}

	methods := config.AllowedMethods
	if methods == "" {
		methods = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
	}
	headers := config.AllowedHeaders
	if headers == "" {
		headers = "Content-Type,Authorization"
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if !isAllowedOrigin(origin, allowedSet) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": "origin not allowed",
				})
				return
			}
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// isAllowedOrigin checks if the given origin is in the allowed set.
func isAllowedOrigin(origin string, allowedSet map[string]bool) bool {
	normalized := strings.TrimSuffix(strings.ToLower(origin), "/")
	return allowedSet[normalized]
}
