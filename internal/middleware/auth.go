package middleware

import (
	"net/http"
	"strings"

	"github.com/GunarsK-portfolio/notes-service/internal/models"
	"github.com/GunarsK-portfolio/notes-service/internal/service"
	"github.com/gin-gonic/gin"
)

// userContextKey is the gin context key under which the authenticated
// user is stored.
const userContextKey = "auth_user"

// Auth returns middleware that authenticates the bearer token and
// stores the resolved user in the request context. The user record is
// re-read from storage on every request, so role changes and disabled
// accounts take effect immediately.
func Auth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authorization header is missing or malformed",
			})
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "invalid or expired token",
			})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin returns middleware that rejects non-admin users before
// the handler runs. It must be installed after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authentication required",
			})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "admin role required",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser retrieves the authenticated user set by Auth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
