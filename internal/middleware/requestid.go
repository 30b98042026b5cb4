package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the request id.
const RequestIDHeader = "X-Request-ID"

// requestIDContextKey is the gin context key for the request id.
const requestIDContextKey = "request_id"

// RequestID returns middleware that assigns each request an id. An id
// supplied by the client is kept; otherwise a new one is generated. The
// id is echoed in the response headers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDContextKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID retrieves the request id assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}
