package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the request's correlation ID, both
// inbound (reused if present) and outbound (always set).
const RequestIDHeader = "X-Request-ID"

const requestIDContextKey = "request_id"

// RequestIDMiddleware assigns a UUID to every request that doesn't already
// carry one, storing it in the Gin context and echoing it back on the
// response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDContextKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID reads the request ID stashed by RequestIDMiddleware, returning
// an empty string if the middleware never ran.
func GetRequestID(c *gin.Context) string {
	if v, exists := c.Get(requestIDContextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
