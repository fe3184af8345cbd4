package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is the header carrying the per-request correlation ID.
const HeaderRequestID = "X-Request-ID"

// ContextKeyRequestID stores the request ID in the Gin context.
const ContextKeyRequestID = "request_id"

// RequestID returns a Gin middleware that assigns each request a UUID,
// honoring an inbound X-Request-ID when the caller already has one. The ID
// is echoed in the response header so client and server logs correlate.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}
