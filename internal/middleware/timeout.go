package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout returns a Gin middleware that attaches a deadline to the request
// context. It runs the handler chain synchronously (no goroutine spawning),
// which keeps gin.Context access single-threaded and avoids goroutine leaks.
//
// How it works:
//   - Before c.Next(), the context is replaced with one that has a deadline.
//   - After c.Next() returns, if the context expired AND no response has been
//     written yet, a 503 is sent.
//
// Limitation: this cannot interrupt a handler that is blocked and never
// checks its context. All outbound adapter calls propagate the context and
// unblock when the deadline fires at the HTTP-client level, so in practice
// the inbound deadline also cancels the in-flight backend call.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		// Replace the request context so all downstream code sees the deadline.
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() != nil && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "request timed out",
			})
		}
	}
}
