package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestTimeout_FastHandlerPassesThrough(t *testing.T) {
	r := gin.New()
	r.GET("/fast", Timeout(100*time.Millisecond), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/fast", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestTimeout_ExpiredContextYields503(t *testing.T) {
	r := gin.New()
	r.GET("/slow", Timeout(20*time.Millisecond), func(c *gin.Context) {
		// A context-aware handler: wait for the deadline, write nothing.
		<-c.Request.Context().Done()
	})

	req := httptest.NewRequest(http.MethodGet, "/slow", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestTimeout_ResponseAlreadyWrittenIsKept(t *testing.T) {
	r := gin.New()
	r.GET("/late", Timeout(20*time.Millisecond), func(c *gin.Context) {
		<-c.Request.Context().Done()
		// The handler noticed the deadline itself and answered.
		c.JSON(http.StatusOK, gin.H{"partial": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/late", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want the handler's own 200", w.Code)
	}
}

func TestTimeout_DeadlineVisibleDownstream(t *testing.T) {
	var hasDeadline bool
	r := gin.New()
	r.GET("/check", Timeout(time.Second), func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/check", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if !hasDeadline {
		t.Error("request context carries no deadline downstream")
	}
}
