package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var fromGin string
	var fromRequestCtx string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		fromGin = RequestIDFromContext(c)
		fromRequestCtx, _ = c.Request.Context().Value("requestID").(string)
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if fromGin == "" {
		t.Fatalf("expected a generated request id in the gin context")
	}
	if fromRequestCtx != fromGin {
		t.Fatalf("expected request context id %q to match gin context id %q", fromRequestCtx, fromGin)
	}
	if got := w.Header().Get("X-Request-ID"); got != fromGin {
		t.Fatalf("expected response header %q, got %q", fromGin, got)
	}
}

func TestRequestIDKeepsCallerValue(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var fromGin string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		fromGin = RequestIDFromContext(c)
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "caller-supplied-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if fromGin != "caller-supplied-id" {
		t.Fatalf("expected caller supplied id to be kept, got %q", fromGin)
	}
	if got := w.Header().Get("X-Request-ID"); got != "caller-supplied-id" {
		t.Fatalf("expected response header to echo caller id, got %q", got)
	}
}
