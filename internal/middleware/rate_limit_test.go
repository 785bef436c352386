package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", rl.Limit(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	r := newLimitedRouter(NewRateLimiter(1, 3))

	var last int
	for i := 0; i < 4; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		last = w.Code
		if i < 3 && last != http.StatusOK {
			t.Fatalf("request %d: got %d, want %d", i+1, last, http.StatusOK)
		}
	}

	if last != http.StatusTooManyRequests {
		t.Fatalf("fourth request: got %d, want %d", last, http.StatusTooManyRequests)
	}
}

func TestRateLimiterKeysByClientIP(t *testing.T) {
	r := newLimitedRouter(NewRateLimiter(1, 1))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(first, req)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(second, req)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("distinct clients should not share a bucket: got %d and %d", first.Code, second.Code)
	}
}
