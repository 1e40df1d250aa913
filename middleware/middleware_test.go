package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterConsumesBurstThenRefills(t *testing.T) {
	rl := NewRateLimiter(1, 3)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1", now) {
			t.Fatalf("request %d within burst was rejected", i+1)
		}
	}
	if rl.allow("10.0.0.1", now) {
		t.Error("request beyond burst was allowed")
	}

	// One token per second: two seconds later two requests pass.
	later := now.Add(2 * time.Second)
	if !rl.allow("10.0.0.1", later) {
		t.Error("request after refill was rejected")
	}
	if !rl.allow("10.0.0.1", later) {
		t.Error("second refilled request was rejected")
	}
	if rl.allow("10.0.0.1", later) {
		t.Error("third request exceeded the refilled tokens")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()

	if !rl.allow("10.0.0.1", now) {
		t.Fatal("first client rejected")
	}
	if !rl.allow("10.0.0.2", now) {
		t.Error("second client shares the first client's bucket")
	}
}

func TestRateLimiterSweepsStaleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()

	rl.allow("10.0.0.1", now)
	rl.allow("10.0.0.1", now.Add(2*staleAfter))

	if len(rl.buckets) != 1 {
		t.Errorf("stale buckets remain: %d, want 1", len(rl.buckets))
	}
}

func TestRateLimitMiddlewareRejectsWith429(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(NewRateLimiter(0.001, 1).RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", second.Code)
	}
}

func TestRecoveryReturns500WithoutStack(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "boom") {
		t.Error("response leaks the panic value")
	}
}

func TestCORSAnswersPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORS())
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing Access-Control-Allow-Origin header")
	}
}
