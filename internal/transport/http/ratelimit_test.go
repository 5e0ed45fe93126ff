package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njprem/Apartment_APP_BackEnd/internal/obs"
	"github.com/njprem/Apartment_APP_BackEnd/internal/ratelimit"
)

func newLimitedEcho(t *testing.T, cfg RateLimiterConfig, class ratelimit.RouteClass) (*echo.Echo, *time.Time) {
	t.Helper()
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	gov := ratelimit.New(nil, ratelimit.WithClock(func() time.Time { return now }))
	limiter := NewRateLimiter(gov, cfg)

	e := echo.New()
	e.POST("/limited", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, limiter.For(class))
	return e, &now
}

func doPost(e *echo.Echo, remoteAddr string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/limited", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterRejectsAfterLimit(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := obs.New(reg)
	e, _ := newLimitedEcho(t, RateLimiterConfig{Metrics: metrics}, ratelimit.AuthLogin)

	for i := 0; i < 5; i++ {
		rec := doPost(e, "198.51.100.4:4000", nil)
		require.Equal(t, http.StatusNoContent, rec.Code, "request %d", i+1)
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(4-i), rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Reset"))
	}

	rec := doPost(e, "198.51.100.4:4000", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	var body RateLimitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, RateLimitResponse{
		Error:             "rate_limit_exceeded",
		Message:           "Too many requests. Please try again later.",
		Detail:            "You have exceeded the rate limit for this endpoint.",
		RetryAfterSeconds: 60,
	}, body)

	scrape := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, scrape.Body.String(), `rate_limit_decisions_total{class="auth_login",outcome="allowed"} 5`)
	assert.Contains(t, scrape.Body.String(), `rate_limit_decisions_total{class="auth_login",outcome="rejected"} 1`)
}

func TestRateLimiterWindowRollsOver(t *testing.T) {
	e, now := newLimitedEcho(t, RateLimiterConfig{}, ratelimit.AuthLogin)
	for i := 0; i < 5; i++ {
		doPost(e, "198.51.100.4:4000", nil)
	}
	*now = now.Add(30 * time.Second)
	rec := doPost(e, "198.51.100.4:4000", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))

	*now = now.Add(30 * time.Second)
	rec = doPost(e, "198.51.100.4:4000", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimiterSeparatesClients(t *testing.T) {
	e, _ := newLimitedEcho(t, RateLimiterConfig{}, ratelimit.AuthForgotPassword)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusNoContent, doPost(e, "198.51.100.4:4000", nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, doPost(e, "198.51.100.4:4001", nil).Code)
	assert.Equal(t, http.StatusNoContent, doPost(e, "198.51.100.5:4000", nil).Code)
}

func TestRateLimiterForwardedFor(t *testing.T) {
	e, _ := newLimitedEcho(t, RateLimiterConfig{TrustForwardedFor: true}, ratelimit.AuthForgotPassword)
	proxy := "10.0.0.2:80"
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusNoContent, doPost(e, proxy, map[string]string{"X-Forwarded-For": "203.0.113.9"}).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, doPost(e, proxy, map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}).Code)
	assert.Equal(t, http.StatusNoContent, doPost(e, proxy, map[string]string{"X-Forwarded-For": "203.0.113.10"}).Code)
}

func TestRateLimiterExemptKeys(t *testing.T) {
	e, _ := newLimitedEcho(t, RateLimiterConfig{ExemptKeys: []string{"127.0.0.1"}}, ratelimit.AuthForgotPassword)
	for i := 0; i < 10; i++ {
		rec := doPost(e, "127.0.0.1:9000", nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestNilRateLimiterAdmits(t *testing.T) {
	var limiter *RateLimiter
	e := echo.New()
	e.POST("/limited", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, limiter.For(ratelimit.AuthLogin))
	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusNoContent, doPost(e, "198.51.100.4:4000", nil).Code)
	}
}
