package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/njprem/Apartment_APP_BackEnd/internal/obs"
	"github.com/njprem/Apartment_APP_BackEnd/internal/ratelimit"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
	headerRetryAfter         = "Retry-After"
)

type RateLimitResponse struct {
	Error             string `json:"error" example:"rate_limit_exceeded"`
	Message           string `json:"message" example:"Too many requests. Please try again later."`
	Detail            string `json:"detail" example:"You have exceeded the rate limit for this endpoint."`
	RetryAfterSeconds int    `json:"retry_after_seconds" example:"42"`
}

type RateLimiterConfig struct {
	TrustForwardedFor bool
	ExemptKeys        []string
	Metrics           *obs.Metrics
}

// RateLimiter turns Governor decisions into echo middleware.
type RateLimiter struct {
	governor *ratelimit.Governor
	trust    bool
	exempt   map[string]struct{}
	metrics  *obs.Metrics
}

func NewRateLimiter(governor *ratelimit.Governor, cfg RateLimiterConfig) *RateLimiter {
	exempt := make(map[string]struct{}, len(cfg.ExemptKeys))
	for _, key := range cfg.ExemptKeys {
		exempt[key] = struct{}{}
	}
	return &RateLimiter{
		governor: governor,
		trust:    cfg.TrustForwardedFor,
		exempt:   exempt,
		metrics:  cfg.Metrics,
	}
}

// For governs the wrapped route under class. A nil limiter admits everything.
func (l *RateLimiter) For(class ratelimit.RouteClass) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if l == nil || l.governor == nil {
			return next
		}
		return func(c echo.Context) error {
			key := clientKey(c.Request(), l.trust)
			if _, ok := l.exempt[key]; ok {
				return next(c)
			}

			decision := l.governor.Admit(key, class)
			l.metrics.RateLimitDecision(string(class), decision.Allowed)

			h := c.Response().Header()
			h.Set(headerRateLimitLimit, strconv.Itoa(decision.Limit))
			h.Set(headerRateLimitRemaining, strconv.Itoa(decision.Remaining))
			h.Set(headerRateLimitReset, strconv.Itoa(decision.ResetSeconds()))

			if !decision.Allowed {
				retry := decision.RetryAfterSeconds()
				log.Printf("rate limit: rejected %s on %s (%s), retry in %ds", key, c.Path(), class, retry)
				h.Set(headerRetryAfter, strconv.Itoa(retry))
				return c.JSON(http.StatusTooManyRequests, RateLimitResponse{
					Error:             "rate_limit_exceeded",
					Message:           "Too many requests. Please try again later.",
					Detail:            "You have exceeded the rate limit for this endpoint.",
					RetryAfterSeconds: retry,
				})
			}
			return next(c)
		}
	}
}
