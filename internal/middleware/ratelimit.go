package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/api-edge/internal/response"
)

// Counter is the admission-control backend: one atomic increment per
// request, returning the post-increment count and the remaining window.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// KeyFunc derives the client identity a counter is keyed by.
type KeyFunc func(c echo.Context) string

// KeyByIP keys limits by network address, the default scope. Deployments
// that prefer limiting by authenticated identity pass their own KeyFunc.
func KeyByIP(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// RateLimit rejects a client's requests beyond max per window with 429
// before they reach the dispatcher. Counter errors fail open: admission
// control protects capacity and must not become an outage of its own.
func RateLimit(counter Counter, max int64, window time.Duration, keyFn KeyFunc) echo.MiddlewareFunc {
	if keyFn == nil {
		keyFn = KeyByIP
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			count, remaining, err := counter.Hit(c.Request().Context(), keyFn(c), window)
			if err != nil {
				c.Logger().Warnf("rate counter unavailable: %v", err)
				return next(c)
			}

			left := max - count
			if left < 0 {
				left = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.FormatInt(max, 10))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(left, 10))

			if count > max {
				secs := int(math.Ceil(remaining.Seconds()))
				if secs < 0 {
					secs = 0
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return response.Fail(c, http.StatusTooManyRequests,
					response.CodeRateLimited, "Too many requests from this IP")
			}
			return next(c)
		}
	}
}
