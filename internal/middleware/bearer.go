// Package middleware holds the request guards shared by the HTTP surfaces:
// the bearer-token check for protected routes and the admission-control
// rate limiter that runs before any dispatch.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/api-edge/internal/response"
	"github.com/iliyamo/api-edge/internal/token"
)

// Revocations is the read side of the token denylist.
type Revocations interface {
	IsRevoked(ctx context.Context, rawToken string) (bool, error)
}

// RequireAccessToken guards protected routes. The checks run in order and
// short-circuit on the first failure: signature, kind=access, expiry (the
// first three inside token.Verify), then the denylist. On success the
// subject id and email are stored in the request context under "user_id"
// and "email".
func RequireAccessToken(secret string, revocations Revocations) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return response.Fail(c, http.StatusUnauthorized, response.CodeInvalidToken, "missing bearer token")
			}
			raw := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := token.Verify(key, raw, token.KindAccess)
			if err != nil {
				return response.Fail(c, http.StatusUnauthorized, response.CodeInvalidToken, "invalid token")
			}
			revoked, err := revocations.IsRevoked(c.Request().Context(), raw)
			if err != nil {
				c.Logger().Errorf("denylist check failed: %v", err)
				return response.Fail(c, http.StatusInternalServerError, response.CodeInternal, "an unexpected error occurred")
			}
			if revoked {
				return response.Fail(c, http.StatusUnauthorized, response.CodeInvalidToken, "invalid token")
			}

			c.Set("user_id", claims.Subject)
			c.Set("email", claims.Email)
			return next(c)
		}
	}
}
