// Package router wires handlers and middleware onto Echo instances for the
// two processes.
package router

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/api-edge/internal/gateway"
	"github.com/iliyamo/api-edge/internal/handler"
	"github.com/iliyamo/api-edge/internal/middleware"
)

// RegisterAuth registers the auth surface: the public identity operations
// under /auth plus the protected /auth/me behind the access-token guard.
func RegisterAuth(e *echo.Echo, h *handler.AuthHandler, jwtSecret string, revocations middleware.Revocations) {
	e.GET("/health", handler.Health("auth-service"))

	g := e.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
	g.POST("/verify-email", h.VerifyEmail)

	g.GET("/me", h.Me, middleware.RequireAccessToken(jwtSecret, revocations))
}

// RegisterGateway registers the gateway surface: health, then the rate
// limited catch-all under /api that dispatches to upstreams, and a
// structured 404 for everything else.
func RegisterGateway(e *echo.Echo, d *gateway.Dispatcher, counter middleware.Counter, max int64, window time.Duration) {
	e.GET("/health", handler.Health("api-gateway"))

	api := e.Group("/api", middleware.RateLimit(counter, max, window, nil))
	api.Any("/*", d.Dispatch)

	// Anything outside /api has no route by definition.
	e.Any("/*", d.Dispatch)
}
