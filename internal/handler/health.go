package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health returns a liveness handler for the named service. Load balancers
// and the other services' own health probes hit this endpoint.
func Health(service string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":    "ok",
			"service":   service,
			"timestamp": time.Now().UTC(),
		})
	}
}
