// Package handler contains the booking app's HTTP handlers.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers liveness probes for both servers.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
