package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a liveness endpoint for load balancers and monitoring.  It
// answers "ok" with 200 whenever the process is serving.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
