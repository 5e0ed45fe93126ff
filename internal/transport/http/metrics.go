package http

import (
	"github.com/labstack/echo/v4"

	"github.com/njprem/Apartment_APP_BackEnd/internal/obs"
)

// instrument records request metrics keyed by the matched route template, so
// path parameters do not explode label cardinality.
func instrument(m *obs.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			done := m.StartRequest(c.Request().Method, path)
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			done(status)
			return err
		}
	}
}
