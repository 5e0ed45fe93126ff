package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/Apartment_APP_BackEnd/internal/service"
	"github.com/njprem/Apartment_APP_BackEnd/internal/util"
)

const contextClaimsKey = "auth.claims"

// RequireAuth admits requests carrying a valid bearer token. Every token
// failure gets the same 401 body.
func RequireAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.TrimSpace(authHeader) == "" {
				return unauthorized(c, "missing authorization header")
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return unauthorized(c, "invalid authorization header")
			}
			token := strings.TrimSpace(parts[1])
			claims, err := auth.Authenticate(token)
			if err != nil {
				return unauthorized(c, "could not validate credentials")
			}
			c.Set(contextClaimsKey, claims)
			return next(c)
		}
	}
}

func CurrentClaims(c echo.Context) (*util.Claims, bool) {
	claims, ok := c.Get(contextClaimsKey).(*util.Claims)
	return claims, ok && claims != nil
}

func unauthorized(c echo.Context, message string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, util.Error(message))
}
