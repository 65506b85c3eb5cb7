// middleware/auth_middleware.go
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/homelyeats/homelyeats_backend/models"
)

// RequireActiveRole checks that the caller is currently acting as one of
// the allowed roles
func RequireActiveRole(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := ExtractActiveRole(c)

			if role == "" {
				c.Logger().Error("Authentication failed: active role not found")
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: active role not found",
				})
			}

			for _, r := range allowed {
				if role == r {
					return next(c)
				}
			}

			c.Logger().Warnf("Access denied for role %s on %s, allowed: %v", role, c.Request().URL.Path, allowed)
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied. Switch to a permitted role to continue",
			})
		}
	}
}
