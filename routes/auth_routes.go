package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/homelyeats/homelyeats_backend/controllers"
)

// RegisterAuthRoutes sets up account and role routes
func RegisterAuthRoutes(e *echo.Echo, authGroup *echo.Group, authController *controllers.AuthController) {
	// Public authentication routes
	e.POST("/api/auth/register", authController.Register)
	e.POST("/api/auth/login", authController.Login)

	authGroup.GET("/auth/verify", authController.Verify)
	authGroup.POST("/auth/become-host", authController.BecomeHost)
	authGroup.POST("/auth/switch-role", authController.SwitchRole)
}
