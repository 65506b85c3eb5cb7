package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/homelyeats/homelyeats_backend/controllers"
	"github.com/homelyeats/homelyeats_backend/middleware"
	"github.com/homelyeats/homelyeats_backend/models"
)

// RegisterProfileRoutes sets up the account profile and host directory routes
func RegisterProfileRoutes(e *echo.Echo, authGroup *echo.Group, profileController *controllers.ProfileController) {
	authGroup.GET("/users/profile", profileController.GetProfile)
	authGroup.PATCH("/users/profile", profileController.UpdateProfile)

	// Public host directory
	e.GET("/api/hosts", profileController.GetHosts)
	e.GET("/api/hosts/:id", profileController.GetHost)
	authGroup.PUT("/hosts/:id", profileController.UpdateHost, middleware.RequireActiveRole(models.RoleHost))
}
