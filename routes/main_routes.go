package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/homelyeats/homelyeats_backend/controllers"
	"github.com/homelyeats/homelyeats_backend/middleware"
)

// Controllers bundles the handlers mounted under /api
type Controllers struct {
	Auth          *controllers.AuthController
	Listings      *controllers.ListingController
	Bookings      *controllers.BookingController
	Notifications *controllers.NotificationController
	Reviews       *controllers.ReviewController
	Profiles      *controllers.ProfileController
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, jwtSecret string, c Controllers) {
	authGroup := e.Group("/api")
	authGroup.Use(middleware.JWTMiddleware(jwtSecret))

	RegisterAuthRoutes(e, authGroup, c.Auth)
	RegisterListingRoutes(e, authGroup, c.Listings)
	RegisterBookingRoutes(authGroup, c.Bookings)
	RegisterNotificationRoutes(authGroup, c.Notifications)
	RegisterReviewRoutes(e, authGroup, c.Reviews)
	RegisterProfileRoutes(e, authGroup, c.Profiles)
}
