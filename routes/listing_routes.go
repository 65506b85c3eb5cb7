package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/homelyeats/homelyeats_backend/controllers"
	"github.com/homelyeats/homelyeats_backend/middleware"
	"github.com/homelyeats/homelyeats_backend/models"
)

// RegisterListingRoutes sets up the dinner listing routes. Host routes hang
// off authGroup one by one so they do not shadow the public paths.
func RegisterListingRoutes(e *echo.Echo, authGroup *echo.Group, listingController *controllers.ListingController) {
	hostOnly := middleware.RequireActiveRole(models.RoleHost)

	// Public browsing
	e.GET("/api/listings", listingController.GetListings)
	e.GET("/api/listings/upcoming", listingController.GetUpcomingListings)
	e.GET("/api/listings/featured", listingController.GetFeaturedListings)

	authGroup.GET("/listings/mine", listingController.GetMyListings, hostOnly)
	authGroup.POST("/listings", listingController.CreateListing, hostOnly)
	authGroup.PUT("/listings/:id", listingController.UpdateListing, hostOnly)
	authGroup.PATCH("/listings/:id/cancel", listingController.CancelListing, hostOnly)
	authGroup.DELETE("/listings/:id", listingController.DeleteListing, hostOnly)

	e.GET("/api/listings/:id", listingController.GetListing)
}
