package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/homelyeats/homelyeats_backend/controllers"
)

// RegisterReviewRoutes sets up dinner review routes. Reading is public.
func RegisterReviewRoutes(e *echo.Echo, authGroup *echo.Group, reviewController *controllers.ReviewController) {
	e.GET("/api/reviews/listing/:id", reviewController.GetListingReviews)
	e.GET("/api/reviews/host/:id", reviewController.GetHostReviews)

	authGroup.POST("/reviews", reviewController.CreateReview)
	authGroup.PUT("/reviews/:id", reviewController.UpdateReview)
	authGroup.DELETE("/reviews/:id", reviewController.DeleteReview)
}
