package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/homelyeats/homelyeats_backend/middleware"
	"github.com/homelyeats/homelyeats_backend/models"
	"github.com/homelyeats/homelyeats_backend/services"
	"github.com/homelyeats/homelyeats_backend/utils"
)

// ReviewController handles dinner review endpoints
type ReviewController struct {
	reviews *services.ReviewService
}

func NewReviewController(reviews *services.ReviewService) *ReviewController {
	return &ReviewController{reviews: reviews}
}

// GetListingReviews lists the reviews of one dinner, newest first
func (rc *ReviewController) GetListingReviews(c echo.Context) error {
	return rc.list(c, "Invalid dinner ID", rc.reviews.ForListing)
}

// GetHostReviews lists every review a host received, newest first
func (rc *ReviewController) GetHostReviews(c echo.Context) error {
	return rc.list(c, "Invalid host ID", rc.reviews.ForHost)
}

func (rc *ReviewController) list(c echo.Context, invalid string, query func(ctx context.Context, id primitive.ObjectID) ([]models.Review, error)) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, invalid)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	reviews, err := query(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.ReviewsResponse{
		Status:  http.StatusOK,
		Message: "Reviews retrieved successfully",
		Data:    reviews,
	})
}

// CreateReview posts the caller's review of a dinner they attended
func (rc *ReviewController) CreateReview(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.ReviewRequest
	if msg := bindAndValidate(c, &req); msg != "" {
		return badRequest(c, msg)
	}
	listingID, err := primitive.ObjectIDFromHex(req.ListingID)
	if err != nil {
		return badRequest(c, "Invalid dinner ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	review, err := rc.reviews.Create(ctx, actor.UserID, listingID, req.Rating, utils.SanitizeInput(req.Comment))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Review posted successfully",
		Data:    review,
	})
}

// UpdateReview edits the caller's own review
func (rc *ReviewController) UpdateReview(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid review ID")
	}

	var req models.ReviewUpdateRequest
	if msg := bindAndValidate(c, &req); msg != "" {
		return badRequest(c, msg)
	}
	if req.Comment != nil {
		comment := utils.SanitizeInput(*req.Comment)
		req.Comment = &comment
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	review, err := rc.reviews.Update(ctx, id, actor.UserID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Review updated successfully",
		Data:    review,
	})
}

// DeleteReview removes the caller's own review
func (rc *ReviewController) DeleteReview(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid review ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := rc.reviews.Delete(ctx, id, actor.UserID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Review deleted successfully",
	})
}
