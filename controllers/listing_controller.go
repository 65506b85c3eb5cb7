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

// ListingController handles dinner listing endpoints
type ListingController struct {
	listings *services.ListingService
	bookings *services.BookingService
}

// NewListingController creates a new listing controller
func NewListingController(listings *services.ListingService, bookings *services.BookingService) *ListingController {
	return &ListingController{listings: listings, bookings: bookings}
}

// GetListings returns every dinner
func (lc *ListingController) GetListings(c echo.Context) error {
	return lc.query(c, "Dinners retrieved successfully", lc.listings.List)
}

// GetUpcomingListings returns dinners in the next 30 days
func (lc *ListingController) GetUpcomingListings(c echo.Context) error {
	return lc.query(c, "Upcoming dinners retrieved successfully", lc.listings.Upcoming)
}

// GetFeaturedListings returns a few dinners with open seats
func (lc *ListingController) GetFeaturedListings(c echo.Context) error {
	return lc.query(c, "Featured dinners retrieved successfully", lc.listings.Featured)
}

// GetMyListings returns the caller's own dinners
func (lc *ListingController) GetMyListings(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	listings, err := lc.listings.Mine(ctx, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.ListingsResponse{
		Status:  http.StatusOK,
		Message: "Your dinners retrieved successfully",
		Data:    listings,
	})
}

// GetListing returns a single dinner
func (lc *ListingController) GetListing(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid dinner ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	listing, err := lc.listings.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.ListingResponse{
		Status:  http.StatusOK,
		Message: "Dinner retrieved successfully",
		Data:    listing,
	})
}

// CreateListing publishes a new dinner for the calling host
func (lc *ListingController) CreateListing(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.ListingRequest
	if msg := bindAndValidate(c, &req); msg != "" {
		return badRequest(c, msg)
	}
	sanitizeListingRequest(&req)

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	listing, err := lc.listings.Create(ctx, actor.UserID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, models.ListingResponse{
		Status:  http.StatusCreated,
		Message: "Dinner created successfully",
		Data:    listing,
	})
}

// UpdateListing edits a dinner owned by the caller
func (lc *ListingController) UpdateListing(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid dinner ID")
	}

	var req models.ListingRequest
	if msg := bindAndValidate(c, &req); msg != "" {
		return badRequest(c, msg)
	}
	sanitizeListingRequest(&req)

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	listing, err := lc.listings.Update(ctx, id, actor.UserID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.ListingResponse{
		Status:  http.StatusOK,
		Message: "Dinner updated successfully",
		Data:    listing,
	})
}

// CancelListing cancels a dinner and every active booking on it
func (lc *ListingController) CancelListing(c echo.Context) error {
	return lc.cascade(c, "Dinner cancelled successfully", lc.bookings.CancelListing)
}

// DeleteListing removes a dinner after cancelling its active bookings
func (lc *ListingController) DeleteListing(c echo.Context) error {
	return lc.cascade(c, "Dinner deleted successfully", lc.bookings.DeleteListing)
}

func (lc *ListingController) query(c echo.Context, message string, fetch func(context.Context) ([]models.Listing, error)) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	listings, err := fetch(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.ListingsResponse{
		Status:  http.StatusOK,
		Message: message,
		Data:    listings,
	})
}

type cascadeAction func(ctx context.Context, listingID, hostID primitive.ObjectID) (*services.ListingCascade, error)

func (lc *ListingController) cascade(c echo.Context, message string, action cascadeAction) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid dinner ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	result, err := action(ctx, id, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.ListingCascadeResponse{
		Status:            http.StatusOK,
		Message:           message,
		Data:              result.Listing,
		BookingsCancelled: result.BookingsCancelled,
		NotificationsSent: result.NotificationsSent,
	})
}

func sanitizeListingRequest(req *models.ListingRequest) {
	req.Title = utils.SanitizeInput(req.Title)
	req.Description = utils.SanitizeInput(req.Description)
	req.Cuisine = utils.SanitizeInput(req.Cuisine)
	req.Location.Address = utils.SanitizeInput(req.Location.Address)
	req.Location.City = utils.SanitizeInput(req.Location.City)
	req.DietaryRestrictions = utils.SanitizeStringArray(req.DietaryRestrictions)
	for i := range req.Menu {
		req.Menu[i].Name = utils.SanitizeInput(req.Menu[i].Name)
		req.Menu[i].Description = utils.SanitizeInput(req.Menu[i].Description)
	}
}
