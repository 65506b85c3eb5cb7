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

// BookingController handles booking-related API endpoints
type BookingController struct {
	bookings *services.BookingService
}

// NewBookingController creates a new booking controller
func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{bookings: bookings}
}

// CreateBooking handles a guest's booking request
func (bc *BookingController) CreateBooking(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.BookingRequest
	if msg := bindAndValidate(c, &req); msg != "" {
		return badRequest(c, msg)
	}
	listingID, err := primitive.ObjectIDFromHex(req.ListingID)
	if err != nil {
		return badRequest(c, "Invalid dinner ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	booking, err := bc.bookings.Create(ctx, listingID, actor.UserID, req.NumberOfGuests, utils.SanitizeInput(req.SpecialRequests))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, models.BookingResponse{
		Status:  http.StatusCreated,
		Message: "Booking request sent to the host",
		Data:    booking,
	})
}

// GetMyBookings lists the caller's bookings as a guest
func (bc *BookingController) GetMyBookings(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	bookings, err := bc.bookings.GuestBookings(ctx, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.BookingsResponse{
		Status:  http.StatusOK,
		Message: "Bookings retrieved successfully",
		Data:    bookings,
	})
}

// GetHostBookings lists bookings on the caller's dinners, optionally ?status=pending
func (bc *BookingController) GetHostBookings(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}

	var statuses []models.BookingStatus
	if status := c.QueryParam("status"); status != "" {
		statuses = append(statuses, models.BookingStatus(status))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	bookings, err := bc.bookings.HostBookings(ctx, actor.UserID, statuses...)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.BookingsResponse{
		Status:  http.StatusOK,
		Message: "Host bookings retrieved successfully",
		Data:    bookings,
	})
}

// GetBooking returns one booking to its guest or host
func (bc *BookingController) GetBooking(c echo.Context) error {
	return bc.withBooking(c, "Booking retrieved successfully", http.StatusOK, bc.bookings.GetBooking)
}

// ApproveBooking confirms a pending booking and reserves its seats
func (bc *BookingController) ApproveBooking(c echo.Context) error {
	return bc.withBooking(c, "Booking approved successfully", http.StatusOK, bc.bookings.Approve)
}

// RejectBooking declines a pending booking
func (bc *BookingController) RejectBooking(c echo.Context) error {
	return bc.withBooking(c, "Booking rejected", http.StatusOK, bc.bookings.Reject)
}

// CancelBooking withdraws the caller's booking
func (bc *BookingController) CancelBooking(c echo.Context) error {
	return bc.withBooking(c, "Booking cancelled successfully", http.StatusOK, bc.bookings.Cancel)
}

// UpdateBooking changes the party size of a pending booking
func (bc *BookingController) UpdateBooking(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid booking ID")
	}

	var req models.BookingUpdateRequest
	if msg := bindAndValidate(c, &req); msg != "" {
		return badRequest(c, msg)
	}
	if req.SpecialRequests != nil {
		sanitized := utils.SanitizeInput(*req.SpecialRequests)
		req.SpecialRequests = &sanitized
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	booking, err := bc.bookings.UpdateGuestCount(ctx, bookingID, actor.UserID, req.NumberOfGuests, req.SpecialRequests)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.BookingResponse{
		Status:  http.StatusOK,
		Message: "Booking updated successfully",
		Data:    booking,
	})
}

// GetBookingTicket returns the check-in QR code of a confirmed booking
func (bc *BookingController) GetBookingTicket(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid booking ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	booking, err := bc.bookings.GetBooking(ctx, bookingID, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}
	if booking.Status != models.BookingConfirmed {
		return badRequest(c, "Tickets are only issued for confirmed bookings")
	}

	qrCode, err := utils.GenerateTicketQRCode(booking.ID.Hex())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ticket generated successfully",
		Data: map[string]interface{}{
			"bookingId":      booking.ID.Hex(),
			"numberOfGuests": booking.NumberOfGuests,
			"qrCode":         qrCode,
		},
	})
}

type bookingAction func(ctx context.Context, bookingID, actorID primitive.ObjectID) (*models.Booking, error)

// withBooking runs a single booking operation for the caller on the :id route
func (bc *BookingController) withBooking(c echo.Context, message string, status int, action bookingAction) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return unauthorized(c)
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid booking ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	booking, err := action(ctx, bookingID, actor.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(status, models.BookingResponse{
		Status:  status,
		Message: message,
		Data:    booking,
	})
}
