package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/homelyeats/homelyeats_backend/controllers"
	"github.com/homelyeats/homelyeats_backend/middleware"
	"github.com/homelyeats/homelyeats_backend/models"
)

// RegisterBookingRoutes sets up guest and host booking routes
func RegisterBookingRoutes(authGroup *echo.Group, bookingController *controllers.BookingController) {
	bookings := authGroup.Group("/bookings")
	hostOnly := middleware.RequireActiveRole(models.RoleHost)

	bookings.POST("", bookingController.CreateBooking)
	bookings.GET("/mine", bookingController.GetMyBookings)
	bookings.GET("/host", bookingController.GetHostBookings, hostOnly)
	bookings.GET("/:id", bookingController.GetBooking)
	bookings.GET("/:id/ticket", bookingController.GetBookingTicket)
	bookings.PATCH("/:id/approve", bookingController.ApproveBooking, hostOnly)
	bookings.PATCH("/:id/reject", bookingController.RejectBooking, hostOnly)
	bookings.PATCH("/:id", bookingController.UpdateBooking)
	bookings.DELETE("/:id", bookingController.CancelBooking)
}
