package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/spotroute/backend/internal/pkg/middleware"
	"github.com/spotroute/backend/internal/pkg/models"
	"github.com/spotroute/backend/internal/utils"
	"github.com/spotroute/backend/services/bookings"
)

// BookingHandler handles HTTP requests for the booking lifecycle
type BookingHandler struct {
	bookingUC bookings.BookingUC
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingUC bookings.BookingUC) *BookingHandler {
	return &BookingHandler{
		bookingUC: bookingUC,
	}
}

// RegisterRoutes registers booking routes on an authenticated group
func (h *BookingHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/bookings", h.CreateBooking, middleware.RequireRole(models.RoleRider))
	g.GET("/bookings", h.ListMyBookings)
	g.GET("/bookings/:id", h.GetBooking)
	g.POST("/bookings/:id/cancel", h.CancelBooking)
	g.POST("/bookings/:id/rate", h.RateBooking, middleware.RequireRole(models.RoleRider))
	g.GET("/rides/:id/bookings", h.ListRideBookings, middleware.RequireRole(models.RoleDriver))
}

// CreateBooking books seats on a ride for the authenticated rider
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	riderID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request format")
	}

	booking, err := h.bookingUC.CreateBooking(c.Request().Context(), riderID, req)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusCreated, "Booking created successfully", booking)
}

// ListMyBookings lists the authenticated user's bookings
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	list, err := h.bookingUC.ListUserBookings(c.Request().Context(), userID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Bookings retrieved successfully", list)
}

// GetBooking fetches one booking by ID
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid booking ID")
	}

	booking, err := h.bookingUC.GetBooking(c.Request().Context(), bookingID, userID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Booking retrieved successfully", booking)
}

// CancelBooking cancels a booking and releases its seats
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid booking ID")
	}

	booking, err := h.bookingUC.CancelBooking(c.Request().Context(), bookingID, userID, middleware.RoleFromContext(c))
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Booking cancelled successfully", booking)
}

// RateBooking records the rider's rating for a booking
func (h *BookingHandler) RateBooking(c echo.Context) error {
	riderID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid booking ID")
	}

	var req models.RateBookingRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request format")
	}

	booking, err := h.bookingUC.RateBooking(c.Request().Context(), bookingID, riderID, req)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Rating submitted successfully", booking)
}

// ListRideBookings lists all bookings on one of the driver's rides
func (h *BookingHandler) ListRideBookings(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid ride ID")
	}

	list, err := h.bookingUC.ListRideBookings(c.Request().Context(), rideID, driverID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Ride bookings retrieved successfully", list)
}
