package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/spotroute/backend/internal/pkg/middleware"
	"github.com/spotroute/backend/internal/pkg/models"
	"github.com/spotroute/backend/internal/utils"
	"github.com/spotroute/backend/services/rides"
)

// RideHandler handles HTTP requests for rides
type RideHandler struct {
	rideUC rides.RideUC
}

// NewRideHandler creates a new ride handler
func NewRideHandler(rideUC rides.RideUC) *RideHandler {
	return &RideHandler{
		rideUC: rideUC,
	}
}

// RegisterRoutes registers ride routes on an authenticated group
func (h *RideHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/rides", h.CreateRide, middleware.RequireRole(models.RoleDriver))
	g.GET("/rides", h.ListAvailableRides)
	g.GET("/rides/mine", h.ListMyRides, middleware.RequireRole(models.RoleDriver))
	g.GET("/rides/:id", h.GetRide)
	g.PATCH("/rides/:id/status", h.UpdateRideStatus, middleware.RequireRole(models.RoleDriver))
}

// CreateRide announces a ride for the authenticated driver
func (h *RideHandler) CreateRide(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.CreateRideRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request format")
	}

	ride, err := h.rideUC.CreateRide(c.Request().Context(), driverID, req)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusCreated, "Ride created successfully", ride)
}

// ListAvailableRides lists upcoming rides with open seats, optionally
// filtered by route_id
func (h *RideHandler) ListAvailableRides(c echo.Context) error {
	var routeID *uuid.UUID
	if raw := c.QueryParam("route_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return utils.BadRequestResponse(c, "Invalid route ID")
		}
		routeID = &id
	}

	list, err := h.rideUC.ListAvailableRides(c.Request().Context(), routeID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Rides retrieved successfully", list)
}

// ListMyRides lists the authenticated driver's rides
func (h *RideHandler) ListMyRides(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	list, err := h.rideUC.ListDriverRides(c.Request().Context(), driverID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Rides retrieved successfully", list)
}

// GetRide fetches one ride by ID
func (h *RideHandler) GetRide(c echo.Context) error {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid ride ID")
	}

	ride, err := h.rideUC.GetRide(c.Request().Context(), rideID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Ride retrieved successfully", ride)
}

// UpdateRideStatus changes the status of one of the driver's rides
func (h *RideHandler) UpdateRideStatus(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid ride ID")
	}

	var req models.UpdateRideStatusRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request format")
	}

	ride, err := h.rideUC.UpdateRideStatus(c.Request().Context(), rideID, driverID, req.Status)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Ride status updated successfully", ride)
}
