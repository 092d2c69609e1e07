package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/spotroute/backend/internal/utils"
	"github.com/spotroute/backend/services/routes"
)

// RouteHandler handles HTTP requests for the route catalog
type RouteHandler struct {
	routeUC routes.RouteUC
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(routeUC routes.RouteUC) *RouteHandler {
	return &RouteHandler{
		routeUC: routeUC,
	}
}

// RegisterRoutes registers route catalog endpoints
func (h *RouteHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/routes", h.ListRoutes)
	g.GET("/routes/:id", h.GetRoute)
	g.GET("/routes/:id/pickup-points", h.ListPickupPoints)
}

// ListRoutes lists all routes
func (h *RouteHandler) ListRoutes(c echo.Context) error {
	list, err := h.routeUC.ListRoutes(c.Request().Context())
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Routes retrieved successfully", list)
}

// GetRoute fetches one route
func (h *RouteHandler) GetRoute(c echo.Context) error {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid route ID")
	}

	route, err := h.routeUC.GetRoute(c.Request().Context(), routeID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Route retrieved successfully", route)
}

// ListPickupPoints lists a route's pickup points
func (h *RouteHandler) ListPickupPoints(c echo.Context) error {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid route ID")
	}

	points, err := h.routeUC.ListPickupPoints(c.Request().Context(), routeID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Pickup points retrieved successfully", points)
}
