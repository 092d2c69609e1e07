package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/spotroute/backend/internal/pkg/models"
	"github.com/spotroute/backend/services/routes"
)

// RouteUC implements the route catalog logic
type RouteUC struct {
	routeRepo routes.RouteRepo
}

// NewRouteUC creates a new route usecase
func NewRouteUC(routeRepo routes.RouteRepo) *RouteUC {
	return &RouteUC{
		routeRepo: routeRepo,
	}
}

// ListRoutes lists all routes
func (uc *RouteUC) ListRoutes(ctx context.Context) ([]*models.Route, error) {
	return uc.routeRepo.ListRoutes(ctx)
}

// GetRoute fetches one route
func (uc *RouteUC) GetRoute(ctx context.Context, routeID uuid.UUID) (*models.Route, error) {
	return uc.routeRepo.GetRouteByID(ctx, routeID)
}

// ListPickupPoints lists a route's pickup points
func (uc *RouteUC) ListPickupPoints(ctx context.Context, routeID uuid.UUID) ([]models.PickupPoint, error) {
	if _, err := uc.routeRepo.GetRouteByID(ctx, routeID); err != nil {
		return nil, err
	}
	return uc.routeRepo.ListPickupPoints(ctx, routeID)
}
