package routes

import (
	"context"

	"github.com/google/uuid"

	"github.com/spotroute/backend/internal/pkg/models"
)

// RouteRepo defines the data access contract for the route catalog.
// Routes are seeded data; the API only reads them.
type RouteRepo interface {
	ListRoutes(ctx context.Context) ([]*models.Route, error)
	GetRouteByID(ctx context.Context, routeID uuid.UUID) (*models.Route, error)
	ListPickupPoints(ctx context.Context, routeID uuid.UUID) ([]models.PickupPoint, error)
}
