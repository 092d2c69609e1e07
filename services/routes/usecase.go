package routes

import (
	"context"

	"github.com/google/uuid"

	"github.com/spotroute/backend/internal/pkg/models"
)

// RouteUC defines the interface for the route catalog
type RouteUC interface {
	ListRoutes(ctx context.Context) ([]*models.Route, error)
	GetRoute(ctx context.Context, routeID uuid.UUID) (*models.Route, error)
	ListPickupPoints(ctx context.Context, routeID uuid.UUID) ([]models.PickupPoint, error)
}
