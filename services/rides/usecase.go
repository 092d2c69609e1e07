package rides

import (
	"context"

	"github.com/google/uuid"

	"github.com/spotroute/backend/internal/pkg/models"
)

// RideUC defines the interface for ride lifecycle business logic
type RideUC interface {
	CreateRide(ctx context.Context, driverID uuid.UUID, req models.CreateRideRequest) (*models.Ride, error)
	GetRide(ctx context.Context, rideID uuid.UUID) (*models.Ride, error)
	ListAvailableRides(ctx context.Context, routeID *uuid.UUID) ([]*models.Ride, error)
	ListDriverRides(ctx context.Context, driverID uuid.UUID) ([]*models.Ride, error)
	UpdateRideStatus(ctx context.Context, rideID, driverID uuid.UUID, status models.RideStatus) (*models.Ride, error)
}
