package rides

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spotroute/backend/internal/pkg/models"
)

// RideRepo defines the data access contract for rides
type RideRepo interface {
	CreateRide(ctx context.Context, driverID uuid.UUID, routeID uuid.UUID, departureTime time.Time, totalSeats int, pickupPointIDs []uuid.UUID) (*models.Ride, error)
	GetRideByID(ctx context.Context, rideID uuid.UUID) (*models.Ride, error)
	ListAvailableRides(ctx context.Context, routeID *uuid.UUID, after time.Time) ([]*models.Ride, error)
	ListDriverRides(ctx context.Context, driverID uuid.UUID) ([]*models.Ride, error)
	UpdateRideStatus(ctx context.Context, rideID, driverID uuid.UUID, status models.RideStatus) (*models.Ride, error)
}
