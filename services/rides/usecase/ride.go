package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spotroute/backend/internal/pkg/apperrors"
	"github.com/spotroute/backend/internal/pkg/logger"
	"github.com/spotroute/backend/internal/pkg/models"
	"github.com/spotroute/backend/services/rides"
)

const maxRideSeats = 8

// RideUC implements the ride lifecycle business logic
type RideUC struct {
	cfg      *models.Config
	rideRepo rides.RideRepo
}

// NewRideUC creates a new ride usecase
func NewRideUC(cfg *models.Config, rideRepo rides.RideRepo) *RideUC {
	return &RideUC{
		cfg:      cfg,
		rideRepo: rideRepo,
	}
}

// CreateRide validates and announces a ride
func (uc *RideUC) CreateRide(ctx context.Context, driverID uuid.UUID, req models.CreateRideRequest) (*models.Ride, error) {
	if req.RouteID == uuid.Nil {
		return nil, apperrors.InvalidInput("route_id is required")
	}
	if req.TotalSeats < 1 || req.TotalSeats > maxRideSeats {
		return nil, apperrors.InvalidInput("total_seats must be between 1 and 8")
	}

	departureTime, err := time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		return nil, apperrors.InvalidInput("departure_time must be an RFC3339 timestamp")
	}
	if departureTime.Before(time.Now()) {
		return nil, apperrors.InvalidInput("departure_time must be in the future")
	}

	ride, err := uc.rideRepo.CreateRide(ctx, driverID, req.RouteID, departureTime, req.TotalSeats, req.PickupPointIDs)
	if err != nil {
		return nil, err
	}

	logger.Info("Ride created",
		logger.String("ride_id", ride.ID.String()),
		logger.String("driver_id", driverID.String()),
		logger.Int("total_seats", ride.TotalSeats))

	return ride, nil
}

// GetRide fetches a ride by ID
func (uc *RideUC) GetRide(ctx context.Context, rideID uuid.UUID) (*models.Ride, error) {
	return uc.rideRepo.GetRideByID(ctx, rideID)
}

// ListAvailableRides lists upcoming rides with open seats
func (uc *RideUC) ListAvailableRides(ctx context.Context, routeID *uuid.UUID) ([]*models.Ride, error) {
	return uc.rideRepo.ListAvailableRides(ctx, routeID, time.Now())
}

// ListDriverRides lists the driver's own rides
func (uc *RideUC) ListDriverRides(ctx context.Context, driverID uuid.UUID) ([]*models.Ride, error) {
	return uc.rideRepo.ListDriverRides(ctx, driverID)
}

// UpdateRideStatus moves a ride through its lifecycle
func (uc *RideUC) UpdateRideStatus(ctx context.Context, rideID, driverID uuid.UUID, status models.RideStatus) (*models.Ride, error) {
	switch status {
	case models.RideStatusInProgress, models.RideStatusCompleted, models.RideStatusCancelled:
	default:
		return nil, apperrors.InvalidInput("status must be IN_PROGRESS, COMPLETED or CANCELLED")
	}

	ride, err := uc.rideRepo.UpdateRideStatus(ctx, rideID, driverID, status)
	if err != nil {
		return nil, err
	}

	logger.Info("Ride status updated",
		logger.String("ride_id", rideID.String()),
		logger.String("status", string(status)))

	return ride, nil
}
