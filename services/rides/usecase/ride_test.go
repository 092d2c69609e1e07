package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/spotroute/backend/internal/pkg/apperrors"
	"github.com/spotroute/backend/internal/pkg/models"
)

type mockRideRepo struct {
	createFunc       func(ctx context.Context, driverID uuid.UUID, routeID uuid.UUID, departureTime time.Time, totalSeats int, pickupPointIDs []uuid.UUID) (*models.Ride, error)
	updateStatusFunc func(ctx context.Context, rideID, driverID uuid.UUID, status models.RideStatus) (*models.Ride, error)
}

func (m *mockRideRepo) CreateRide(ctx context.Context, driverID uuid.UUID, routeID uuid.UUID, departureTime time.Time, totalSeats int, pickupPointIDs []uuid.UUID) (*models.Ride, error) {
	return m.createFunc(ctx, driverID, routeID, departureTime, totalSeats, pickupPointIDs)
}

func (m *mockRideRepo) GetRideByID(ctx context.Context, rideID uuid.UUID) (*models.Ride, error) {
	return &models.Ride{ID: rideID}, nil
}

func (m *mockRideRepo) ListAvailableRides(ctx context.Context, routeID *uuid.UUID, after time.Time) ([]*models.Ride, error) {
	return nil, nil
}

func (m *mockRideRepo) ListDriverRides(ctx context.Context, driverID uuid.UUID) ([]*models.Ride, error) {
	return nil, nil
}

func (m *mockRideRepo) UpdateRideStatus(ctx context.Context, rideID, driverID uuid.UUID, status models.RideStatus) (*models.Ride, error) {
	return m.updateStatusFunc(ctx, rideID, driverID, status)
}

func TestCreateRideValidation(t *testing.T) {
	uc := NewRideUC(&models.Config{}, &mockRideRepo{})
	future := time.Now().Add(24 * time.Hour).Format(time.RFC3339)

	tests := []struct {
		name string
		req  models.CreateRideRequest
	}{
		{name: "missing route", req: models.CreateRideRequest{DepartureTime: future, TotalSeats: 3}},
		{name: "zero seats", req: models.CreateRideRequest{RouteID: uuid.New(), DepartureTime: future, TotalSeats: 0}},
		{name: "too many seats", req: models.CreateRideRequest{RouteID: uuid.New(), DepartureTime: future, TotalSeats: 9}},
		{name: "bad timestamp", req: models.CreateRideRequest{RouteID: uuid.New(), DepartureTime: "tomorrow", TotalSeats: 3}},
		{name: "departure in the past", req: models.CreateRideRequest{
			RouteID:       uuid.New(),
			DepartureTime: time.Now().Add(-time.Hour).Format(time.RFC3339),
			TotalSeats:    3,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ride, err := uc.CreateRide(context.Background(), uuid.New(), tt.req)

			assert.Nil(t, ride)
			assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
		})
	}
}

func TestCreateRidePassesParsedDeparture(t *testing.T) {
	departure := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	repo := &mockRideRepo{
		createFunc: func(ctx context.Context, driverID uuid.UUID, routeID uuid.UUID, departureTime time.Time, totalSeats int, pickupPointIDs []uuid.UUID) (*models.Ride, error) {
			assert.True(t, departure.Equal(departureTime))
			return &models.Ride{ID: uuid.New(), TotalSeats: totalSeats}, nil
		},
	}
	uc := NewRideUC(&models.Config{}, repo)

	ride, err := uc.CreateRide(context.Background(), uuid.New(), models.CreateRideRequest{
		RouteID:       uuid.New(),
		DepartureTime: departure.Format(time.RFC3339),
		TotalSeats:    4,
	})

	assert.NoError(t, err)
	assert.Equal(t, 4, ride.TotalSeats)
}

func TestUpdateRideStatusValidation(t *testing.T) {
	uc := NewRideUC(&models.Config{}, &mockRideRepo{})

	ride, err := uc.UpdateRideStatus(context.Background(), uuid.New(), uuid.New(), models.RideStatusScheduled)

	assert.Nil(t, ride)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
}
