package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/spotroute/backend/internal/pkg/apperrors"
	"github.com/spotroute/backend/internal/pkg/models"
)

type mockBookingRepo struct {
	createFunc     func(ctx context.Context, riderID uuid.UUID, req models.CreateBookingRequest) (*models.Booking, error)
	cancelFunc     func(ctx context.Context, bookingID, requesterID uuid.UUID) (*models.Booking, error)
	rateFunc       func(ctx context.Context, bookingID, riderID uuid.UUID, req models.RateBookingRequest) (*models.Booking, error)
	getFunc        func(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	listUserFunc   func(ctx context.Context, userID uuid.UUID) ([]*models.Booking, error)
	listRideFunc   func(ctx context.Context, rideID uuid.UUID) ([]*models.Booking, error)
	rideDriverFunc func(ctx context.Context, rideID uuid.UUID) (uuid.UUID, error)
}

func (m *mockBookingRepo) CreateBooking(ctx context.Context, riderID uuid.UUID, req models.CreateBookingRequest) (*models.Booking, error) {
	return m.createFunc(ctx, riderID, req)
}

func (m *mockBookingRepo) CancelBooking(ctx context.Context, bookingID, requesterID uuid.UUID) (*models.Booking, error) {
	return m.cancelFunc(ctx, bookingID, requesterID)
}

func (m *mockBookingRepo) RateBooking(ctx context.Context, bookingID, riderID uuid.UUID, req models.RateBookingRequest) (*models.Booking, error) {
	return m.rateFunc(ctx, bookingID, riderID, req)
}

func (m *mockBookingRepo) GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	return m.getFunc(ctx, bookingID)
}

func (m *mockBookingRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Booking, error) {
	return m.listUserFunc(ctx, userID)
}

func (m *mockBookingRepo) ListByRideID(ctx context.Context, rideID uuid.UUID) ([]*models.Booking, error) {
	return m.listRideFunc(ctx, rideID)
}

func (m *mockBookingRepo) GetRideDriverID(ctx context.Context, rideID uuid.UUID) (uuid.UUID, error) {
	return m.rideDriverFunc(ctx, rideID)
}

type mockBookingGW struct {
	createdErr   error
	cancelledErr error
	created      int
	cancelled    int
}

func (m *mockBookingGW) PublishBookingCreated(ctx context.Context, booking *models.Booking) error {
	m.created++
	return m.createdErr
}

func (m *mockBookingGW) PublishBookingCancelled(ctx context.Context, booking *models.Booking) error {
	m.cancelled++
	return m.cancelledErr
}

func TestCreateBookingValidation(t *testing.T) {
	uc := NewBookingUC(&models.Config{}, &mockBookingRepo{}, &mockBookingGW{})

	tests := []struct {
		name string
		req  models.CreateBookingRequest
	}{
		{name: "missing ride id", req: models.CreateBookingRequest{SeatCount: 1}},
		{name: "zero seats", req: models.CreateBookingRequest{RideID: uuid.New(), SeatCount: 0}},
		{name: "negative seats", req: models.CreateBookingRequest{RideID: uuid.New(), SeatCount: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking, err := uc.CreateBooking(context.Background(), uuid.New(), tt.req)

			assert.Nil(t, booking)
			assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
		})
	}
}

func TestCreateBookingPublishFailureIsNotFatal(t *testing.T) {
	booking := &models.Booking{ID: uuid.New(), RideID: uuid.New(), SeatCount: 1}
	repo := &mockBookingRepo{
		createFunc: func(ctx context.Context, riderID uuid.UUID, req models.CreateBookingRequest) (*models.Booking, error) {
			return booking, nil
		},
	}
	gw := &mockBookingGW{createdErr: errors.New("nats unavailable")}
	uc := NewBookingUC(&models.Config{}, repo, gw)

	got, err := uc.CreateBooking(context.Background(), uuid.New(), models.CreateBookingRequest{RideID: booking.RideID, SeatCount: 1})

	assert.NoError(t, err)
	assert.Equal(t, booking, got)
	assert.Equal(t, 1, gw.created)
}

func TestRateBookingValidation(t *testing.T) {
	uc := NewBookingUC(&models.Config{}, &mockBookingRepo{}, &mockBookingGW{})

	for _, rating := range []int{0, -1, 6} {
		booking, err := uc.RateBooking(context.Background(), uuid.New(), uuid.New(), models.RateBookingRequest{Rating: rating})

		assert.Nil(t, booking)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	}
}

func TestGetBookingVisibility(t *testing.T) {
	riderID := uuid.New()
	driverID := uuid.New()
	booking := &models.Booking{
		ID:     uuid.New(),
		UserID: riderID,
		Ride:   &models.Ride{DriverID: driverID},
	}
	repo := &mockBookingRepo{
		getFunc: func(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
			return booking, nil
		},
	}
	uc := NewBookingUC(&models.Config{}, repo, &mockBookingGW{})

	t.Run("rider can view", func(t *testing.T) {
		got, err := uc.GetBooking(context.Background(), booking.ID, riderID)
		assert.NoError(t, err)
		assert.Equal(t, booking, got)
	})

	t.Run("driver can view", func(t *testing.T) {
		got, err := uc.GetBooking(context.Background(), booking.ID, driverID)
		assert.NoError(t, err)
		assert.Equal(t, booking, got)
	})

	t.Run("stranger cannot view", func(t *testing.T) {
		got, err := uc.GetBooking(context.Background(), booking.ID, uuid.New())
		assert.Nil(t, got)
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})
}

func TestListRideBookingsOwnership(t *testing.T) {
	rideID := uuid.New()
	driverID := uuid.New()
	repo := &mockBookingRepo{
		rideDriverFunc: func(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
			return driverID, nil
		},
		listRideFunc: func(ctx context.Context, id uuid.UUID) ([]*models.Booking, error) {
			return []*models.Booking{{ID: uuid.New(), RideID: rideID}}, nil
		},
	}
	uc := NewBookingUC(&models.Config{}, repo, &mockBookingGW{})

	t.Run("owner lists bookings", func(t *testing.T) {
		list, err := uc.ListRideBookings(context.Background(), rideID, driverID)
		assert.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("other driver is rejected", func(t *testing.T) {
		list, err := uc.ListRideBookings(context.Background(), rideID, uuid.New())
		assert.Nil(t, list)
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})
}
