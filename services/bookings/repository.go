package bookings

import (
	"context"

	"github.com/google/uuid"

	"github.com/spotroute/backend/internal/pkg/models"
)

// BookingRepo defines the data access contract for the booking lifecycle.
// Seat inventory mutations happen only inside the transactions these methods
// own, under an exclusive lock on the ride row.
type BookingRepo interface {
	CreateBooking(ctx context.Context, riderID uuid.UUID, req models.CreateBookingRequest) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, requesterID uuid.UUID) (*models.Booking, error)
	RateBooking(ctx context.Context, bookingID, riderID uuid.UUID, req models.RateBookingRequest) (*models.Booking, error)
	GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Booking, error)
	ListByRideID(ctx context.Context, rideID uuid.UUID) ([]*models.Booking, error)
	GetRideDriverID(ctx context.Context, rideID uuid.UUID) (uuid.UUID, error)
}
