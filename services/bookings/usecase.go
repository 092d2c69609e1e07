package bookings

import (
	"context"

	"github.com/google/uuid"

	"github.com/spotroute/backend/internal/pkg/models"
)

// BookingUC defines the interface for booking lifecycle business logic
type BookingUC interface {
	CreateBooking(ctx context.Context, riderID uuid.UUID, req models.CreateBookingRequest) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, requesterID uuid.UUID, requesterRole string) (*models.Booking, error)
	RateBooking(ctx context.Context, bookingID, riderID uuid.UUID, req models.RateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID, requesterID uuid.UUID) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID uuid.UUID) ([]*models.Booking, error)
	ListRideBookings(ctx context.Context, rideID, driverID uuid.UUID) ([]*models.Booking, error)
}
