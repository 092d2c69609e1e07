package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/spotroute/backend/internal/pkg/apperrors"
	"github.com/spotroute/backend/internal/pkg/logger"
	"github.com/spotroute/backend/internal/pkg/models"
	"github.com/spotroute/backend/services/bookings"
)

// BookingUC implements the booking lifecycle business logic
type BookingUC struct {
	cfg         *models.Config
	bookingRepo bookings.BookingRepo
	bookingGW   bookings.BookingGW
}

// NewBookingUC creates a new booking usecase
func NewBookingUC(
	cfg *models.Config,
	bookingRepo bookings.BookingRepo,
	bookingGW bookings.BookingGW,
) *BookingUC {
	return &BookingUC{
		cfg:         cfg,
		bookingRepo: bookingRepo,
		bookingGW:   bookingGW,
	}
}

// CreateBooking validates the request and reserves seats atomically. The
// created event publishes after commit; a publish failure never fails the
// booking.
func (uc *BookingUC) CreateBooking(ctx context.Context, riderID uuid.UUID, req models.CreateBookingRequest) (*models.Booking, error) {
	if req.RideID == uuid.Nil {
		return nil, apperrors.InvalidInput("ride_id is required")
	}
	if req.SeatCount < 1 {
		return nil, apperrors.InvalidInput("seat_count must be at least 1")
	}

	booking, err := uc.bookingRepo.CreateBooking(ctx, riderID, req)
	if err != nil {
		return nil, err
	}

	if err := uc.bookingGW.PublishBookingCreated(ctx, booking); err != nil {
		logger.Error("Failed to publish booking created event",
			logger.Err(err),
			logger.String("booking_id", booking.ID.String()))
	}

	logger.Info("Booking created",
		logger.String("booking_id", booking.ID.String()),
		logger.String("ride_id", booking.RideID.String()),
		logger.Int("seat_count", booking.SeatCount))

	return booking, nil
}

// CancelBooking cancels a booking on behalf of its rider or the ride's
// driver and releases the reserved seats
func (uc *BookingUC) CancelBooking(ctx context.Context, bookingID, requesterID uuid.UUID, requesterRole string) (*models.Booking, error) {
	booking, err := uc.bookingRepo.CancelBooking(ctx, bookingID, requesterID)
	if err != nil {
		return nil, err
	}

	if err := uc.bookingGW.PublishBookingCancelled(ctx, booking); err != nil {
		logger.Error("Failed to publish booking cancelled event",
			logger.Err(err),
			logger.String("booking_id", booking.ID.String()))
	}

	logger.Info("Booking cancelled",
		logger.String("booking_id", booking.ID.String()),
		logger.String("requester_role", requesterRole))

	return booking, nil
}

// RateBooking records a 1-5 rating on the booking and updates the driver's
// aggregate rating
func (uc *BookingUC) RateBooking(ctx context.Context, bookingID, riderID uuid.UUID, req models.RateBookingRequest) (*models.Booking, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	return uc.bookingRepo.RateBooking(ctx, bookingID, riderID, req)
}

// GetBooking fetches a booking, visible only to its rider or the ride's driver
func (uc *BookingUC) GetBooking(ctx context.Context, bookingID, requesterID uuid.UUID) (*models.Booking, error) {
	booking, err := uc.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != requesterID && (booking.Ride == nil || booking.Ride.DriverID != requesterID) {
		return nil, apperrors.Forbidden("you are not allowed to view this booking")
	}

	return booking, nil
}

// ListUserBookings lists the caller's own bookings
func (uc *BookingUC) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]*models.Booking, error) {
	return uc.bookingRepo.ListByUserID(ctx, userID)
}

// ListRideBookings lists all bookings on a ride; only that ride's driver may
// call it
func (uc *BookingUC) ListRideBookings(ctx context.Context, rideID, driverID uuid.UUID) ([]*models.Booking, error) {
	ownerID, err := uc.bookingRepo.GetRideDriverID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ownerID != driverID {
		return nil, apperrors.Forbidden("only the ride driver can list its bookings")
	}

	return uc.bookingRepo.ListByRideID(ctx, rideID)
}
