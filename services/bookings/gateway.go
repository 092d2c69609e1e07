package bookings

import (
	"context"

	"github.com/spotroute/backend/internal/pkg/models"
)

// BookingGW publishes booking domain events after the owning transaction
// commits. Publish failures are logged by callers, never propagated.
type BookingGW interface {
	PublishBookingCreated(ctx context.Context, booking *models.Booking) error
	PublishBookingCancelled(ctx context.Context, booking *models.Booking) error
}
