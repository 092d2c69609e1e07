package gateway

import (
	"context"
	"encoding/json"
	"time"

	natspkg "github.com/spotroute/backend/internal/pkg/nats"

	"github.com/spotroute/backend/internal/pkg/models"
)

// NATS subjects for booking lifecycle events
const (
	SubjectBookingCreated   = "bookings.created"
	SubjectBookingCancelled = "bookings.cancelled"
)

// BookingGW publishes booking events to NATS
type BookingGW struct {
	natsClient *natspkg.Client
}

// NewBookingGW creates a new booking gateway
func NewBookingGW(natsClient *natspkg.Client) *BookingGW {
	return &BookingGW{
		natsClient: natsClient,
	}
}

// PublishBookingCreated publishes a booking created event
func (g *BookingGW) PublishBookingCreated(ctx context.Context, booking *models.Booking) error {
	return g.publish(SubjectBookingCreated, booking)
}

// PublishBookingCancelled publishes a booking cancelled event
func (g *BookingGW) PublishBookingCancelled(ctx context.Context, booking *models.Booking) error {
	return g.publish(SubjectBookingCancelled, booking)
}

func (g *BookingGW) publish(subject string, booking *models.Booking) error {
	event := models.BookingEvent{
		BookingID: booking.ID,
		RideID:    booking.RideID,
		UserID:    booking.UserID,
		SeatCount: booking.SeatCount,
		Status:    booking.Status,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return g.natsClient.Publish(subject, data)
}
