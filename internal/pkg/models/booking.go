package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Rating is a rider's rating of a completed booking, embedded in the booking
type Rating struct {
	Rating     int       `json:"rating"`
	Compliment *string   `json:"compliment,omitempty"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Booking represents seats reserved by a rider on a ride.
// SeatCount and TotalPrice are immutable after creation; only status,
// payment status and the rating fields mutate.
type Booking struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	RideID        uuid.UUID       `json:"ride_id" db:"ride_id"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
	PickupPointID *uuid.UUID      `json:"pickup_point_id,omitempty" db:"pickup_point_id"`
	SeatCount     int             `json:"seat_count" db:"seat_count"`
	TotalPrice    decimal.Decimal `json:"total_price" db:"total_price"`
	Status        BookingStatus   `json:"status" db:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status" db:"payment_status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`

	Rating *Rating `json:"rating,omitempty" db:"-"`
	Ride   *Ride   `json:"ride,omitempty" db:"-"`
}

// CreateBookingRequest is the payload for booking seats on a ride
type CreateBookingRequest struct {
	RideID        uuid.UUID  `json:"ride_id"`
	SeatCount     int        `json:"seat_count"`
	PickupPointID *uuid.UUID `json:"pickup_point_id,omitempty"`
}

// RateBookingRequest is the payload for rating a booking
type RateBookingRequest struct {
	Rating     int     `json:"rating"`
	Compliment *string `json:"compliment,omitempty"`
	Comment    *string `json:"comment,omitempty"`
}
