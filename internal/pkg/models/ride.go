package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RideStatus represents the status of a ride
type RideStatus string

const (
	RideStatusScheduled  RideStatus = "SCHEDULED"
	RideStatusInProgress RideStatus = "IN_PROGRESS"
	RideStatusCompleted  RideStatus = "COMPLETED"
	RideStatusCancelled  RideStatus = "CANCELLED"
)

// Route represents a fixed route rides are announced on
type Route struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Origin       string          `json:"origin" db:"origin"`
	Destination  string          `json:"destination" db:"destination"`
	Price        decimal.Decimal `json:"price" db:"price"`
	DistanceKm   float64         `json:"distance_km" db:"distance_km"`
	DurationMins int             `json:"duration_mins" db:"duration_mins"`
}

// PickupPoint is a named boarding location along a route
type PickupPoint struct {
	ID      uuid.UUID `json:"id" db:"id"`
	RouteID uuid.UUID `json:"route_id" db:"route_id"`
	Name    string    `json:"name" db:"name"`
	Lat     float64   `json:"lat" db:"lat"`
	Lng     float64   `json:"lng" db:"lng"`
}

// Ride represents a driver-announced ride along a route.
// AvailableSeats is mutated only inside booking transactions that hold
// an exclusive lock on the ride row.
type Ride struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	DriverID       uuid.UUID  `json:"driver_id" db:"driver_id"`
	RouteID        uuid.UUID  `json:"route_id" db:"route_id"`
	DepartureTime  time.Time  `json:"departure_time" db:"departure_time"`
	AvailableSeats int        `json:"available_seats" db:"available_seats"`
	TotalSeats     int        `json:"total_seats" db:"total_seats"`
	Status         RideStatus `json:"status" db:"status"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`

	Route        *Route        `json:"route,omitempty" db:"-"`
	Driver       *User         `json:"driver,omitempty" db:"-"`
	PickupPoints []PickupPoint `json:"pickup_points,omitempty" db:"-"`
}

// CreateRideRequest is the payload for announcing a ride
type CreateRideRequest struct {
	RouteID        uuid.UUID   `json:"route_id"`
	DepartureTime  string      `json:"departure_time"`
	TotalSeats     int         `json:"total_seats"`
	PickupPointIDs []uuid.UUID `json:"pickup_point_ids"`
}

// UpdateRideStatusRequest is the payload for a driver-driven status change
type UpdateRideStatusRequest struct {
	Status RideStatus `json:"status"`
}
