package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User roles
const (
	RoleRider  = "RIDER"
	RoleDriver = "DRIVER"
	RoleAdmin  = "ADMIN"
)

// User represents a registered rider or driver
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CarModel     *string   `json:"car_model,omitempty" db:"car_model"`
	CarPlate     *string   `json:"car_plate,omitempty" db:"car_plate"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Wallet holds a driver's withdrawable and lifetime earnings.
// Mutated only by the payments service.
type Wallet struct {
	DriverID       uuid.UUID       `json:"driver_id" db:"driver_id"`
	Balance        decimal.Decimal `json:"balance" db:"balance"`
	PendingBalance decimal.Decimal `json:"pending_balance" db:"pending_balance"`
	TotalEarnings  decimal.Decimal `json:"total_earnings" db:"total_earnings"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// DriverProfile is the driver's aggregate rating profile
type DriverProfile struct {
	DriverID       uuid.UUID `json:"driver_id" db:"driver_id"`
	TripsCompleted int       `json:"trips_completed" db:"trips_completed"`
	OverallRating  float64   `json:"overall_rating" db:"overall_rating"`
	TotalRatings   int       `json:"total_ratings" db:"total_ratings"`
	JoinDate       time.Time `json:"join_date" db:"join_date"`
}

// DriverRating is one entry in a driver's recent-ratings list (capped at 50)
type DriverRating struct {
	ID         uuid.UUID `json:"id" db:"id"`
	DriverID   uuid.UUID `json:"driver_id" db:"driver_id"`
	BookingID  uuid.UUID `json:"booking_id" db:"booking_id"`
	Rating     int       `json:"rating" db:"rating"`
	Compliment *string   `json:"compliment,omitempty" db:"compliment"`
	Comment    *string   `json:"comment,omitempty" db:"comment"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// RegisterRequest is the payload for user registration
type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	CarModel *string `json:"car_model,omitempty"`
	CarPlate *string `json:"car_plate,omitempty"`
}

// LoginRequest is the payload for user login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries a signed token and the authenticated user
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	User      *User  `json:"user"`
}
