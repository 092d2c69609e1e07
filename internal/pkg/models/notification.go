package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types
const (
	NotificationBookingConfirmed = "BOOKING_CONFIRMED"
	NotificationBookingCancelled = "BOOKING_CANCELLED"
	NotificationPaymentReceived  = "PAYMENT_RECEIVED"
	NotificationPayoutProcessed  = "PAYOUT_PROCESSED"
)

// Notification is a user-facing notification recorded as a side effect of
// booking and payment events
type Notification struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Type      string     `json:"type" db:"type"`
	Title     string     `json:"title" db:"title"`
	Message   string     `json:"message" db:"message"`
	RelatedID *uuid.UUID `json:"related_id,omitempty" db:"related_id"`
	IsRead    bool       `json:"is_read" db:"is_read"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
