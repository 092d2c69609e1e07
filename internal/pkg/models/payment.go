package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry
type TransactionType string

const (
	TransactionPaymentReceived    TransactionType = "PAYMENT_RECEIVED"
	TransactionCommissionDeducted TransactionType = "COMMISSION_DEDUCTED"
	TransactionDriverPayout       TransactionType = "DRIVER_PAYOUT"
	TransactionRefund             TransactionType = "REFUND"
)

// TransactionStatus represents the state of a ledger entry.
// Rows are append-only; only PENDING entries transition to SUCCESS/FAILED.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "PENDING"
	TransactionStatusSuccess    TransactionStatus = "SUCCESS"
	TransactionStatusFailed     TransactionStatus = "FAILED"
	TransactionStatusProcessing TransactionStatus = "PROCESSING"
)

// Metadata is a free-form JSON blob attached to a ledger entry
type Metadata map[string]interface{}

// Value implements driver.Valuer for JSONB storage
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = Metadata{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}
}

// PaymentTransaction is one row in the append-only payment ledger
type PaymentTransaction struct {
	ID                   uuid.UUID         `json:"id" db:"id"`
	DriverID             uuid.UUID         `json:"driver_id" db:"driver_id"`
	VirtualAccountID     *uuid.UUID        `json:"virtual_account_id,omitempty" db:"virtual_account_id"`
	BookingID            *uuid.UUID        `json:"booking_id,omitempty" db:"booking_id"`
	TransactionType      TransactionType   `json:"transaction_type" db:"transaction_type"`
	Amount               decimal.Decimal   `json:"amount" db:"amount"`
	CommissionAmount     decimal.Decimal   `json:"commission_amount" db:"commission_amount"`
	CommissionPercentage decimal.Decimal   `json:"commission_percentage" db:"commission_percentage"`
	DriverAmount         decimal.Decimal   `json:"driver_amount" db:"driver_amount"`
	Reference            string            `json:"reference" db:"reference"`
	PaymentReference     *string           `json:"payment_reference,omitempty" db:"payment_reference"`
	Status               TransactionStatus `json:"status" db:"status"`
	Description          string            `json:"description" db:"description"`
	Metadata             Metadata          `json:"metadata" db:"metadata"`
	CreatedAt            time.Time         `json:"created_at" db:"created_at"`
}

// VirtualAccount is the platform-issued account a driver receives rider
// payments on, distinct from the driver's real bank account
type VirtualAccount struct {
	ID            uuid.UUID `json:"id" db:"id"`
	DriverID      uuid.UUID `json:"driver_id" db:"driver_id"`
	AccountNumber string    `json:"account_number" db:"account_number"`
	BankName      string    `json:"bank_name" db:"bank_name"`
	BankCode      string    `json:"bank_code" db:"bank_code"`
	AccountName   string    `json:"account_name" db:"account_name"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// BankAccount is a driver's real payout destination; IsVerified gates payouts
type BankAccount struct {
	ID            uuid.UUID `json:"id" db:"id"`
	DriverID      uuid.UUID `json:"driver_id" db:"driver_id"`
	AccountNumber string    `json:"account_number" db:"account_number"`
	BankName      string    `json:"bank_name" db:"bank_name"`
	BankCode      string    `json:"bank_code" db:"bank_code"`
	AccountName   string    `json:"account_name" db:"account_name"`
	IsVerified    bool      `json:"is_verified" db:"is_verified"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// PaymentReceivedRequest is the idempotent entry point payload for inbound
// payments, from explicit rider confirmation or the provider webhook
type PaymentReceivedRequest struct {
	VirtualAccountNumber string          `json:"virtual_account_number"`
	Amount               decimal.Decimal `json:"amount"`
	PaymentReference     string          `json:"payment_reference"`
	BookingID            *uuid.UUID      `json:"booking_id,omitempty"`
	Metadata             Metadata        `json:"metadata,omitempty"`
}

// PaymentReceivedResult reports the recorded split for a processed payment
type PaymentReceivedResult struct {
	PaymentTransaction    *PaymentTransaction `json:"payment_transaction"`
	CommissionTransaction *PaymentTransaction `json:"commission_transaction"`
	DriverAmount          decimal.Decimal     `json:"driver_amount"`
	CommissionAmount      decimal.Decimal     `json:"commission_amount"`
}

// CommissionSplit is the outcome of splitting an amount at the current rate
type CommissionSplit struct {
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	CommissionAmount     decimal.Decimal `json:"commission_amount"`
	DriverAmount         decimal.Decimal `json:"driver_amount"`
}

// ConfirmTransferRequest is the rider-facing payment confirmation payload
type ConfirmTransferRequest struct {
	BookingID        uuid.UUID       `json:"booking_id"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentReference string          `json:"payment_reference"`
	Narration        string          `json:"narration,omitempty"`
}

// ConfirmTransferResult carries the updated booking and the recorded split
type ConfirmTransferResult struct {
	Booking          *Booking        `json:"booking"`
	DriverAmount     decimal.Decimal `json:"driver_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
}

// PayoutRequest is the driver-initiated payout payload
type PayoutRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// BankAccountRequest is the payload for saving a payout destination
type BankAccountRequest struct {
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	BankCode      string `json:"bank_code"`
	AccountName   string `json:"account_name"`
}

// PaymentStats aggregates a driver's SUCCESS ledger entries by type plus
// the pending payout total
type PaymentStats struct {
	TotalReceived    decimal.Decimal `json:"total_received" db:"total_received"`
	TotalCommission  decimal.Decimal `json:"total_commission" db:"total_commission"`
	TotalPaidOut     decimal.Decimal `json:"total_paid_out" db:"total_paid_out"`
	PendingPayout    decimal.Decimal `json:"pending_payout" db:"pending_payout"`
	TransactionCount int             `json:"transaction_count" db:"transaction_count"`
}

// PaymentEvent is published after a payment is durably recorded
type PaymentEvent struct {
	TransactionID    uuid.UUID       `json:"transaction_id"`
	DriverID         uuid.UUID       `json:"driver_id"`
	BookingID        *uuid.UUID      `json:"booking_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	DriverAmount     decimal.Decimal `json:"driver_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	Timestamp        time.Time       `json:"timestamp"`
}

// BookingEvent is published after a booking transaction commits
type BookingEvent struct {
	BookingID uuid.UUID     `json:"booking_id"`
	RideID    uuid.UUID     `json:"ride_id"`
	UserID    uuid.UUID     `json:"user_id"`
	SeatCount int           `json:"seat_count"`
	Status    BookingStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}
