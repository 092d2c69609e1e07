package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spotroute/backend/internal/pkg/models"
)

// PaymentRepo defines the data access contract for the payment ledger.
// Ledger writes and the wallet updates they imply commit in the same
// transaction; the ledger itself is append-only.
type PaymentRepo interface {
	GetOrCreateVirtualAccount(ctx context.Context, driverID uuid.UUID) (*models.VirtualAccount, error)
	GetVirtualAccountByNumber(ctx context.Context, accountNumber string) (*models.VirtualAccount, error)

	FindTransactionByPaymentReference(ctx context.Context, paymentReference string) (*models.PaymentTransaction, error)
	RecordPaymentReceived(ctx context.Context, account *models.VirtualAccount, req models.PaymentReceivedRequest, split models.CommissionSplit) (*models.PaymentReceivedResult, error)
	RecordPayout(ctx context.Context, driverID uuid.UUID, amount decimal.Decimal, bankAccount *models.BankAccount) (*models.PaymentTransaction, error)

	GetBookingForPayment(ctx context.Context, bookingID uuid.UUID) (*models.Booking, uuid.UUID, error)

	UpsertBankAccount(ctx context.Context, driverID uuid.UUID, req models.BankAccountRequest) (*models.BankAccount, error)
	GetBankAccount(ctx context.Context, driverID uuid.UUID) (*models.BankAccount, error)
	GetWallet(ctx context.Context, driverID uuid.UUID) (*models.Wallet, error)
	GetDriverPaymentStats(ctx context.Context, driverID uuid.UUID) (*models.PaymentStats, error)
	ListTransactions(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*models.PaymentTransaction, error)

	GetCommissionSetting(ctx context.Context) (decimal.Decimal, bool, error)
	UpdateCommissionSetting(ctx context.Context, percentage decimal.Decimal) error

	InsertNotification(ctx context.Context, notification *models.Notification) error
}
