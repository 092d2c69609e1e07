package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spotroute/backend/internal/pkg/models"
)

// PaymentUC defines the interface for payment business logic. Payments are
// recorded exactly once per payment reference; replays return the original
// outcome as a duplicate.
type PaymentUC interface {
	GetOrCreateVirtualAccount(ctx context.Context, driverID uuid.UUID) (*models.VirtualAccount, error)
	ConfirmTransfer(ctx context.Context, riderID uuid.UUID, req models.ConfirmTransferRequest) (*models.ConfirmTransferResult, error)
	ProcessPaymentReceived(ctx context.Context, req models.PaymentReceivedRequest) (*models.PaymentReceivedResult, error)
	HandleWebhook(ctx context.Context, req models.PaymentReceivedRequest) error

	RequestPayout(ctx context.Context, driverID uuid.UUID, req models.PayoutRequest) (*models.PaymentTransaction, error)
	SaveBankAccount(ctx context.Context, driverID uuid.UUID, req models.BankAccountRequest) (*models.BankAccount, error)
	GetBankAccount(ctx context.Context, driverID uuid.UUID) (*models.BankAccount, error)
	GetWallet(ctx context.Context, driverID uuid.UUID) (*models.Wallet, error)
	GetDriverPaymentStats(ctx context.Context, driverID uuid.UUID) (*models.PaymentStats, error)
	ListTransactions(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*models.PaymentTransaction, error)

	GetCommissionPercentage(ctx context.Context) (decimal.Decimal, error)
	UpdateCommissionPercentage(ctx context.Context, percentage decimal.Decimal) error
}
