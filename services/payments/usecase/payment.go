package usecase

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spotroute/backend/internal/pkg/apperrors"
	"github.com/spotroute/backend/internal/pkg/logger"
	"github.com/spotroute/backend/internal/pkg/models"
	"github.com/spotroute/backend/services/payments"
)

const commissionCacheKey = "payments:commission_percentage"

const (
	defaultTransactionPageSize = 20
	maxTransactionPageSize     = 100
)

// CommissionCache caches the commission percentage between settings reads
type CommissionCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// PaymentUC implements the payment business logic
type PaymentUC struct {
	cfg         *models.Config
	paymentRepo payments.PaymentRepo
	paymentGW   payments.PaymentGW
	cache       CommissionCache
}

// NewPaymentUC creates a new payment usecase
func NewPaymentUC(
	cfg *models.Config,
	paymentRepo payments.PaymentRepo,
	paymentGW payments.PaymentGW,
	cache CommissionCache,
) *PaymentUC {
	return &PaymentUC{
		cfg:         cfg,
		paymentRepo: paymentRepo,
		paymentGW:   paymentGW,
		cache:       cache,
	}
}

// GetOrCreateVirtualAccount returns the driver's virtual account
func (uc *PaymentUC) GetOrCreateVirtualAccount(ctx context.Context, driverID uuid.UUID) (*models.VirtualAccount, error) {
	return uc.paymentRepo.GetOrCreateVirtualAccount(ctx, driverID)
}

// GetCommissionPercentage resolves the current commission rate: cache, then
// company settings, then the configured default
func (uc *PaymentUC) GetCommissionPercentage(ctx context.Context) (decimal.Decimal, error) {
	if uc.cacheEnabled() {
		cached, err := uc.cache.Get(ctx, commissionCacheKey)
		if err == nil {
			if pct, parseErr := decimal.NewFromString(cached); parseErr == nil {
				return pct, nil
			}
		} else if err != redis.Nil {
			logger.Warn("Commission cache read failed", logger.Err(err))
		}
	}

	pct, found, err := uc.paymentRepo.GetCommissionSetting(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		pct = decimal.NewFromFloat(uc.cfg.Payments.DefaultCommissionPercent)
	}

	if uc.cacheEnabled() {
		ttl := time.Duration(uc.cfg.Payments.CommissionCacheTTL) * time.Second
		if err := uc.cache.Set(ctx, commissionCacheKey, pct.String(), ttl); err != nil {
			logger.Warn("Commission cache write failed", logger.Err(err))
		}
	}

	return pct, nil
}

// UpdateCommissionPercentage stores a new commission rate and invalidates
// the cache
func (uc *PaymentUC) UpdateCommissionPercentage(ctx context.Context, percentage decimal.Decimal) error {
	if percentage.IsNegative() || percentage.GreaterThan(decimal.NewFromInt(100)) {
		return apperrors.InvalidInput("commission percentage must be between 0 and 100")
	}

	if err := uc.paymentRepo.UpdateCommissionSetting(ctx, percentage); err != nil {
		return err
	}

	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, commissionCacheKey); err != nil {
			logger.Warn("Commission cache invalidation failed", logger.Err(err))
		}
	}

	logger.Info("Commission percentage updated",
		logger.String("percentage", percentage.String()))

	return nil
}

// CalculateCommission splits an amount at the given rate, rounding the
// commission to the cent; the driver amount absorbs the remainder
func CalculateCommission(amount, percentage decimal.Decimal) models.CommissionSplit {
	commission := amount.Mul(percentage).Div(decimal.NewFromInt(100)).Round(2)
	return models.CommissionSplit{
		CommissionPercentage: percentage,
		CommissionAmount:     commission,
		DriverAmount:         amount.Sub(commission),
	}
}

// ProcessPaymentReceived records an inbound payment exactly once per payment
// reference and settles the wallet. Payout, notification and event publish
// run after commit and never fail the payment.
func (uc *PaymentUC) ProcessPaymentReceived(ctx context.Context, req models.PaymentReceivedRequest) (*models.PaymentReceivedResult, error) {
	if req.PaymentReference == "" {
		return nil, apperrors.InvalidInput("payment_reference is required")
	}
	if !req.Amount.IsPositive() {
		return nil, apperrors.InvalidInput("amount must be positive")
	}

	account, err := uc.paymentRepo.GetVirtualAccountByNumber(ctx, req.VirtualAccountNumber)
	if err != nil {
		return nil, err
	}

	if _, err := uc.paymentRepo.FindTransactionByPaymentReference(ctx, req.PaymentReference); err == nil {
		return nil, apperrors.DuplicatePayment("payment reference already processed")
	} else if !apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, err
	}

	pct, err := uc.GetCommissionPercentage(ctx)
	if err != nil {
		return nil, err
	}
	split := CalculateCommission(req.Amount, pct)

	result, err := uc.paymentRepo.RecordPaymentReceived(ctx, account, req, split)
	if err != nil {
		return nil, err
	}

	logger.Info("Payment recorded",
		logger.String("driver_id", account.DriverID.String()),
		logger.String("payment_reference", req.PaymentReference),
		logger.String("amount", req.Amount.String()),
		logger.String("driver_amount", split.DriverAmount.String()))

	uc.settleAfterPayment(ctx, account.DriverID, result)

	return result, nil
}

// settleAfterPayment runs the best-effort follow-ups to a recorded payment
func (uc *PaymentUC) settleAfterPayment(ctx context.Context, driverID uuid.UUID, result *models.PaymentReceivedResult) {
	bankAccount, err := uc.paymentRepo.GetBankAccount(ctx, driverID)
	if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
		logger.Error("Failed to load bank account for payout",
			logger.Err(err),
			logger.String("driver_id", driverID.String()))
		bankAccount = nil
	}

	payout, err := uc.paymentRepo.RecordPayout(ctx, driverID, result.DriverAmount, bankAccount)
	if err != nil {
		logger.Error("Automatic payout failed",
			logger.Err(err),
			logger.String("driver_id", driverID.String()),
			logger.String("amount", result.DriverAmount.String()))
	} else {
		logger.Info("Automatic payout recorded",
			logger.String("driver_id", driverID.String()),
			logger.String("reference", payout.Reference),
			logger.String("status", string(payout.Status)))
	}

	txnID := result.PaymentTransaction.ID
	notification := &models.Notification{
		ID:        uuid.New(),
		UserID:    driverID,
		Type:      models.NotificationPaymentReceived,
		Title:     "Payment Received",
		Message:   "You received a payment of " + result.PaymentTransaction.Amount.StringFixed(2),
		RelatedID: &txnID,
	}
	if err := uc.paymentRepo.InsertNotification(ctx, notification); err != nil {
		logger.Error("Failed to record payment notification",
			logger.Err(err),
			logger.String("driver_id", driverID.String()))
	}

	event := models.PaymentEvent{
		TransactionID:    result.PaymentTransaction.ID,
		DriverID:         driverID,
		BookingID:        result.PaymentTransaction.BookingID,
		Amount:           result.PaymentTransaction.Amount,
		DriverAmount:     result.DriverAmount,
		CommissionAmount: result.CommissionAmount,
		Timestamp:        time.Now(),
	}
	if err := uc.paymentGW.PublishPaymentProcessed(ctx, event); err != nil {
		logger.Error("Failed to publish payment event",
			logger.Err(err),
			logger.String("transaction_id", event.TransactionID.String()))
	}
}

// HandleWebhook processes a provider payment notification. Webhook delivery
// is at-least-once, so duplicates and failures are absorbed; the provider
// always gets an acknowledgement.
func (uc *PaymentUC) HandleWebhook(ctx context.Context, req models.PaymentReceivedRequest) error {
	_, err := uc.ProcessPaymentReceived(ctx, req)
	if err == nil {
		return nil
	}

	if apperrors.IsKind(err, apperrors.KindDuplicatePayment) {
		logger.Info("Webhook replay ignored",
			logger.String("payment_reference", req.PaymentReference))
		return nil
	}

	logger.Error("Webhook payment processing failed",
		logger.Err(err),
		logger.String("payment_reference", req.PaymentReference),
		logger.String("virtual_account", req.VirtualAccountNumber))

	return nil
}

// ConfirmTransfer is the rider-facing payment confirmation for a booking
func (uc *PaymentUC) ConfirmTransfer(ctx context.Context, riderID uuid.UUID, req models.ConfirmTransferRequest) (*models.ConfirmTransferResult, error) {
	if req.PaymentReference == "" {
		return nil, apperrors.InvalidInput("payment_reference is required")
	}

	booking, driverID, err := uc.paymentRepo.GetBookingForPayment(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != riderID {
		return nil, apperrors.Forbidden("you can only pay for your own bookings")
	}
	if booking.Status == models.BookingStatusCancelled {
		return nil, apperrors.InvalidState("cannot pay for a cancelled booking")
	}
	if booking.PaymentStatus == models.PaymentStatusPaid {
		return nil, apperrors.DuplicatePayment("booking is already paid")
	}
	if !req.Amount.Equal(booking.TotalPrice) {
		return nil, apperrors.InvalidInput("amount does not match the booking total")
	}

	account, err := uc.paymentRepo.GetOrCreateVirtualAccount(ctx, driverID)
	if err != nil {
		return nil, err
	}

	metadata := models.Metadata{"source": "transfer_confirmation"}
	if req.Narration != "" {
		metadata["narration"] = req.Narration
	}

	bookingID := booking.ID
	result, err := uc.ProcessPaymentReceived(ctx, models.PaymentReceivedRequest{
		VirtualAccountNumber: account.AccountNumber,
		Amount:               req.Amount,
		PaymentReference:     req.PaymentReference,
		BookingID:            &bookingID,
		Metadata:             metadata,
	})
	if err != nil {
		return nil, err
	}

	booking.PaymentStatus = models.PaymentStatusPaid

	return &models.ConfirmTransferResult{
		Booking:          booking,
		DriverAmount:     result.DriverAmount,
		CommissionAmount: result.CommissionAmount,
	}, nil
}

// RequestPayout withdraws from the driver's wallet to their bank account
func (uc *PaymentUC) RequestPayout(ctx context.Context, driverID uuid.UUID, req models.PayoutRequest) (*models.PaymentTransaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.InvalidInput("amount must be positive")
	}

	bankAccount, err := uc.paymentRepo.GetBankAccount(ctx, driverID)
	if err != nil {
		if !apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, err
		}
		bankAccount = nil
	}

	payout, err := uc.paymentRepo.RecordPayout(ctx, driverID, req.Amount, bankAccount)
	if err != nil {
		return nil, err
	}

	if payout.Status == models.TransactionStatusSuccess {
		payoutID := payout.ID
		notification := &models.Notification{
			ID:        uuid.New(),
			UserID:    driverID,
			Type:      models.NotificationPayoutProcessed,
			Title:     "Payout Processed",
			Message:   "Your payout of " + payout.Amount.StringFixed(2) + " has been processed",
			RelatedID: &payoutID,
		}
		if err := uc.paymentRepo.InsertNotification(ctx, notification); err != nil {
			logger.Error("Failed to record payout notification",
				logger.Err(err),
				logger.String("driver_id", driverID.String()))
		}
	}

	return payout, nil
}

// SaveBankAccount stores the driver's payout destination
func (uc *PaymentUC) SaveBankAccount(ctx context.Context, driverID uuid.UUID, req models.BankAccountRequest) (*models.BankAccount, error) {
	if req.AccountNumber == "" || req.BankName == "" || req.BankCode == "" || req.AccountName == "" {
		return nil, apperrors.InvalidInput("account_number, bank_name, bank_code and account_name are required")
	}

	return uc.paymentRepo.UpsertBankAccount(ctx, driverID, req)
}

// GetBankAccount fetches the driver's payout destination
func (uc *PaymentUC) GetBankAccount(ctx context.Context, driverID uuid.UUID) (*models.BankAccount, error) {
	return uc.paymentRepo.GetBankAccount(ctx, driverID)
}

// GetWallet fetches the driver's wallet
func (uc *PaymentUC) GetWallet(ctx context.Context, driverID uuid.UUID) (*models.Wallet, error) {
	return uc.paymentRepo.GetWallet(ctx, driverID)
}

// GetDriverPaymentStats aggregates the driver's ledger
func (uc *PaymentUC) GetDriverPaymentStats(ctx context.Context, driverID uuid.UUID) (*models.PaymentStats, error) {
	return uc.paymentRepo.GetDriverPaymentStats(ctx, driverID)
}

// ListTransactions pages through the driver's ledger
func (uc *PaymentUC) ListTransactions(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*models.PaymentTransaction, error) {
	if limit <= 0 {
		limit = defaultTransactionPageSize
	}
	if limit > maxTransactionPageSize {
		limit = maxTransactionPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return uc.paymentRepo.ListTransactions(ctx, driverID, limit, offset)
}

func (uc *PaymentUC) cacheEnabled() bool {
	return uc.cache != nil && uc.cfg.Payments.CommissionCacheTTL > 0
}
