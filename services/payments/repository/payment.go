package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/spotroute/backend/internal/pkg/apperrors"
	"github.com/spotroute/backend/internal/pkg/models"
)

const commissionSettingKey = "commission_percentage"

// PaymentRepo owns the payment ledger and the wallet rows it drives.
// Ledger rows are append-only; every write commits with its wallet update.
type PaymentRepo struct {
	cfg *models.Config
	db  *sqlx.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(cfg *models.Config, db *sqlx.DB) *PaymentRepo {
	return &PaymentRepo{
		cfg: cfg,
		db:  db,
	}
}

// GetOrCreateVirtualAccount returns the driver's virtual account, creating
// one with a fresh SR account number on first use
func (r *PaymentRepo) GetOrCreateVirtualAccount(ctx context.Context, driverID uuid.UUID) (*models.VirtualAccount, error) {
	account, err := r.getVirtualAccountByDriver(ctx, driverID)
	if err == nil {
		return account, nil
	}
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, err
	}

	var driverName string
	if err := r.db.GetContext(ctx, &driverName, `SELECT name FROM users WHERE id = $1 AND role = $2`, driverID, models.RoleDriver); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("driver not found")
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	// Account numbers collide rarely; retry with a fresh number.
	for attempt := 0; attempt < 5; attempt++ {
		account := &models.VirtualAccount{
			ID:            uuid.New(),
			DriverID:      driverID,
			AccountNumber: generateAccountNumber(),
			BankName:      r.cfg.Payments.VirtualBankName,
			BankCode:      r.cfg.Payments.VirtualBankCode,
			AccountName:   driverName,
			IsActive:      true,
			CreatedAt:     time.Now(),
		}

		_, err := r.db.ExecContext(ctx, `
			INSERT INTO virtual_accounts (id, driver_id, account_number, bank_name, bank_code, account_name, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, account.ID, account.DriverID, account.AccountNumber, account.BankName,
			account.BankCode, account.AccountName, account.IsActive, account.CreatedAt)
		if err == nil {
			return account, nil
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create virtual account: %w", err)
		}

		// A concurrent request may have created the driver's account.
		if existing, getErr := r.getVirtualAccountByDriver(ctx, driverID); getErr == nil {
			return existing, nil
		}
	}

	return nil, apperrors.DependencyFailure("could not allocate a virtual account number", nil)
}

// GetVirtualAccountByNumber resolves an active virtual account by its number
func (r *PaymentRepo) GetVirtualAccountByNumber(ctx context.Context, accountNumber string) (*models.VirtualAccount, error) {
	account := &models.VirtualAccount{}
	err := r.db.GetContext(ctx, account, `
		SELECT id, driver_id, account_number, bank_name, bank_code, account_name, is_active, created_at
		FROM virtual_accounts
		WHERE account_number = $1 AND is_active = TRUE
	`, accountNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("virtual account not found")
		}
		return nil, fmt.Errorf("failed to get virtual account: %w", err)
	}
	return account, nil
}

func (r *PaymentRepo) getVirtualAccountByDriver(ctx context.Context, driverID uuid.UUID) (*models.VirtualAccount, error) {
	account := &models.VirtualAccount{}
	err := r.db.GetContext(ctx, account, `
		SELECT id, driver_id, account_number, bank_name, bank_code, account_name, is_active, created_at
		FROM virtual_accounts
		WHERE driver_id = $1 AND is_active = TRUE
	`, driverID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("virtual account not found")
		}
		return nil, fmt.Errorf("failed to get virtual account: %w", err)
	}
	return account, nil
}

// FindTransactionByPaymentReference looks up the ledger entry recorded for a
// payment reference, if any
func (r *PaymentRepo) FindTransactionByPaymentReference(ctx context.Context, paymentReference string) (*models.PaymentTransaction, error) {
	txn := &models.PaymentTransaction{}
	err := r.db.GetContext(ctx, txn, `
		SELECT id, driver_id, virtual_account_id, booking_id, transaction_type, amount,
			commission_amount, commission_percentage, driver_amount, reference,
			payment_reference, status, description, metadata, created_at
		FROM payment_transactions
		WHERE payment_reference = $1
	`, paymentReference)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("transaction not found")
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return txn, nil
}

// RecordPaymentReceived writes the payment and commission ledger entries,
// credits the driver's wallet and marks the booking paid, all in one
// transaction. The unique payment reference makes replays fail as duplicates.
func (r *PaymentRepo) RecordPaymentReceived(ctx context.Context, account *models.VirtualAccount, req models.PaymentReceivedRequest, split models.CommissionSplit) (*models.PaymentReceivedResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.DependencyFailure("failed to begin transaction", err)
	}
	defer tx.Rollback()

	now := time.Now()
	paymentTxn := &models.PaymentTransaction{
		ID:                   uuid.New(),
		DriverID:             account.DriverID,
		VirtualAccountID:     &account.ID,
		BookingID:            req.BookingID,
		TransactionType:      models.TransactionPaymentReceived,
		Amount:               req.Amount,
		CommissionAmount:     split.CommissionAmount,
		CommissionPercentage: split.CommissionPercentage,
		DriverAmount:         split.DriverAmount,
		Reference:            newReference("PAY"),
		PaymentReference:     &req.PaymentReference,
		Status:               models.TransactionStatusSuccess,
		Description:          fmt.Sprintf("Payment received on virtual account %s", account.AccountNumber),
		Metadata:             req.Metadata,
		CreatedAt:            now,
	}

	if err := insertTransaction(ctx, tx, paymentTxn); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.DuplicatePayment("payment reference already processed")
		}
		return nil, fmt.Errorf("failed to insert payment transaction: %w", err)
	}

	commissionTxn := &models.PaymentTransaction{
		ID:                   uuid.New(),
		DriverID:             account.DriverID,
		VirtualAccountID:     &account.ID,
		BookingID:            req.BookingID,
		TransactionType:      models.TransactionCommissionDeducted,
		Amount:               split.CommissionAmount,
		CommissionAmount:     split.CommissionAmount,
		CommissionPercentage: split.CommissionPercentage,
		DriverAmount:         decimal.Zero,
		Reference:            newReference("COMM"),
		Status:               models.TransactionStatusSuccess,
		Description:          fmt.Sprintf("Commission deducted for payment %s", paymentTxn.Reference),
		Metadata:             models.Metadata{"payment_reference": req.PaymentReference},
		CreatedAt:            now,
	}

	if err := insertTransaction(ctx, tx, commissionTxn); err != nil {
		return nil, fmt.Errorf("failed to insert commission transaction: %w", err)
	}

	if err := creditWallet(ctx, tx, account.DriverID, split.DriverAmount, req.Amount); err != nil {
		return nil, err
	}

	if req.BookingID != nil {
		_, err := tx.ExecContext(ctx, `
			UPDATE bookings SET payment_status = $1 WHERE id = $2 AND payment_status = $3
		`, models.PaymentStatusPaid, *req.BookingID, models.PaymentStatusPending)
		if err != nil {
			return nil, fmt.Errorf("failed to mark booking paid: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.DependencyFailure("failed to commit payment", err)
	}

	return &models.PaymentReceivedResult{
		PaymentTransaction:    paymentTxn,
		CommissionTransaction: commissionTxn,
		DriverAmount:          split.DriverAmount,
		CommissionAmount:      split.CommissionAmount,
	}, nil
}

// RecordPayout moves money out of the driver's wallet. With a verified bank
// account the payout succeeds immediately; otherwise only a PENDING ledger
// row is recorded and the money stays in the wallet until the driver has a
// verified account and a payout is retried.
func (r *PaymentRepo) RecordPayout(ctx context.Context, driverID uuid.UUID, amount decimal.Decimal, bankAccount *models.BankAccount) (*models.PaymentTransaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.DependencyFailure("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := ensureWallet(ctx, tx, driverID); err != nil {
		return nil, err
	}

	var balance decimal.Decimal
	err = tx.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE driver_id = $1 FOR UPDATE`, driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}

	if balance.LessThan(amount) {
		return nil, apperrors.InvalidInput("insufficient wallet balance")
	}

	now := time.Now()
	payout := &models.PaymentTransaction{
		ID:              uuid.New(),
		DriverID:        driverID,
		TransactionType: models.TransactionDriverPayout,
		Amount:          amount,
		DriverAmount:    amount,
		Reference:       newReference("TRF"),
		CreatedAt:       now,
	}

	if bankAccount != nil && bankAccount.IsVerified {
		payout.Status = models.TransactionStatusSuccess
		payout.Description = fmt.Sprintf("Payout to %s %s", bankAccount.BankName, bankAccount.AccountNumber)
		payout.Metadata = models.Metadata{
			"bank_code":      bankAccount.BankCode,
			"account_number": bankAccount.AccountNumber,
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE wallets
			SET balance = GREATEST(balance - $1, 0), updated_at = $2
			WHERE driver_id = $3
		`, amount, now, driverID)
		if err != nil {
			return nil, fmt.Errorf("failed to update wallet: %w", err)
		}
	} else {
		// Awaiting bank setup: the balance is not debited, so the payout
		// can be retried once the account is verified.
		payout.Status = models.TransactionStatusPending
		payout.Description = "Payout held until a verified bank account is available"
		payout.Metadata = models.Metadata{}
	}

	if err := insertTransaction(ctx, tx, payout); err != nil {
		return nil, fmt.Errorf("failed to insert payout transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.DependencyFailure("failed to commit payout", err)
	}

	return payout, nil
}

// GetBookingForPayment loads a booking together with its ride's driver
func (r *PaymentRepo) GetBookingForPayment(ctx context.Context, bookingID uuid.UUID) (*models.Booking, uuid.UUID, error) {
	var row struct {
		ID            uuid.UUID       `db:"id"`
		RideID        uuid.UUID       `db:"ride_id"`
		UserID        uuid.UUID       `db:"user_id"`
		SeatCount     int             `db:"seat_count"`
		TotalPrice    decimal.Decimal `db:"total_price"`
		Status        string          `db:"status"`
		PaymentStatus string          `db:"payment_status"`
		CreatedAt     time.Time       `db:"created_at"`
		DriverID      uuid.UUID       `db:"driver_id"`
	}

	err := r.db.GetContext(ctx, &row, `
		SELECT b.id, b.ride_id, b.user_id, b.seat_count, b.total_price,
			b.status, b.payment_status, b.created_at, r.driver_id
		FROM bookings b
		JOIN rides r ON b.ride_id = r.id
		WHERE b.id = $1
	`, bookingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, uuid.Nil, apperrors.NotFound("booking not found")
		}
		return nil, uuid.Nil, fmt.Errorf("failed to get booking: %w", err)
	}

	booking := &models.Booking{
		ID:            row.ID,
		RideID:        row.RideID,
		UserID:        row.UserID,
		SeatCount:     row.SeatCount,
		TotalPrice:    row.TotalPrice,
		Status:        models.BookingStatus(row.Status),
		PaymentStatus: models.PaymentStatus(row.PaymentStatus),
		CreatedAt:     row.CreatedAt,
	}

	return booking, row.DriverID, nil
}

// UpsertBankAccount saves the driver's payout destination. Changing the
// account number resets verification.
func (r *PaymentRepo) UpsertBankAccount(ctx context.Context, driverID uuid.UUID, req models.BankAccountRequest) (*models.BankAccount, error) {
	now := time.Now()
	account := &models.BankAccount{
		ID:            uuid.New(),
		DriverID:      driverID,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
		BankCode:      req.BankCode,
		AccountName:   req.AccountName,
		IsVerified:    false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO bank_accounts (id, driver_id, account_number, bank_name, bank_code, account_name, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $7)
		ON CONFLICT (driver_id) DO UPDATE SET
			account_number = EXCLUDED.account_number,
			bank_name = EXCLUDED.bank_name,
			bank_code = EXCLUDED.bank_code,
			account_name = EXCLUDED.account_name,
			is_verified = CASE
				WHEN bank_accounts.account_number = EXCLUDED.account_number THEN bank_accounts.is_verified
				ELSE FALSE
			END,
			updated_at = EXCLUDED.updated_at
		RETURNING id, is_verified, created_at
	`, account.ID, driverID, req.AccountNumber, req.BankName, req.BankCode, req.AccountName, now).
		Scan(&account.ID, &account.IsVerified, &account.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save bank account: %w", err)
	}

	return account, nil
}

// GetBankAccount fetches the driver's payout destination
func (r *PaymentRepo) GetBankAccount(ctx context.Context, driverID uuid.UUID) (*models.BankAccount, error) {
	account := &models.BankAccount{}
	err := r.db.GetContext(ctx, account, `
		SELECT id, driver_id, account_number, bank_name, bank_code, account_name, is_verified, created_at, updated_at
		FROM bank_accounts
		WHERE driver_id = $1
	`, driverID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("bank account not found")
		}
		return nil, fmt.Errorf("failed to get bank account: %w", err)
	}
	return account, nil
}

// GetWallet fetches the driver's wallet, returning a zero wallet when none
// has been created yet
func (r *PaymentRepo) GetWallet(ctx context.Context, driverID uuid.UUID) (*models.Wallet, error) {
	wallet := &models.Wallet{}
	err := r.db.GetContext(ctx, wallet, `
		SELECT driver_id, balance, pending_balance, total_earnings, updated_at
		FROM wallets
		WHERE driver_id = $1
	`, driverID)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.Wallet{
				DriverID:       driverID,
				Balance:        decimal.Zero,
				PendingBalance: decimal.Zero,
				TotalEarnings:  decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return wallet, nil
}

// GetDriverPaymentStats aggregates the driver's ledger by transaction type
func (r *PaymentRepo) GetDriverPaymentStats(ctx context.Context, driverID uuid.UUID) (*models.PaymentStats, error) {
	stats := &models.PaymentStats{}
	err := r.db.GetContext(ctx, stats, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'PAYMENT_RECEIVED' AND status = 'SUCCESS'), 0) AS total_received,
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'COMMISSION_DEDUCTED' AND status = 'SUCCESS'), 0) AS total_commission,
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'DRIVER_PAYOUT' AND status = 'SUCCESS'), 0) AS total_paid_out,
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'DRIVER_PAYOUT' AND status = 'PENDING'), 0) AS pending_payout,
			COUNT(*) AS transaction_count
		FROM payment_transactions
		WHERE driver_id = $1
	`, driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment stats: %w", err)
	}
	return stats, nil
}

// ListTransactions pages through the driver's ledger, newest first
func (r *PaymentRepo) ListTransactions(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*models.PaymentTransaction, error) {
	var txns []*models.PaymentTransaction
	err := r.db.SelectContext(ctx, &txns, `
		SELECT id, driver_id, virtual_account_id, booking_id, transaction_type, amount,
			commission_amount, commission_percentage, driver_amount, reference,
			payment_reference, status, description, metadata, created_at
		FROM payment_transactions
		WHERE driver_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, driverID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

// GetCommissionSetting reads the configured commission percentage; the
// second return reports whether a setting row exists
func (r *PaymentRepo) GetCommissionSetting(ctx context.Context) (decimal.Decimal, bool, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `
		SELECT setting_value FROM company_settings WHERE setting_key = $1
	`, commissionSettingKey)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("failed to get commission setting: %w", err)
	}

	percentage, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("invalid commission setting %q: %w", value, err)
	}

	return percentage, true, nil
}

// UpdateCommissionSetting stores the commission percentage
func (r *PaymentRepo) UpdateCommissionSetting(ctx context.Context, percentage decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO company_settings (setting_key, setting_value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (setting_key) DO UPDATE SET
			setting_value = EXCLUDED.setting_value,
			updated_at = EXCLUDED.updated_at
	`, commissionSettingKey, percentage.String(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to update commission setting: %w", err)
	}
	return nil
}

// InsertNotification records a user notification
func (r *PaymentRepo) InsertNotification(ctx context.Context, notification *models.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, related_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, notification.ID, notification.UserID, notification.Type,
		notification.Title, notification.Message, notification.RelatedID)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func insertTransaction(ctx context.Context, tx *sqlx.Tx, txn *models.PaymentTransaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO payment_transactions (
			id, driver_id, virtual_account_id, booking_id, transaction_type, amount,
			commission_amount, commission_percentage, driver_amount, reference,
			payment_reference, status, description, metadata, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		txn.ID, txn.DriverID, txn.VirtualAccountID, txn.BookingID, txn.TransactionType,
		txn.Amount, txn.CommissionAmount, txn.CommissionPercentage, txn.DriverAmount,
		txn.Reference, txn.PaymentReference, txn.Status, txn.Description, txn.Metadata,
		txn.CreatedAt,
	)
	return err
}

func ensureWallet(ctx context.Context, tx *sqlx.Tx, driverID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (driver_id, balance, pending_balance, total_earnings, updated_at)
		VALUES ($1, 0, 0, 0, $2)
		ON CONFLICT (driver_id) DO NOTHING
	`, driverID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to ensure wallet: %w", err)
	}
	return nil
}

// creditWallet adds the driver's share to the withdrawable balance while
// total earnings accumulate the full payment, commission included.
func creditWallet(ctx context.Context, tx *sqlx.Tx, driverID uuid.UUID, driverAmount, paymentAmount decimal.Decimal) error {
	if err := ensureWallet(ctx, tx, driverID); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = balance + $1, total_earnings = total_earnings + $2, updated_at = $3
		WHERE driver_id = $4
	`, driverAmount, paymentAmount, time.Now(), driverID)
	if err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}
	return nil
}

func newReference(prefix string) string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return fmt.Sprintf("%s-%s", prefix, raw[:12])
}

func generateAccountNumber() string {
	return fmt.Sprintf("SR%08d", rand.Intn(100000000))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
