package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotroute/backend/internal/pkg/apperrors"
	"github.com/spotroute/backend/internal/pkg/models"
)

type mockPaymentRepo struct {
	getOrCreateVAFunc  func(ctx context.Context, driverID uuid.UUID) (*models.VirtualAccount, error)
	getVAByNumberFunc  func(ctx context.Context, accountNumber string) (*models.VirtualAccount, error)
	findByPayRefFunc   func(ctx context.Context, paymentReference string) (*models.PaymentTransaction, error)
	recordPaymentFunc  func(ctx context.Context, account *models.VirtualAccount, req models.PaymentReceivedRequest, split models.CommissionSplit) (*models.PaymentReceivedResult, error)
	recordPayoutFunc   func(ctx context.Context, driverID uuid.UUID, amount decimal.Decimal, bankAccount *models.BankAccount) (*models.PaymentTransaction, error)
	getBookingFunc     func(ctx context.Context, bookingID uuid.UUID) (*models.Booking, uuid.UUID, error)
	getBankAccountFunc func(ctx context.Context, driverID uuid.UUID) (*models.BankAccount, error)
	getCommissionFunc  func(ctx context.Context) (decimal.Decimal, bool, error)

	notifications []*models.Notification
}

func (m *mockPaymentRepo) GetOrCreateVirtualAccount(ctx context.Context, driverID uuid.UUID) (*models.VirtualAccount, error) {
	return m.getOrCreateVAFunc(ctx, driverID)
}

func (m *mockPaymentRepo) GetVirtualAccountByNumber(ctx context.Context, accountNumber string) (*models.VirtualAccount, error) {
	return m.getVAByNumberFunc(ctx, accountNumber)
}

func (m *mockPaymentRepo) FindTransactionByPaymentReference(ctx context.Context, paymentReference string) (*models.PaymentTransaction, error) {
	if m.findByPayRefFunc == nil {
		return nil, apperrors.NotFound("transaction not found")
	}
	return m.findByPayRefFunc(ctx, paymentReference)
}

func (m *mockPaymentRepo) RecordPaymentReceived(ctx context.Context, account *models.VirtualAccount, req models.PaymentReceivedRequest, split models.CommissionSplit) (*models.PaymentReceivedResult, error) {
	return m.recordPaymentFunc(ctx, account, req, split)
}

func (m *mockPaymentRepo) RecordPayout(ctx context.Context, driverID uuid.UUID, amount decimal.Decimal, bankAccount *models.BankAccount) (*models.PaymentTransaction, error) {
	if m.recordPayoutFunc == nil {
		return &models.PaymentTransaction{ID: uuid.New(), Status: models.TransactionStatusSuccess, Amount: amount}, nil
	}
	return m.recordPayoutFunc(ctx, driverID, amount, bankAccount)
}

func (m *mockPaymentRepo) GetBookingForPayment(ctx context.Context, bookingID uuid.UUID) (*models.Booking, uuid.UUID, error) {
	return m.getBookingFunc(ctx, bookingID)
}

func (m *mockPaymentRepo) UpsertBankAccount(ctx context.Context, driverID uuid.UUID, req models.BankAccountRequest) (*models.BankAccount, error) {
	return &models.BankAccount{DriverID: driverID, AccountNumber: req.AccountNumber}, nil
}

func (m *mockPaymentRepo) GetBankAccount(ctx context.Context, driverID uuid.UUID) (*models.BankAccount, error) {
	if m.getBankAccountFunc == nil {
		return nil, apperrors.NotFound("bank account not found")
	}
	return m.getBankAccountFunc(ctx, driverID)
}

func (m *mockPaymentRepo) GetWallet(ctx context.Context, driverID uuid.UUID) (*models.Wallet, error) {
	return &models.Wallet{DriverID: driverID}, nil
}

func (m *mockPaymentRepo) GetDriverPaymentStats(ctx context.Context, driverID uuid.UUID) (*models.PaymentStats, error) {
	return &models.PaymentStats{}, nil
}

func (m *mockPaymentRepo) ListTransactions(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*models.PaymentTransaction, error) {
	return nil, nil
}

func (m *mockPaymentRepo) GetCommissionSetting(ctx context.Context) (decimal.Decimal, bool, error) {
	if m.getCommissionFunc == nil {
		return decimal.Zero, false, nil
	}
	return m.getCommissionFunc(ctx)
}

func (m *mockPaymentRepo) UpdateCommissionSetting(ctx context.Context, percentage decimal.Decimal) error {
	return nil
}

func (m *mockPaymentRepo) InsertNotification(ctx context.Context, notification *models.Notification) error {
	m.notifications = append(m.notifications, notification)
	return nil
}

type mockPaymentGW struct {
	events []models.PaymentEvent
	err    error
}

func (m *mockPaymentGW) PublishPaymentProcessed(ctx context.Context, event models.PaymentEvent) error {
	m.events = append(m.events, event)
	return m.err
}

type mockCache struct {
	values  map[string]string
	deleted []string
}

func newMockCache() *mockCache {
	return &mockCache{values: make(map[string]string)}
}

func (m *mockCache) Get(ctx context.Context, key string) (string, error) {
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", assert.AnError
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.values, key)
	return nil
}

func testConfig() *models.Config {
	return &models.Config{
		Payments: models.PaymentsConfig{
			DefaultCommissionPercent: 10.0,
			VirtualBankName:          "SpotRoute Bank",
			VirtualBankCode:          "SRB",
			CommissionCacheTTL:       30,
		},
	}
}

func TestCalculateCommission(t *testing.T) {
	tests := []struct {
		name           string
		amount         string
		percentage     string
		wantCommission string
		wantDriver     string
	}{
		{name: "even split", amount: "1000.00", percentage: "10", wantCommission: "100", wantDriver: "900"},
		{name: "fractional amount", amount: "99.99", percentage: "10", wantCommission: "10", wantDriver: "89.99"},
		{name: "rounds to cent", amount: "33.33", percentage: "7.5", wantCommission: "2.5", wantDriver: "30.83"},
		{name: "zero commission", amount: "50.00", percentage: "0", wantCommission: "0", wantDriver: "50"},
		{name: "full commission", amount: "50.00", percentage: "100", wantCommission: "50", wantDriver: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, _ := decimal.NewFromString(tt.amount)
			pct, _ := decimal.NewFromString(tt.percentage)

			split := CalculateCommission(amount, pct)

			assert.Equal(t, tt.wantCommission, split.CommissionAmount.String())
			assert.Equal(t, tt.wantDriver, split.DriverAmount.String())
			assert.True(t, split.CommissionAmount.Add(split.DriverAmount).Equal(amount))
		})
	}
}

func TestGetCommissionPercentage(t *testing.T) {
	t.Run("falls back to configured default", func(t *testing.T) {
		repo := &mockPaymentRepo{}
		cache := newMockCache()
		uc := NewPaymentUC(testConfig(), repo, &mockPaymentGW{}, cache)

		pct, err := uc.GetCommissionPercentage(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, "10", pct.String())
		assert.Equal(t, "10", cache.values[commissionCacheKey])
	})

	t.Run("uses stored setting", func(t *testing.T) {
		repo := &mockPaymentRepo{
			getCommissionFunc: func(ctx context.Context) (decimal.Decimal, bool, error) {
				return decimal.NewFromFloat(12.5), true, nil
			},
		}
		uc := NewPaymentUC(testConfig(), repo, &mockPaymentGW{}, newMockCache())

		pct, err := uc.GetCommissionPercentage(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, "12.5", pct.String())
	})

	t.Run("serves from cache without hitting settings", func(t *testing.T) {
		repo := &mockPaymentRepo{
			getCommissionFunc: func(ctx context.Context) (decimal.Decimal, bool, error) {
				t.Fatal("settings should not be read on cache hit")
				return decimal.Zero, false, nil
			},
		}
		cache := newMockCache()
		cache.values[commissionCacheKey] = "15"
		uc := NewPaymentUC(testConfig(), repo, &mockPaymentGW{}, cache)

		pct, err := uc.GetCommissionPercentage(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, "15", pct.String())
	})
}

func TestUpdateCommissionPercentage(t *testing.T) {
	cache := newMockCache()
	cache.values[commissionCacheKey] = "10"
	uc := NewPaymentUC(testConfig(), &mockPaymentRepo{}, &mockPaymentGW{}, cache)

	t.Run("rejects out of range", func(t *testing.T) {
		err := uc.UpdateCommissionPercentage(context.Background(), decimal.NewFromInt(-1))
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

		err = uc.UpdateCommissionPercentage(context.Background(), decimal.NewFromInt(101))
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	})

	t.Run("invalidates cache", func(t *testing.T) {
		err := uc.UpdateCommissionPercentage(context.Background(), decimal.NewFromInt(15))

		assert.NoError(t, err)
		assert.Contains(t, cache.deleted, commissionCacheKey)
	})
}

func TestProcessPaymentReceived(t *testing.T) {
	driverID := uuid.New()
	account := &models.VirtualAccount{
		ID:            uuid.New(),
		DriverID:      driverID,
		AccountNumber: "SR12345678",
		IsActive:      true,
	}

	t.Run("records payment and publishes event", func(t *testing.T) {
		var gotSplit models.CommissionSplit
		repo := &mockPaymentRepo{
			getVAByNumberFunc: func(ctx context.Context, accountNumber string) (*models.VirtualAccount, error) {
				return account, nil
			},
			recordPaymentFunc: func(ctx context.Context, acct *models.VirtualAccount, req models.PaymentReceivedRequest, split models.CommissionSplit) (*models.PaymentReceivedResult, error) {
				gotSplit = split
				return &models.PaymentReceivedResult{
					PaymentTransaction:    &models.PaymentTransaction{ID: uuid.New(), DriverID: driverID, Amount: req.Amount},
					CommissionTransaction: &models.PaymentTransaction{ID: uuid.New()},
					DriverAmount:          split.DriverAmount,
					CommissionAmount:      split.CommissionAmount,
				}, nil
			},
		}
		gw := &mockPaymentGW{}
		uc := NewPaymentUC(testConfig(), repo, gw, newMockCache())

		result, err := uc.ProcessPaymentReceived(context.Background(), models.PaymentReceivedRequest{
			VirtualAccountNumber: account.AccountNumber,
			Amount:               decimal.RequireFromString("1000.00"),
			PaymentReference:     "BANKREF-1",
		})

		require.NoError(t, err)
		assert.Equal(t, "100", gotSplit.CommissionAmount.String())
		assert.Equal(t, "900", result.DriverAmount.String())
		assert.Len(t, gw.events, 1)
		require.Len(t, repo.notifications, 1)
		assert.Equal(t, models.NotificationPaymentReceived, repo.notifications[0].Type)
	})

	t.Run("rejects replayed payment reference", func(t *testing.T) {
		repo := &mockPaymentRepo{
			getVAByNumberFunc: func(ctx context.Context, accountNumber string) (*models.VirtualAccount, error) {
				return account, nil
			},
			findByPayRefFunc: func(ctx context.Context, paymentReference string) (*models.PaymentTransaction, error) {
				return &models.PaymentTransaction{ID: uuid.New()}, nil
			},
		}
		uc := NewPaymentUC(testConfig(), repo, &mockPaymentGW{}, newMockCache())

		result, err := uc.ProcessPaymentReceived(context.Background(), models.PaymentReceivedRequest{
			VirtualAccountNumber: account.AccountNumber,
			Amount:               decimal.RequireFromString("1000.00"),
			PaymentReference:     "BANKREF-1",
		})

		assert.Nil(t, result)
		assert.True(t, apperrors.IsKind(err, apperrors.KindDuplicatePayment))
	})

	t.Run("rejects non positive amount", func(t *testing.T) {
		uc := NewPaymentUC(testConfig(), &mockPaymentRepo{}, &mockPaymentGW{}, newMockCache())

		_, err := uc.ProcessPaymentReceived(context.Background(), models.PaymentReceivedRequest{
			VirtualAccountNumber: account.AccountNumber,
			Amount:               decimal.Zero,
			PaymentReference:     "BANKREF-2",
		})

		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	})
}

func TestHandleWebhookAlwaysAcknowledges(t *testing.T) {
	repo := &mockPaymentRepo{
		getVAByNumberFunc: func(ctx context.Context, accountNumber string) (*models.VirtualAccount, error) {
			return nil, apperrors.NotFound("virtual account not found")
		},
	}
	uc := NewPaymentUC(testConfig(), repo, &mockPaymentGW{}, newMockCache())

	err := uc.HandleWebhook(context.Background(), models.PaymentReceivedRequest{
		VirtualAccountNumber: "SR00000000",
		Amount:               decimal.RequireFromString("10.00"),
		PaymentReference:     "BANKREF-3",
	})

	assert.NoError(t, err)
}

func TestConfirmTransfer(t *testing.T) {
	riderID := uuid.New()
	driverID := uuid.New()
	bookingID := uuid.New()
	account := &models.VirtualAccount{ID: uuid.New(), DriverID: driverID, AccountNumber: "SR11112222", IsActive: true}

	newRepo := func(booking *models.Booking) *mockPaymentRepo {
		return &mockPaymentRepo{
			getBookingFunc: func(ctx context.Context, id uuid.UUID) (*models.Booking, uuid.UUID, error) {
				return booking, driverID, nil
			},
			getOrCreateVAFunc: func(ctx context.Context, id uuid.UUID) (*models.VirtualAccount, error) {
				return account, nil
			},
			getVAByNumberFunc: func(ctx context.Context, accountNumber string) (*models.VirtualAccount, error) {
				return account, nil
			},
			recordPaymentFunc: func(ctx context.Context, acct *models.VirtualAccount, req models.PaymentReceivedRequest, split models.CommissionSplit) (*models.PaymentReceivedResult, error) {
				return &models.PaymentReceivedResult{
					PaymentTransaction:    &models.PaymentTransaction{ID: uuid.New(), DriverID: driverID, Amount: req.Amount, BookingID: req.BookingID},
					CommissionTransaction: &models.PaymentTransaction{ID: uuid.New()},
					DriverAmount:          split.DriverAmount,
					CommissionAmount:      split.CommissionAmount,
				}, nil
			},
		}
	}

	baseBooking := func() *models.Booking {
		return &models.Booking{
			ID:            bookingID,
			UserID:        riderID,
			TotalPrice:    decimal.RequireFromString("51.00"),
			Status:        models.BookingStatusConfirmed,
			PaymentStatus: models.PaymentStatusPending,
		}
	}

	t.Run("confirms and marks booking paid", func(t *testing.T) {
		uc := NewPaymentUC(testConfig(), newRepo(baseBooking()), &mockPaymentGW{}, newMockCache())

		result, err := uc.ConfirmTransfer(context.Background(), riderID, models.ConfirmTransferRequest{
			BookingID:        bookingID,
			Amount:           decimal.RequireFromString("51.00"),
			PaymentReference: "BANKREF-4",
		})

		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPaid, result.Booking.PaymentStatus)
		assert.Equal(t, "45.9", result.DriverAmount.String())
		assert.Equal(t, "5.1", result.CommissionAmount.String())
	})

	t.Run("rejects wrong amount", func(t *testing.T) {
		uc := NewPaymentUC(testConfig(), newRepo(baseBooking()), &mockPaymentGW{}, newMockCache())

		_, err := uc.ConfirmTransfer(context.Background(), riderID, models.ConfirmTransferRequest{
			BookingID:        bookingID,
			Amount:           decimal.RequireFromString("50.00"),
			PaymentReference: "BANKREF-5",
		})

		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	})

	t.Run("rejects other rider", func(t *testing.T) {
		uc := NewPaymentUC(testConfig(), newRepo(baseBooking()), &mockPaymentGW{}, newMockCache())

		_, err := uc.ConfirmTransfer(context.Background(), uuid.New(), models.ConfirmTransferRequest{
			BookingID:        bookingID,
			Amount:           decimal.RequireFromString("51.00"),
			PaymentReference: "BANKREF-6",
		})

		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("rejects already paid booking", func(t *testing.T) {
		booking := baseBooking()
		booking.PaymentStatus = models.PaymentStatusPaid
		uc := NewPaymentUC(testConfig(), newRepo(booking), &mockPaymentGW{}, newMockCache())

		_, err := uc.ConfirmTransfer(context.Background(), riderID, models.ConfirmTransferRequest{
			BookingID:        bookingID,
			Amount:           decimal.RequireFromString("51.00"),
			PaymentReference: "BANKREF-7",
		})

		assert.True(t, apperrors.IsKind(err, apperrors.KindDuplicatePayment))
	})

	t.Run("rejects cancelled booking", func(t *testing.T) {
		booking := baseBooking()
		booking.Status = models.BookingStatusCancelled
		uc := NewPaymentUC(testConfig(), newRepo(booking), &mockPaymentGW{}, newMockCache())

		_, err := uc.ConfirmTransfer(context.Background(), riderID, models.ConfirmTransferRequest{
			BookingID:        bookingID,
			Amount:           decimal.RequireFromString("51.00"),
			PaymentReference: "BANKREF-8",
		})

		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})
}

func TestRequestPayout(t *testing.T) {
	driverID := uuid.New()

	t.Run("successful payout records notification", func(t *testing.T) {
		repo := &mockPaymentRepo{
			getBankAccountFunc: func(ctx context.Context, id uuid.UUID) (*models.BankAccount, error) {
				return &models.BankAccount{DriverID: driverID, IsVerified: true}, nil
			},
			recordPayoutFunc: func(ctx context.Context, id uuid.UUID, amount decimal.Decimal, bankAccount *models.BankAccount) (*models.PaymentTransaction, error) {
				require.NotNil(t, bankAccount)
				return &models.PaymentTransaction{ID: uuid.New(), Amount: amount, Status: models.TransactionStatusSuccess}, nil
			},
		}
		uc := NewPaymentUC(testConfig(), repo, &mockPaymentGW{}, newMockCache())

		payout, err := uc.RequestPayout(context.Background(), driverID, models.PayoutRequest{Amount: decimal.RequireFromString("100.00")})

		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusSuccess, payout.Status)
		require.Len(t, repo.notifications, 1)
		assert.Equal(t, models.NotificationPayoutProcessed, repo.notifications[0].Type)
	})

	t.Run("missing bank account leaves payout pending", func(t *testing.T) {
		repo := &mockPaymentRepo{
			recordPayoutFunc: func(ctx context.Context, id uuid.UUID, amount decimal.Decimal, bankAccount *models.BankAccount) (*models.PaymentTransaction, error) {
				assert.Nil(t, bankAccount)
				return &models.PaymentTransaction{ID: uuid.New(), Amount: amount, Status: models.TransactionStatusPending}, nil
			},
		}
		uc := NewPaymentUC(testConfig(), repo, &mockPaymentGW{}, newMockCache())

		payout, err := uc.RequestPayout(context.Background(), driverID, models.PayoutRequest{Amount: decimal.RequireFromString("100.00")})

		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusPending, payout.Status)
		assert.Empty(t, repo.notifications)
	})

	t.Run("rejects non positive amount", func(t *testing.T) {
		uc := NewPaymentUC(testConfig(), &mockPaymentRepo{}, &mockPaymentGW{}, newMockCache())

		_, err := uc.RequestPayout(context.Background(), driverID, models.PayoutRequest{Amount: decimal.Zero})

		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	})
}
