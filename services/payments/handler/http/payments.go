package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/spotroute/backend/internal/pkg/middleware"
	"github.com/spotroute/backend/internal/pkg/models"
	"github.com/spotroute/backend/internal/utils"
	"github.com/spotroute/backend/services/payments"
)

// PaymentHandler handles HTTP requests for payments, wallets and payouts
type PaymentHandler struct {
	paymentUC payments.PaymentUC
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentUC payments.PaymentUC) *PaymentHandler {
	return &PaymentHandler{
		paymentUC: paymentUC,
	}
}

// RegisterRoutes registers payment routes. The webhook goes on the public
// group; everything else requires authentication.
func (h *PaymentHandler) RegisterRoutes(public, authed *echo.Group) {
	public.POST("/payments/webhook", h.Webhook)

	authed.POST("/payments/confirm-transfer", h.ConfirmTransfer, middleware.RequireRole(models.RoleRider))

	driver := authed.Group("", middleware.RequireRole(models.RoleDriver))
	driver.GET("/payments/virtual-account", h.GetVirtualAccount)
	driver.GET("/payments/wallet", h.GetWallet)
	driver.GET("/payments/stats", h.GetStats)
	driver.GET("/payments/transactions", h.ListTransactions)
	driver.POST("/payments/payout", h.RequestPayout)
	driver.GET("/payments/bank-account", h.GetBankAccount)
	driver.PUT("/payments/bank-account", h.SaveBankAccount)

	admin := authed.Group("", middleware.RequireRole(models.RoleAdmin))
	admin.GET("/payments/commission", h.GetCommission)
	admin.PUT("/payments/commission", h.UpdateCommission)
}

// Webhook receives provider payment notifications. The provider retries on
// non-200 responses, so processing failures still acknowledge.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	var req models.PaymentReceivedRequest
	if err := c.Bind(&req); err != nil {
		return utils.SuccessResponse(c, http.StatusOK, "Webhook received", nil)
	}

	_ = h.paymentUC.HandleWebhook(c.Request().Context(), req)

	return utils.SuccessResponse(c, http.StatusOK, "Webhook received", nil)
}

// ConfirmTransfer lets a rider confirm a bank transfer for a booking
func (h *PaymentHandler) ConfirmTransfer(c echo.Context) error {
	riderID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.ConfirmTransferRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request format")
	}

	result, err := h.paymentUC.ConfirmTransfer(c.Request().Context(), riderID, req)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Payment confirmed successfully", result)
}

// GetVirtualAccount returns the driver's virtual account, creating it on
// first use
func (h *PaymentHandler) GetVirtualAccount(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	account, err := h.paymentUC.GetOrCreateVirtualAccount(c.Request().Context(), driverID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Virtual account retrieved successfully", account)
}

// GetWallet returns the driver's wallet balances
func (h *PaymentHandler) GetWallet(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	wallet, err := h.paymentUC.GetWallet(c.Request().Context(), driverID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Wallet retrieved successfully", wallet)
}

// GetStats returns the driver's aggregated payment stats
func (h *PaymentHandler) GetStats(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	stats, err := h.paymentUC.GetDriverPaymentStats(c.Request().Context(), driverID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Payment stats retrieved successfully", stats)
}

// ListTransactions pages through the driver's ledger
func (h *PaymentHandler) ListTransactions(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	txns, err := h.paymentUC.ListTransactions(c.Request().Context(), driverID, limit, offset)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Transactions retrieved successfully", txns)
}

// RequestPayout withdraws from the driver's wallet
func (h *PaymentHandler) RequestPayout(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.PayoutRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request format")
	}

	payout, err := h.paymentUC.RequestPayout(c.Request().Context(), driverID, req)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Payout requested successfully", payout)
}

// GetBankAccount returns the driver's payout destination
func (h *PaymentHandler) GetBankAccount(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	account, err := h.paymentUC.GetBankAccount(c.Request().Context(), driverID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Bank account retrieved successfully", account)
}

// SaveBankAccount stores the driver's payout destination
func (h *PaymentHandler) SaveBankAccount(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.BankAccountRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request format")
	}

	account, err := h.paymentUC.SaveBankAccount(c.Request().Context(), driverID, req)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Bank account saved successfully", account)
}

// GetCommission returns the current commission percentage
func (h *PaymentHandler) GetCommission(c echo.Context) error {
	pct, err := h.paymentUC.GetCommissionPercentage(c.Request().Context())
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Commission retrieved successfully", map[string]string{
		"commission_percentage": pct.String(),
	})
}

// UpdateCommission sets the commission percentage
func (h *PaymentHandler) UpdateCommission(c echo.Context) error {
	var req struct {
		CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request format")
	}

	if err := h.paymentUC.UpdateCommissionPercentage(c.Request().Context(), req.CommissionPercentage); err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Commission updated successfully", map[string]string{
		"commission_percentage": req.CommissionPercentage.String(),
	})
}
