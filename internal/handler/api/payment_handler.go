package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"adyenbridge/internal/adyen"
	"adyenbridge/internal/models"
)

// AttemptStore persists and queries payment attempt audit rows.
type AttemptStore interface {
	Create(attempt *models.PaymentAttempt) error
	FindByToken(token string) (*models.PaymentAttempt, error)
	UpdateByToken(token string, updates map[string]interface{}) error
	FindAll(limit, page int) ([]models.PaymentAttempt, int64, error)
}

// EventFinder queries stored webhook events.
type EventFinder interface {
	FindByPSPReference(pspReference string) ([]models.WebhookEvent, error)
	FindByAttemptToken(token string) ([]models.WebhookEvent, error)
}

// PaymentHandler exposes the gateway operations to the platform.
type PaymentHandler struct {
	onetime    *adyen.Onetime
	recurring  *adyen.Recurring
	management *adyen.Management
	attempts   AttemptStore
	events     EventFinder
	logger     *zap.Logger
}

// NewPaymentHandler creates the platform-facing payment handler.
func NewPaymentHandler(
	onetime *adyen.Onetime,
	recurring *adyen.Recurring,
	management *adyen.Management,
	attempts AttemptStore,
	events EventFinder,
	logger *zap.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		onetime:    onetime,
		recurring:  recurring,
		management: management,
		attempts:   attempts,
		events:     events,
		logger:     logger,
	}
}

// ChargeRequest starts a one-time payment.
type ChargeRequest struct {
	AmountCents    int64               `json:"amount_cents"`
	AmountCurrency string              `json:"amount_currency"`
	Reference      string              `json:"reference"`
	PaymentMethod  adyen.PaymentMethod `json:"payment_method"`
	ShopperEmail   string              `json:"shopper_email"`
	ReturnURL      string              `json:"return_url"`
	Origin         string              `json:"origin"`
	BrowserInfo    *adyen.BrowserInfo  `json:"browser_info"`
}

// DetailsRequest resumes a redirect/challenge flow.
type DetailsRequest struct {
	PaymentToken   string            `json:"payment_token"`
	AmountCents    int64             `json:"amount_cents"`
	AmountCurrency string            `json:"amount_currency"`
	Details        map[string]string `json:"details"`
	PaymentData    string            `json:"payment_data"`
}

// ModificationRequest captures or refunds a payment.
type ModificationRequest struct {
	AmountCents    int64  `json:"amount_cents"`
	AmountCurrency string `json:"amount_currency"`
}

// RecurringChargeRequest charges a stored mandate.
type RecurringChargeRequest struct {
	AmountCents           int64  `json:"amount_cents"`
	AmountCurrency        string `json:"amount_currency"`
	Reference             string `json:"reference"`
	ShopperReference      string `json:"shopper_reference"`
	StoredPaymentMethodID string `json:"stored_payment_method_id"`
}

// Charge handles POST /api/payments.
func (h *PaymentHandler) Charge(c echo.Context) error {
	var req ChargeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	attemptToken := req.Reference
	if attemptToken == "" {
		attemptToken = uuid.NewString()
	}

	attempt := &models.PaymentAttempt{
		AttemptToken:   attemptToken,
		Mode:           adyen.PaymentGateway,
		Operation:      "charge",
		AmountCents:    req.AmountCents,
		AmountCurrency: req.AmountCurrency,
		Status:         models.AttemptStatusPending,
	}
	if err := h.attempts.Create(attempt); err != nil {
		h.logger.Error("failed to record payment attempt", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "storage failure"})
	}

	result, err := h.onetime.InitiateCharge(c.Request().Context(), adyen.ChargeParams{
		Amount:        adyen.Money{Value: req.AmountCents, Currency: req.AmountCurrency},
		PaymentToken:  attemptToken,
		Reference:     attemptToken,
		PaymentMethod: req.PaymentMethod,
		ShopperEmail:  req.ShopperEmail,
		ReturnURL:     req.ReturnURL,
		Origin:        req.Origin,
		BrowserInfo:   req.BrowserInfo,
	})
	if err != nil {
		return h.gatewayFault(c, err)
	}

	h.recordOutcome(attemptToken, result)
	return c.JSON(http.StatusOK, result)
}

// SubmitDetails handles POST /api/payments/details.
func (h *PaymentHandler) SubmitDetails(c echo.Context) error {
	var req DetailsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	result, err := h.onetime.AfterCharge(c.Request().Context(), adyen.AfterChargeParams{
		PaymentToken: req.PaymentToken,
		Amount:       adyen.Money{Value: req.AmountCents, Currency: req.AmountCurrency},
		Details:      req.Details,
		PaymentData:  req.PaymentData,
	})
	if err != nil {
		return h.gatewayFault(c, err)
	}

	h.recordOutcome(req.PaymentToken, result)
	return c.JSON(http.StatusOK, result)
}

// Capture handles POST /api/payments/:payment_id/capture.
func (h *PaymentHandler) Capture(c echo.Context) error {
	paymentID := c.Param("payment_id")
	var req ModificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	result, err := h.onetime.Capture(c.Request().Context(), paymentID,
		adyen.Money{Value: req.AmountCents, Currency: req.AmountCurrency})
	if err != nil {
		return h.gatewayFault(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Refund handles POST /api/payments/:payment_id/refund.
func (h *PaymentHandler) Refund(c echo.Context) error {
	paymentID := c.Param("payment_id")
	var req ModificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	result, err := h.onetime.RefundPayment(c.Request().Context(), paymentID,
		adyen.Money{Value: req.AmountCents, Currency: req.AmountCurrency})
	if err != nil {
		return h.gatewayFault(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ChargeRecurring handles POST /api/recurring/charges.
func (h *PaymentHandler) ChargeRecurring(c echo.Context) error {
	var req RecurringChargeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	attemptToken := req.Reference
	if attemptToken == "" {
		attemptToken = uuid.NewString()
	}

	attempt := &models.PaymentAttempt{
		AttemptToken:   attemptToken,
		Mode:           adyen.PaymentTypeRecurring,
		Operation:      "charge",
		AmountCents:    req.AmountCents,
		AmountCurrency: req.AmountCurrency,
		Status:         models.AttemptStatusPending,
	}
	if err := h.attempts.Create(attempt); err != nil {
		h.logger.Error("failed to record payment attempt", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "storage failure"})
	}

	result, err := h.recurring.ChargeStored(c.Request().Context(), adyen.RecurringChargeParams{
		Amount:                adyen.Money{Value: req.AmountCents, Currency: req.AmountCurrency},
		PaymentToken:          attemptToken,
		Reference:             attemptToken,
		ShopperReference:      req.ShopperReference,
		StoredPaymentMethodID: req.StoredPaymentMethodID,
	})
	if err != nil {
		return h.gatewayFault(c, err)
	}

	h.recordOutcome(attemptToken, result)
	return c.JSON(http.StatusOK, result)
}

// CancelSubscription handles DELETE /api/recurring/subscriptions/:subscription_id.
func (h *PaymentHandler) CancelSubscription(c echo.Context) error {
	subscriptionID := c.Param("subscription_id")

	result, err := h.recurring.CancelSubscription(c.Request().Context(), subscriptionID)
	if err != nil {
		return h.gatewayFault(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ValidateCredentials handles GET /api/credentials/validate.
func (h *PaymentHandler) ValidateCredentials(c echo.Context) error {
	valid, err := h.management.ValidateCredentials(c.Request().Context())
	if err != nil {
		return h.gatewayFault(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"valid": valid})
}

// Capabilities handles GET /api/modes/:mode/capabilities.
func (h *PaymentHandler) Capabilities(c echo.Context) error {
	var mode adyen.Mode
	switch c.Param("mode") {
	case adyen.PaymentGateway:
		mode = h.onetime
	case adyen.PaymentTypeRecurring:
		mode = h.recurring
	default:
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown mode"})
	}
	return c.JSON(http.StatusOK, mode.Capabilities())
}

// ListAttempts handles GET /api/attempts.
func (h *PaymentHandler) ListAttempts(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	page, _ := strconv.Atoi(c.QueryParam("page"))

	attempts, total, err := h.attempts.FindAll(limit, page)
	if err != nil {
		h.logger.Error("failed to list payment attempts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "storage failure"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"attempts": attempts,
		"total":    total,
	})
}

// GetAttempt handles GET /api/attempts/:attempt_token.
func (h *PaymentHandler) GetAttempt(c echo.Context) error {
	attempt, err := h.attempts.FindByToken(c.Param("attempt_token"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "attempt not found"})
		}
		h.logger.Error("failed to load payment attempt", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "storage failure"})
	}
	return c.JSON(http.StatusOK, attempt)
}

// ListWebhookEvents handles GET /api/webhooks/events. Events are looked up by
// attempt_token or psp_reference; exactly one is required.
func (h *PaymentHandler) ListWebhookEvents(c echo.Context) error {
	var (
		events []models.WebhookEvent
		err    error
	)
	switch {
	case c.QueryParam("attempt_token") != "":
		events, err = h.events.FindByAttemptToken(c.QueryParam("attempt_token"))
	case c.QueryParam("psp_reference") != "":
		events, err = h.events.FindByPSPReference(c.QueryParam("psp_reference"))
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "attempt_token or psp_reference is required"})
	}
	if err != nil {
		h.logger.Error("failed to list webhook events", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "storage failure"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"events": events})
}

// recordOutcome updates the attempt audit row with the normalized result.
func (h *PaymentHandler) recordOutcome(attemptToken string, result adyen.PaymentResult) {
	status := models.AttemptStatusSucceeded
	if result.Failed() {
		status = models.AttemptStatusFailed
	}

	updates := map[string]interface{}{
		"status":         status,
		"gateway_status": result.Status,
		"payment_token":  result.PaymentToken,
		"error_code":     result.Code,
		"error_message":  result.Message,
	}
	if result.ExternalPaymentID != "" {
		updates["external_payment_id"] = result.ExternalPaymentID
	}
	if err := h.attempts.UpdateByToken(attemptToken, updates); err != nil {
		h.logger.Error("failed to update payment attempt",
			zap.String("attempt_token", attemptToken),
			zap.Error(err))
	}
}

// gatewayFault translates invoker errors: gateway outages become 502,
// configuration defects 500.
func (h *PaymentHandler) gatewayFault(c echo.Context, err error) error {
	var gwErr *adyen.GatewayError
	if errors.As(err, &gwErr) {
		h.logger.Error("gateway transport failure",
			zap.String("surface", string(gwErr.Surface)),
			zap.String("path", gwErr.Path),
			zap.Int("status", gwErr.StatusCode))
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "gateway unavailable"})
	}

	h.logger.Error("gateway call failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
