package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"adyenbridge/internal/adyen"
	"adyenbridge/internal/handler"
	"adyenbridge/internal/handler/api"
	"adyenbridge/internal/middleware"
	"adyenbridge/internal/repository"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	db *gorm.DB,
	creds adyen.Credentials,
	logger *zap.Logger,
	apiKey string,
	deduper middleware.NotificationDeduper,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	// Repositories
	attempts := repository.NewAttemptRepository(db)
	events := repository.NewWebhookEventRepository(db)

	// Gateway adapters
	onetime := adyen.NewOnetime(creds)
	recurring := adyen.NewRecurring(creds)
	management := adyen.NewManagement(creds)
	authenticator := adyen.NewAuthenticator(creds.HMACKey)
	if authenticator.Bypassed() {
		logger.Warn("webhook HMAC key not configured; inbound notifications are accepted unverified")
	}

	// Handlers
	paymentHandler := api.NewPaymentHandler(onetime, recurring, management, attempts, events, logger)
	webhookHandler := handler.NewWebhookHandler(authenticator, events, logger)

	// Platform-facing API, behind the platform API key
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.APIAuth(apiKey))

	apiGroup.POST("/payments", paymentHandler.Charge)
	apiGroup.POST("/payments/details", paymentHandler.SubmitDetails)
	apiGroup.POST("/payments/:payment_id/capture", paymentHandler.Capture)
	apiGroup.POST("/payments/:payment_id/refund", paymentHandler.Refund)
	apiGroup.POST("/recurring/charges", paymentHandler.ChargeRecurring)
	apiGroup.DELETE("/recurring/subscriptions/:subscription_id", paymentHandler.CancelSubscription)
	apiGroup.GET("/credentials/validate", paymentHandler.ValidateCredentials)
	apiGroup.GET("/modes/:mode/capabilities", paymentHandler.Capabilities)
	apiGroup.GET("/attempts", paymentHandler.ListAttempts)
	apiGroup.GET("/attempts/:attempt_token", paymentHandler.GetAttempt)
	apiGroup.GET("/webhooks/events", paymentHandler.ListWebhookEvents)

	// Inbound gateway notifications (signature-checked, deduplicated)
	webhookGroup := e.Group("/webhooks")
	webhookGroup.Use(middleware.WebhookDedup(deduper))
	webhookGroup.POST("/adyen", webhookHandler.HandleNotification)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}
