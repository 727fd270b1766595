package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"adyenbridge/internal/adyen"
	"adyenbridge/internal/models"
)

// EventStore persists authenticated webhook events.
type EventStore interface {
	Create(event *models.WebhookEvent) error
}

// WebhookHandler ingests gateway notifications: authenticate, map, persist.
type WebhookHandler struct {
	auth   *adyen.Authenticator
	events EventStore
	logger *zap.Logger
}

// NewWebhookHandler creates the inbound webhook handler.
func NewWebhookHandler(auth *adyen.Authenticator, events EventStore, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{auth: auth, events: events, logger: logger}
}

// HandleNotification processes one webhook delivery. Nothing in the body is
// trusted before the whole delivery passes signature verification; a rejected
// delivery gets a 401 and no item is stored.
func (h *WebhookHandler) HandleNotification(c echo.Context) error {
	rawBody, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	if !h.auth.Authorized(rawBody) {
		h.logger.Warn("webhook delivery rejected", zap.Int("body_bytes", len(rawBody)))
		return c.NoContent(http.StatusUnauthorized)
	}

	notification, err := adyen.ParseNotification(rawBody)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	for _, item := range notification.Items() {
		event := adyen.MapNotificationItem(item)

		rawItem, _ := json.Marshal(item)
		record := &models.WebhookEvent{
			PSPReference:   item.PSPReference,
			EventCode:      item.EventCode,
			CanonicalType:  string(event.Type),
			AttemptToken:   event.Details.AttemptToken,
			Succeeded:      item.SucceededOnGateway(),
			AmountCents:    event.Details.AmountCents,
			AmountCurrency: event.Details.AmountCurrency,
			RawPayload:     string(rawItem),
			ReceivedAt:     time.Now(),
		}
		if err := h.events.Create(record); err != nil {
			h.logger.Error("failed to persist webhook event",
				zap.String("psp_reference", item.PSPReference),
				zap.Error(err))
			// Let the gateway redeliver rather than lose the event.
			return c.NoContent(http.StatusInternalServerError)
		}

		h.logger.Info("webhook event stored",
			zap.String("psp_reference", item.PSPReference),
			zap.String("event_code", item.EventCode),
			zap.String("canonical_type", string(event.Type)),
			zap.String("attempt_token", event.Details.AttemptToken))
	}

	// The gateway stops redelivering once it sees this acknowledgement.
	return c.String(http.StatusOK, "[accepted]")
}
