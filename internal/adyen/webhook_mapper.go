package adyen

// PlatformEventType is the canonical event taxonomy the platform understands.
type PlatformEventType string

const (
	EventOneTimeCharged     PlatformEventType = "one_time_charged"
	EventRecurringCharged   PlatformEventType = "recurring_charged"
	EventRecurringCancelled PlatformEventType = "recurring_cancelled"
	EventRefundCreated      PlatformEventType = "refund_created"
	EventUnmapped           PlatformEventType = "unmapped"
)

// eventTypeMapping translates provider event codes into the canonical set.
// Codes absent here map to EventUnmapped, never to an error. The gateway
// reports recurring charges under AUTHORISATION as well, so no provider code
// binds to the recurring members of the taxonomy.
var eventTypeMapping = map[string]PlatformEventType{
	"AUTHORISATION": EventOneTimeCharged,
	"REFUND":        EventRefundCreated,
}

// WebhookEventDetails are the canonical fields projected out of one
// authenticated notification item.
type WebhookEventDetails struct {
	// AttemptToken correlates the notification with the attempt that caused
	// it. Empty means the event cannot be matched to an originating attempt.
	AttemptToken string `json:"attempt_token,omitempty"`

	Event          string `json:"event"`
	Status         string `json:"status"`
	AmountCents    int64  `json:"amount_cents"`
	AmountCurrency string `json:"amount_currency"`

	ExternalPaymentID         string `json:"external_payment_id"`
	ExternalRefundID          string `json:"external_refund_id,omitempty"`
	ExternalOriginalReference string `json:"external_original_reference,omitempty"`
	ExternalSubscriptionID    string `json:"external_subscription_id,omitempty"`

	Email string `json:"email,omitempty"`

	GatewayFeeCents    int64  `json:"gateway_fee_cents"`
	GatewayFeeCurrency string `json:"gateway_fee_currency,omitempty"`
}

// CanonicalWebhookEvent is one mapped notification item.
type CanonicalWebhookEvent struct {
	Type    PlatformEventType   `json:"type"`
	Details WebhookEventDetails `json:"details"`
}

// attemptTokenExtractors is the explicit precedence list for correlation
// token extraction, evaluated left to right, first present value wins.
var attemptTokenExtractors = []func(NotificationItem) string{
	func(item NotificationItem) string { return item.MerchantReference },
	func(item NotificationItem) string { return item.AdditionalData["metadata."+attemptTokenMetadataKey] },
}

func extractAttemptToken(item NotificationItem) string {
	for _, extract := range attemptTokenExtractors {
		if token := extract(item); token != "" {
			return token
		}
	}
	return ""
}

// MapNotificationItem projects one authenticated item onto the canonical
// event model. The gateway does not itemize its fee in notifications, so the
// fee normalizes to zero in the amount currency rather than erroring.
func MapNotificationItem(item NotificationItem) CanonicalWebhookEvent {
	eventType, ok := eventTypeMapping[item.EventCode]
	if !ok {
		eventType = EventUnmapped
	}

	status := "Failure"
	if item.SucceededOnGateway() {
		status = "Success"
	}

	return CanonicalWebhookEvent{
		Type: eventType,
		Details: WebhookEventDetails{
			AttemptToken:              extractAttemptToken(item),
			Event:                     item.EventCode,
			Status:                    status,
			AmountCents:               item.Amount.Value,
			AmountCurrency:            item.Amount.Currency,
			ExternalPaymentID:         item.PSPReference,
			ExternalRefundID:          item.PSPReference,
			ExternalOriginalReference: item.OriginalReference,
			ExternalSubscriptionID:    item.AdditionalData["recurring.recurringDetailReference"],
			Email:                     item.AdditionalData["shopperEmail"],
			GatewayFeeCents:           0,
			GatewayFeeCurrency:        item.Amount.Currency,
		},
	}
}
