package adyen

import (
	"encoding/json"
	"fmt"
)

// Gateway identifiers reported back to the platform.
const (
	PaymentGateway       = "adyen"
	PaymentTypeRecurring = "adyen_recurring"
)

// Money is an amount in the smallest currency unit. Never floating point.
type Money struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

// PaymentResult is the canonical outcome of every gateway operation. Success
// and failure are mutually exclusive and exhaustive; a declined card and a
// succeeded charge travel through the same type so callers never need error
// handling to process a refusal.
type PaymentResult struct {
	Success     bool   `json:"success"`
	PaymentType string `json:"payment_type"`

	// Code and Message are set on failure only. Message is deterministically
	// formatted as "Received {code} - {description}".
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`

	// Status keeps the gateway-native status verbatim for audit. For error
	// responses without a body status this is the HTTP status code.
	Status string `json:"status,omitempty"`

	PaymentToken      string `json:"payment_token,omitempty"`
	ExternalPaymentID string `json:"external_payment_id,omitempty"`
	ExternalRefundID  string `json:"external_refund_id,omitempty"`
	ExternalCaptureID string `json:"external_capture_id,omitempty"`

	AmountCents    int64  `json:"amount_cents,omitempty"`
	AmountCurrency string `json:"amount_currency,omitempty"`

	GatewayFee *Money `json:"gateway_fee,omitempty"`

	// Metadata carries an opaque continuation token (e.g. the paymentData
	// blob needed to resume a redirect/challenge flow).
	Metadata string `json:"metadata,omitempty"`

	// AuditRef echoes the business correlation token the operation started
	// from, so a failure can be matched back to its originating attempt.
	AuditRef string `json:"audit_ref,omitempty"`

	// Raw retains the original parsed gateway response for forensic use.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// Failed reports whether the result is a failure.
func (r PaymentResult) Failed() bool {
	return !r.Success
}

// errorResult builds a failure PaymentResult with the canonical message
// format.
func errorResult(paymentType, code, description, status, auditRef string) PaymentResult {
	return PaymentResult{
		Success:     false,
		PaymentType: paymentType,
		Code:        code,
		Message:     fmt.Sprintf("Received %s - %s", code, description),
		Status:      status,
		AuditRef:    auditRef,
	}
}
