package models

import "time"

// Attempt statuses tracked on the platform side.
const (
	AttemptStatusPending   = "pending"
	AttemptStatusSucceeded = "succeeded"
	AttemptStatusFailed    = "failed"
	AttemptStatusExpired   = "expired"
)

// PaymentAttempt is the audit record of one outbound gateway operation and
// its normalized outcome.
type PaymentAttempt struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	AttemptToken string `gorm:"column:attempt_token;size:64;uniqueIndex" json:"attempt_token"`

	Mode      string `gorm:"column:mode;size:32" json:"mode"`
	Operation string `gorm:"column:operation;size:32" json:"operation"`

	PaymentToken      string `gorm:"column:payment_token;size:128" json:"payment_token"`
	ExternalPaymentID string `gorm:"column:external_payment_id;size:128;index" json:"external_payment_id"`

	AmountCents    int64  `gorm:"column:amount_cents" json:"amount_cents"`
	AmountCurrency string `gorm:"column:amount_currency;size:3" json:"amount_currency"`

	Status        string `gorm:"column:status;size:32;index" json:"status"`
	GatewayStatus string `gorm:"column:gateway_status;size:64" json:"gateway_status"`
	ErrorCode     string `gorm:"column:error_code;size:64" json:"error_code"`
	ErrorMessage  string `gorm:"column:error_message;size:512" json:"error_message"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PaymentAttempt) TableName() string {
	return "payment_attempts"
}
