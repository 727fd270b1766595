package models

import "time"

// WebhookEvent is one authenticated, canonically mapped notification item.
// RawPayload keeps the gateway's original item for forensic use.
type WebhookEvent struct {
	ID uint `gorm:"primaryKey" json:"id"`

	PSPReference  string `gorm:"column:psp_reference;size:64;index" json:"psp_reference"`
	EventCode     string `gorm:"column:event_code;size:64" json:"event_code"`
	CanonicalType string `gorm:"column:canonical_type;size:32;index" json:"canonical_type"`
	AttemptToken  string `gorm:"column:attempt_token;size:64;index" json:"attempt_token"`

	Succeeded      bool   `gorm:"column:succeeded" json:"succeeded"`
	AmountCents    int64  `gorm:"column:amount_cents" json:"amount_cents"`
	AmountCurrency string `gorm:"column:amount_currency;size:3" json:"amount_currency"`

	RawPayload string `gorm:"column:raw_payload;type:text" json:"raw_payload"`

	ReceivedAt time.Time `gorm:"column:received_at" json:"received_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
