package adyen

import "testing"

func TestMapNotificationItem_EventTypes(t *testing.T) {
	tests := []struct {
		eventCode string
		want      PlatformEventType
	}{
		{"AUTHORISATION", EventOneTimeCharged},
		{"REFUND", EventRefundCreated},
		{"CHARGEBACK", EventUnmapped},
		{"REPORT_AVAILABLE", EventUnmapped},
		{"", EventUnmapped},
	}

	for _, tt := range tests {
		t.Run(tt.eventCode, func(t *testing.T) {
			event := MapNotificationItem(NotificationItem{EventCode: tt.eventCode})
			if event.Type != tt.want {
				t.Errorf("type = %q, want %q", event.Type, tt.want)
			}
		})
	}
}

func TestMapNotificationItem_Details(t *testing.T) {
	item := NotificationItem{
		EventCode:         "AUTHORISATION",
		Success:           "true",
		Amount:            amountField{Currency: "EUR", Value: 1130},
		PSPReference:      "7914073381342284",
		OriginalReference: "7913999999999999",
		MerchantReference: "order-42",
		AdditionalData: map[string]string{
			"shopperEmail":                       "shopper@example.org",
			"recurring.recurringDetailReference": "8815999999999999",
		},
	}

	event := MapNotificationItem(item)
	d := event.Details

	if d.Status != "Success" {
		t.Errorf("status = %q, want Success", d.Status)
	}
	if d.AmountCents != 1130 || d.AmountCurrency != "EUR" {
		t.Errorf("amount = %d %s", d.AmountCents, d.AmountCurrency)
	}
	if d.ExternalPaymentID != "7914073381342284" {
		t.Errorf("external payment id = %q", d.ExternalPaymentID)
	}
	if d.ExternalOriginalReference != "7913999999999999" {
		t.Errorf("original reference = %q", d.ExternalOriginalReference)
	}
	if d.ExternalSubscriptionID != "8815999999999999" {
		t.Errorf("subscription id = %q", d.ExternalSubscriptionID)
	}
	if d.Email != "shopper@example.org" {
		t.Errorf("email = %q", d.Email)
	}
	if d.GatewayFeeCents != 0 || d.GatewayFeeCurrency != "EUR" {
		t.Errorf("fee = %d %s, want zero fee in amount currency", d.GatewayFeeCents, d.GatewayFeeCurrency)
	}
}

func TestMapNotificationItem_FailureFlag(t *testing.T) {
	event := MapNotificationItem(NotificationItem{EventCode: "AUTHORISATION", Success: "false"})
	if event.Details.Status != "Failure" {
		t.Errorf("status = %q, want Failure", event.Details.Status)
	}
}

func TestExtractAttemptToken_Precedence(t *testing.T) {
	tests := []struct {
		name string
		item NotificationItem
		want string
	}{
		{
			name: "merchant reference wins",
			item: NotificationItem{
				MerchantReference: "order-1",
				AdditionalData:    map[string]string{"metadata.attemptToken": "attempt-1"},
			},
			want: "order-1",
		},
		{
			name: "metadata fallback",
			item: NotificationItem{
				AdditionalData: map[string]string{"metadata.attemptToken": "attempt-1"},
			},
			want: "attempt-1",
		},
		{
			name: "neither present",
			item: NotificationItem{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractAttemptToken(tt.item); got != tt.want {
				t.Errorf("attempt token = %q, want %q", got, tt.want)
			}
		})
	}
}
