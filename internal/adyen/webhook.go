package adyen

import "encoding/json"

// Notification is one inbound webhook delivery. A single delivery may carry
// multiple items; each is independently signed and mapped.
type Notification struct {
	Live              string            `json:"live"`
	NotificationItems []notificationBox `json:"notificationItems"`
}

// notificationBox is the wrapper object the gateway puts around each item.
type notificationBox struct {
	NotificationRequestItem NotificationItem `json:"NotificationRequestItem"`
}

// NotificationItem is one notification entry as delivered by the gateway.
// Success is the literal string "true" or "false" on the wire.
type NotificationItem struct {
	AdditionalData      map[string]string `json:"additionalData"`
	Amount              amountField       `json:"amount"`
	EventCode           string            `json:"eventCode"`
	EventDate           string            `json:"eventDate"`
	MerchantAccountCode string            `json:"merchantAccountCode"`
	MerchantReference   string            `json:"merchantReference"`
	OriginalReference   string            `json:"originalReference"`
	Operations          []string          `json:"operations"`
	PaymentMethod       string            `json:"paymentMethod"`
	PSPReference        string            `json:"pspReference"`
	Success             string            `json:"success"`
}

// SucceededOnGateway reports the gateway-side success flag of the item.
func (i NotificationItem) SucceededOnGateway() bool {
	return i.Success == "true"
}

// ParseNotification decodes a raw webhook body.
func ParseNotification(raw []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// Items unwraps the notification item containers.
func (n Notification) Items() []NotificationItem {
	items := make([]NotificationItem, 0, len(n.NotificationItems))
	for _, box := range n.NotificationItems {
		items = append(items, box.NotificationRequestItem)
	}
	return items
}
