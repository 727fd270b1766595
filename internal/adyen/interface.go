package adyen

import "context"

// Capabilities tells the host what a payment mode can do, so it can branch
// without inspecting adapter identity.
type Capabilities struct {
	SupportsCapture      bool `json:"supports_capture"`
	SupportsDirectCharge bool `json:"supports_direct_charge"`
}

// Mode is the surface shared by the one-time and recurring adapters.
type Mode interface {
	// Name returns the gateway mode identifier.
	Name() string

	// Capabilities returns the capability record for this mode.
	Capabilities() Capabilities

	// AfterCharge finalizes a charge after the initial response, submitting
	// pending redirect/challenge details when the attempt requires it.
	AfterCharge(ctx context.Context, params AfterChargeParams) (PaymentResult, error)
}

// PaymentMethod is the payment-method block of a charge request. For stored
// mandates only Type and StoredPaymentMethodID are set.
type PaymentMethod struct {
	Type                  string `json:"type"`
	EncryptedCardNumber   string `json:"encryptedCardNumber,omitempty"`
	EncryptedExpiryMonth  string `json:"encryptedExpiryMonth,omitempty"`
	EncryptedExpiryYear   string `json:"encryptedExpiryYear,omitempty"`
	EncryptedSecurityCode string `json:"encryptedSecurityCode,omitempty"`
	HolderName            string `json:"holderName,omitempty"`
	StoredPaymentMethodID string `json:"storedPaymentMethodId,omitempty"`
}

// BrowserInfo is the shopper-device context required for 3-D-Secure card
// charges on the web channel.
type BrowserInfo struct {
	UserAgent      string `json:"userAgent"`
	AcceptHeader   string `json:"acceptHeader"`
	Language       string `json:"language,omitempty"`
	ColorDepth     int    `json:"colorDepth,omitempty"`
	ScreenHeight   int    `json:"screenHeight,omitempty"`
	ScreenWidth    int    `json:"screenWidth,omitempty"`
	TimeZoneOffset int    `json:"timeZoneOffset,omitempty"`
	JavaEnabled    bool   `json:"javaEnabled"`
}

// AfterChargeParams finalizes an attempt. When Details/PaymentData are empty
// the initial response already settled the charge and the known token and
// amount pass through as success.
type AfterChargeParams struct {
	PaymentToken string
	Amount       Money
	Details      map[string]string
	PaymentData  string
}

// chargeRequest is the wire shape of the checkout /payments call, shared by
// both modes.
type chargeRequest struct {
	Amount                   amountField       `json:"amount"`
	Reference                string            `json:"reference"`
	MerchantAccount          string            `json:"merchantAccount"`
	PaymentMethod            PaymentMethod     `json:"paymentMethod"`
	ReturnURL                string            `json:"returnUrl,omitempty"`
	Origin                   string            `json:"origin,omitempty"`
	Channel                  string            `json:"channel,omitempty"`
	BrowserInfo              *BrowserInfo      `json:"browserInfo,omitempty"`
	ShopperEmail             string            `json:"shopperEmail,omitempty"`
	ShopperReference         string            `json:"shopperReference,omitempty"`
	ShopperInteraction       string            `json:"shopperInteraction,omitempty"`
	RecurringProcessingModel string            `json:"recurringProcessingModel,omitempty"`
	StorePaymentMethod       bool              `json:"storePaymentMethod,omitempty"`
	Metadata                 map[string]string `json:"metadata,omitempty"`
}

// detailsRequest is the wire shape of the /payments/details continuation call.
type detailsRequest struct {
	Details     map[string]string `json:"details"`
	PaymentData string            `json:"paymentData,omitempty"`
}

// modificationRequest is the wire shape of capture and refund calls.
type modificationRequest struct {
	Amount          amountField `json:"amount"`
	MerchantAccount string      `json:"merchantAccount"`
}

// disableRequest is the wire shape of the recurring disable call. Without a
// recurringDetailReference the whole contract of the shopper reference is
// disabled.
type disableRequest struct {
	Contract         string `json:"contract"`
	ShopperReference string `json:"shopperReference"`
	MerchantAccount  string `json:"merchantAccount"`
}
