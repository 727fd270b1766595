package adyen

import "context"

// attemptTokenMetadataKey is the metadata entry the gateway echoes back in
// webhook notifications, used to correlate them with the originating attempt.
const attemptTokenMetadataKey = "attemptToken"

// Onetime drives single card charges: initiate, finalize, capture, refund.
type Onetime struct {
	creds  Credentials
	client *Client
}

// NewOnetime creates the one-time payment adapter.
func NewOnetime(creds Credentials) *Onetime {
	return &Onetime{creds: creds, client: NewClient(creds)}
}

// WithClient swaps the gateway client. Used by tests.
func (o *Onetime) WithClient(client *Client) *Onetime {
	o.client = client
	return o
}

func (o *Onetime) Name() string {
	return PaymentGateway
}

func (o *Onetime) Capabilities() Capabilities {
	return Capabilities{SupportsCapture: true, SupportsDirectCharge: true}
}

// ChargeParams describes a one-time charge attempt.
type ChargeParams struct {
	Amount        Money
	PaymentToken  string
	Reference     string
	PaymentMethod PaymentMethod
	ShopperEmail  string

	// Web-channel context for card charges that may need 3-D-Secure.
	ReturnURL   string
	Origin      string
	BrowserInfo *BrowserInfo
}

// InitiateCharge starts a payment. The result is success for any finalizing
// status, including redirect-required and challenge-required ones; the caller
// resumes those via AfterCharge with the collected details.
func (o *Onetime) InitiateCharge(ctx context.Context, params ChargeParams) (PaymentResult, error) {
	req := chargeRequest{
		Amount:          amountField{Currency: params.Amount.Currency, Value: params.Amount.Value},
		Reference:       params.Reference,
		MerchantAccount: o.creds.MerchantAccount,
		PaymentMethod:   params.PaymentMethod,
		ShopperEmail:    params.ShopperEmail,
		Metadata:        map[string]string{attemptTokenMetadataKey: params.PaymentToken},
	}

	// Card charges need the device context so the gateway can decide on a
	// 3-D-Secure challenge.
	if params.PaymentMethod.Type == "scheme" {
		req.Channel = "Web"
		req.ReturnURL = params.ReturnURL
		req.Origin = params.Origin
		req.BrowserInfo = params.BrowserInfo
	}

	status, body, err := o.client.invoke(ctx, OpChargeOnetime, nil, req)
	if err != nil {
		return PaymentResult{}, err
	}
	return NormalizeCharge(status, body, PaymentGateway, params.PaymentToken), nil
}

// AfterCharge finalizes an attempt. When the initial response demanded an
// additional-details step, the stored details are submitted and the answer is
// re-normalized; otherwise the known token and amount pass through as success.
func (o *Onetime) AfterCharge(ctx context.Context, params AfterChargeParams) (PaymentResult, error) {
	if len(params.Details) == 0 && params.PaymentData == "" {
		return PaymentResult{
			Success:        true,
			PaymentType:    PaymentGateway,
			PaymentToken:   params.PaymentToken,
			AmountCents:    params.Amount.Value,
			AmountCurrency: params.Amount.Currency,
		}, nil
	}

	req := detailsRequest{Details: params.Details, PaymentData: params.PaymentData}
	status, body, err := o.client.invoke(ctx, OpSubmitPaymentDetails, nil, req)
	if err != nil {
		return PaymentResult{}, err
	}
	return NormalizeDetails(status, body, params.Amount, params.PaymentToken), nil
}

// Capture claims previously authorised funds.
func (o *Onetime) Capture(ctx context.Context, paymentToken string, amount Money) (PaymentResult, error) {
	req := modificationRequest{
		Amount:          amountField{Currency: amount.Currency, Value: amount.Value},
		MerchantAccount: o.creds.MerchantAccount,
	}
	status, body, err := o.client.invoke(ctx, OpCapturePayment, map[string]string{"payment_id": paymentToken}, req)
	if err != nil {
		return PaymentResult{}, err
	}
	return NormalizeCapture(status, body, paymentToken), nil
}

// RefundPayment returns funds for a settled payment.
func (o *Onetime) RefundPayment(ctx context.Context, externalPaymentID string, amount Money) (PaymentResult, error) {
	req := modificationRequest{
		Amount:          amountField{Currency: amount.Currency, Value: amount.Value},
		MerchantAccount: o.creds.MerchantAccount,
	}
	status, body, err := o.client.invoke(ctx, OpRefundPayment, map[string]string{"payment_id": externalPaymentID}, req)
	if err != nil {
		return PaymentResult{}, err
	}
	return NormalizeRefund(status, body, externalPaymentID), nil
}
