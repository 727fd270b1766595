package adyen

import "context"

// Recurring drives mandate-based charges: a stored payment method is reused
// under continuous authority instead of re-collecting card data.
type Recurring struct {
	creds  Credentials
	client *Client
}

// NewRecurring creates the recurring payment adapter.
func NewRecurring(creds Credentials) *Recurring {
	return &Recurring{creds: creds, client: NewClient(creds)}
}

// WithClient swaps the gateway client. Used by tests.
func (r *Recurring) WithClient(client *Client) *Recurring {
	r.client = client
	return r
}

func (r *Recurring) Name() string {
	return PaymentTypeRecurring
}

func (r *Recurring) Capabilities() Capabilities {
	return Capabilities{SupportsCapture: false, SupportsDirectCharge: true}
}

// RecurringChargeParams describes a charge against a stored mandate.
type RecurringChargeParams struct {
	Amount                Money
	PaymentToken          string
	Reference             string
	ShopperReference      string
	StoredPaymentMethodID string
}

// ChargeStored charges a stored payment method. The shopper is not present,
// so the request carries continuous-authority semantics instead of a card
// payload.
func (r *Recurring) ChargeStored(ctx context.Context, params RecurringChargeParams) (PaymentResult, error) {
	req := chargeRequest{
		Amount:          amountField{Currency: params.Amount.Currency, Value: params.Amount.Value},
		Reference:       params.Reference,
		MerchantAccount: r.creds.MerchantAccount,
		PaymentMethod: PaymentMethod{
			Type:                  "scheme",
			StoredPaymentMethodID: params.StoredPaymentMethodID,
		},
		ShopperReference:         params.ShopperReference,
		ShopperInteraction:       "ContAuth",
		RecurringProcessingModel: "Subscription",
		Metadata:                 map[string]string{attemptTokenMetadataKey: params.PaymentToken},
	}

	status, body, err := r.client.invoke(ctx, OpChargeRecurring, nil, req)
	if err != nil {
		return PaymentResult{}, err
	}
	return NormalizeCharge(status, body, PaymentTypeRecurring, params.PaymentToken), nil
}

// AfterCharge passes the already-known token and amount through as success.
// The gateway offers no subscription lookup to verify against, so callers
// must check the charge response before calling this.
func (r *Recurring) AfterCharge(_ context.Context, params AfterChargeParams) (PaymentResult, error) {
	return PaymentResult{
		Success:        true,
		PaymentType:    PaymentTypeRecurring,
		PaymentToken:   params.PaymentToken,
		AmountCents:    params.Amount.Value,
		AmountCurrency: params.Amount.Currency,
	}, nil
}

// CancelSubscription disables the stored mandate for a shopper reference.
// Disabling without a detail reference drops the whole recurring contract.
func (r *Recurring) CancelSubscription(ctx context.Context, subscriptionID string) (PaymentResult, error) {
	req := disableRequest{
		Contract:         "RECURRING",
		ShopperReference: subscriptionID,
		MerchantAccount:  r.creds.MerchantAccount,
	}
	status, body, err := r.client.invoke(ctx, OpCancelSubscription, nil, req)
	if err != nil {
		return PaymentResult{}, err
	}
	return NormalizeCancel(status, body, subscriptionID), nil
}
