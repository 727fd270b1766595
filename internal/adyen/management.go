package adyen

import "context"

// Management covers account-level calls that are not part of a payment flow.
type Management struct {
	creds  Credentials
	client *Client
}

// NewManagement creates the management adapter.
func NewManagement(creds Credentials) *Management {
	return &Management{creds: creds, client: NewClient(creds)}
}

// WithClient swaps the gateway client. Used by tests.
func (m *Management) WithClient(client *Client) *Management {
	m.client = client
	return m
}

// ValidateCredentials probes the gateway with a lightweight call. Only the
// HTTP status decides; incomplete credentials fail without a round trip.
func (m *Management) ValidateCredentials(ctx context.Context) (bool, error) {
	if err := m.creds.Validate(); err != nil {
		return false, nil
	}

	req := struct {
		MerchantAccount string `json:"merchantAccount"`
	}{MerchantAccount: m.creds.MerchantAccount}

	status, _, err := m.client.invoke(ctx, OpValidateCredentials, nil, req)
	if err != nil {
		return false, err
	}
	return NormalizeValidation(status), nil
}
