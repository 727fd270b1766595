package adyen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testCredentials() Credentials {
	return Credentials{
		APIKey:          "ADYEN_API_KEY",
		MerchantAccount: "MERCHANT_ACCOUNT",
		Environment:     EnvSandbox,
	}
}

// newTestClient points a gateway client at a local server for both surfaces.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(testCredentials()).WithBaseURLs(map[Surface]string{
		SurfaceCheckout:  server.URL,
		SurfaceRecurring: server.URL,
	})
}

func TestOnetime_Capabilities(t *testing.T) {
	caps := NewOnetime(testCredentials()).Capabilities()
	if !caps.SupportsCapture || !caps.SupportsDirectCharge {
		t.Errorf("capabilities = %+v, want capture and direct charge", caps)
	}
}

func TestOnetime_InitiateCharge_Authorised(t *testing.T) {
	var gotPath, gotAPIKey string
	var gotBody chargeRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-Api-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"resultCode":"Authorised","amount":{"currency":"EUR","value":6700},"pspReference":"P1"}`))
	})

	onetime := NewOnetime(testCredentials()).WithClient(client)
	result, err := onetime.InitiateCharge(context.Background(), ChargeParams{
		Amount:        Money{Value: 6700, Currency: "EUR"},
		PaymentToken:  "attempt-1",
		Reference:     "order-1",
		PaymentMethod: PaymentMethod{Type: "scheme", EncryptedCardNumber: "test_4111"},
		ReturnURL:     "https://platform.example/return",
		BrowserInfo:   &BrowserInfo{UserAgent: "test", AcceptHeader: "*/*"},
	})
	if err != nil {
		t.Fatalf("InitiateCharge: %v", err)
	}

	if gotPath != "/v67/payments" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAPIKey != "ADYEN_API_KEY" {
		t.Errorf("api key header = %q", gotAPIKey)
	}
	if gotBody.MerchantAccount != "MERCHANT_ACCOUNT" {
		t.Errorf("merchant account = %q", gotBody.MerchantAccount)
	}
	if gotBody.Channel != "Web" || gotBody.BrowserInfo == nil {
		t.Error("card charge must carry web channel and browser info")
	}
	if gotBody.Metadata["attemptToken"] != "attempt-1" {
		t.Errorf("attempt token metadata = %q", gotBody.Metadata["attemptToken"])
	}

	if !result.Success {
		t.Fatal("expected success")
	}
	if result.AmountCents != 6700 || result.AmountCurrency != "EUR" {
		t.Errorf("amount = %d %s", result.AmountCents, result.AmountCurrency)
	}
	if result.PaymentToken != "attempt-1" {
		t.Errorf("payment token = %q", result.PaymentToken)
	}
}

func TestOnetime_InitiateCharge_Refused(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"resultCode":"Refused","refusalReasonCode":"2","refusalReason":"Not enough balance"}`))
	})

	onetime := NewOnetime(testCredentials()).WithClient(client)
	result, err := onetime.InitiateCharge(context.Background(), ChargeParams{
		Amount:       Money{Value: 100, Currency: "EUR"},
		PaymentToken: "attempt-2",
	})
	if err != nil {
		t.Fatalf("InitiateCharge: %v", err)
	}

	if result.Success {
		t.Fatal("refusal must be a failure result, not an error")
	}
	if result.Message != "Received 2 - Not enough balance" {
		t.Errorf("message = %q", result.Message)
	}
}

func TestOnetime_InitiateCharge_GatewayFault(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream unavailable`))
	})

	onetime := NewOnetime(testCredentials()).WithClient(client)
	_, err := onetime.InitiateCharge(context.Background(), ChargeParams{
		Amount: Money{Value: 100, Currency: "EUR"},
	})

	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *GatewayError, got %v", err)
	}
	if gwErr.StatusCode != 502 {
		t.Errorf("status = %d, want 502", gwErr.StatusCode)
	}
	if gwErr.Path != "/v67/payments" {
		t.Errorf("path = %q", gwErr.Path)
	}
	if string(gwErr.Body) != "upstream unavailable" {
		t.Errorf("body = %q", gwErr.Body)
	}
}

func TestOnetime_AfterCharge_PassThrough(t *testing.T) {
	// No pending details step: the already-known token and amount are success.
	onetime := NewOnetime(testCredentials())
	result, err := onetime.AfterCharge(context.Background(), AfterChargeParams{
		PaymentToken: "some_payment_token",
		Amount:       Money{Value: 5000, Currency: "EUR"},
	})
	if err != nil {
		t.Fatalf("AfterCharge: %v", err)
	}

	if !result.Success {
		t.Fatal("expected success")
	}
	if result.PaymentToken != "some_payment_token" || result.AmountCents != 5000 || result.AmountCurrency != "EUR" {
		t.Errorf("unexpected pass-through result: %+v", result)
	}
}

func TestOnetime_AfterCharge_SubmitsDetails(t *testing.T) {
	var gotPath string
	var gotBody detailsRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"resultCode":"Authorised","pspReference":"P9"}`))
	})

	onetime := NewOnetime(testCredentials()).WithClient(client)
	result, err := onetime.AfterCharge(context.Background(), AfterChargeParams{
		PaymentToken: "attempt-3",
		Amount:       Money{Value: 2500, Currency: "EUR"},
		Details:      map[string]string{"redirectResult": "eNqtmF..."},
		PaymentData:  "Ab02b4c0...",
	})
	if err != nil {
		t.Fatalf("AfterCharge: %v", err)
	}

	if gotPath != "/v67/payments/details" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody.PaymentData != "Ab02b4c0..." {
		t.Errorf("payment data = %q", gotBody.PaymentData)
	}

	if !result.Success {
		t.Fatal("expected success")
	}
	if result.ExternalPaymentID != "P9" || result.PaymentToken != "P9" {
		t.Errorf("psp reference not projected: %+v", result)
	}
	if result.AmountCents != 2500 {
		t.Errorf("amount = %d, want carried-over 2500", result.AmountCents)
	}
}

func TestOnetime_Capture(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"amount":{"currency":"EUR","value":6000},"pspReference":"CAP-9","status":"received"}`))
	})

	onetime := NewOnetime(testCredentials()).WithClient(client)
	result, err := onetime.Capture(context.Background(), "some_payment_token", Money{Value: 6000, Currency: "EUR"})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	if gotPath != "/v67/payments/some_payment_token/captures" {
		t.Errorf("path = %q", gotPath)
	}
	if !result.Success || result.ExternalCaptureID != "CAP-9" {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.PaymentToken != "some_payment_token" {
		t.Errorf("payment token = %q", result.PaymentToken)
	}
}

func TestOnetime_RefundPayment(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"amount":{"currency":"EUR","value":3000},"pspReference":"REF-9","status":"received"}`))
	})

	onetime := NewOnetime(testCredentials()).WithClient(client)
	result, err := onetime.RefundPayment(context.Background(), "ext-pay-1", Money{Value: 3000, Currency: "EUR"})
	if err != nil {
		t.Fatalf("RefundPayment: %v", err)
	}

	if gotPath != "/v67/payments/ext-pay-1/refunds" {
		t.Errorf("path = %q", gotPath)
	}
	if !result.Success || result.ExternalRefundID != "REF-9" {
		t.Errorf("unexpected result: %+v", result)
	}
}
