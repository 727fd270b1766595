package adyen

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Result codes that mean "proceed" rather than "refused". RedirectShopper,
// IdentifyShopper and ChallengeShopper signal a pending 3-D-Secure style step;
// the charge is still on track and must not be reported as a decline.
// See https://docs.adyen.com/online-payments/payment-result-codes
var finalizingResultCodes = map[string]bool{
	"Authorised":       true,
	"RedirectShopper":  true,
	"IdentifyShopper":  true,
	"ChallengeShopper": true,
}

// Plain-text confirmations the recurring disable endpoint may answer with.
// Isolated here so the accepted set can change without touching call sites.
var subscriptionCancelConfirmations = map[string]bool{
	"[detail-successfully-disabled]":      true,
	"[all-details-successfully-disabled]": true,
}

type amountField struct {
	Currency string `json:"currency"`
	Value    int64  `json:"value"`
}

type splitField struct {
	Type   string       `json:"type"`
	Amount *amountField `json:"amount"`
}

// paymentResponse covers the checkout endpoints: payment initiation, details
// submission, captures and refunds. Fields absent from a given response stay
// zero-valued.
type paymentResponse struct {
	ResultCode        string       `json:"resultCode"`
	PSPReference      string       `json:"pspReference"`
	Amount            *amountField `json:"amount"`
	Splits            []splitField `json:"splits"`
	RefusalReason     string       `json:"refusalReason"`
	RefusalReasonCode string       `json:"refusalReasonCode"`
	Status            string       `json:"status"`
	Action            *struct {
		PaymentData string `json:"paymentData"`
	} `json:"action"`
}

// apiError is the shape of a non-2xx checkout response. Status is numeric
// there, unlike the string status of capture/refund confirmations.
type apiError struct {
	Status    int    `json:"status"`
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

func parseAPIError(body []byte) apiError {
	var e apiError
	_ = json.Unmarshal(body, &e)
	return e
}

// errorStatus prefers the status the gateway put in the error body, falling
// back to the HTTP status of the response.
func errorStatus(e apiError, httpStatus int) string {
	if e.Status != 0 {
		return strconv.Itoa(e.Status)
	}
	return strconv.Itoa(httpStatus)
}

// paymentFee extracts the PaymentFee line from a splits array, if any.
// currency falls back to the payment currency when the split has none.
func paymentFee(splits []splitField, fallbackCurrency string) *Money {
	for _, split := range splits {
		if split.Type != "PaymentFee" || split.Amount == nil {
			continue
		}
		currency := split.Amount.Currency
		if currency == "" {
			currency = fallbackCurrency
		}
		return &Money{Value: split.Amount.Value, Currency: currency}
	}
	return nil
}

// NormalizeCharge classifies a payment-initiation response. paymentToken is
// the platform-side token of the attempt; it is echoed into the result so a
// refusal can be matched back to the attempt that caused it.
func NormalizeCharge(httpStatus int, body []byte, paymentType, paymentToken string) PaymentResult {
	if httpStatus != 200 {
		e := parseAPIError(body)
		return errorResult(paymentType, e.ErrorCode, e.Message, errorStatus(e, httpStatus), paymentToken)
	}

	var resp paymentResponse
	_ = json.Unmarshal(body, &resp)

	if !finalizingResultCodes[resp.ResultCode] {
		return errorResult(paymentType, resp.RefusalReasonCode, resp.RefusalReason, resp.ResultCode, paymentToken)
	}

	result := PaymentResult{
		Success:      true,
		PaymentType:  paymentType,
		PaymentToken: paymentToken,
		Status:       resp.ResultCode,
		Raw:          json.RawMessage(body),
	}
	if resp.Amount != nil {
		result.AmountCents = resp.Amount.Value
		result.AmountCurrency = resp.Amount.Currency
		result.GatewayFee = paymentFee(resp.Splits, resp.Amount.Currency)
	}
	if resp.Action != nil {
		// paymentData is the continuation token for redirect/challenge flows;
		// the caller needs it to resume via submit_payment_details.
		result.Metadata = resp.Action.PaymentData
	}
	return result
}

// NormalizeDetails classifies a submit-payment-details response, the
// continuation step of a redirect or challenge flow. The amount is carried
// over from the originating attempt because the details response omits it.
func NormalizeDetails(httpStatus int, body []byte, amount Money, paymentToken string) PaymentResult {
	if httpStatus != 200 {
		e := parseAPIError(body)
		return errorResult(PaymentGateway, e.ErrorCode, e.Message, errorStatus(e, httpStatus), paymentToken)
	}

	var resp paymentResponse
	_ = json.Unmarshal(body, &resp)

	if !finalizingResultCodes[resp.ResultCode] {
		return errorResult(PaymentGateway, resp.RefusalReasonCode, resp.RefusalReason, resp.ResultCode, paymentToken)
	}

	return PaymentResult{
		Success:           true,
		PaymentType:       PaymentGateway,
		PaymentToken:      resp.PSPReference,
		ExternalPaymentID: resp.PSPReference,
		AmountCents:       amount.Value,
		AmountCurrency:    amount.Currency,
		Status:            resp.ResultCode,
		Raw:               json.RawMessage(body),
	}
}

// NormalizeCapture classifies a capture response. Success is exactly HTTP 201.
func NormalizeCapture(httpStatus int, body []byte, paymentToken string) PaymentResult {
	if httpStatus != 201 {
		e := parseAPIError(body)
		return errorResult(PaymentGateway, e.ErrorCode, e.Message, errorStatus(e, httpStatus), paymentToken)
	}

	var resp paymentResponse
	_ = json.Unmarshal(body, &resp)

	result := PaymentResult{
		Success:           true,
		PaymentType:       PaymentGateway,
		PaymentToken:      paymentToken,
		ExternalCaptureID: resp.PSPReference,
		Status:            resp.Status,
		Raw:               json.RawMessage(body),
	}
	if resp.Amount != nil {
		result.AmountCents = resp.Amount.Value
		result.AmountCurrency = resp.Amount.Currency
		result.GatewayFee = paymentFee(resp.Splits, resp.Amount.Currency)
	}
	return result
}

// NormalizeRefund classifies a refund response. Success is exactly HTTP 201.
func NormalizeRefund(httpStatus int, body []byte, externalPaymentID string) PaymentResult {
	if httpStatus != 201 {
		e := parseAPIError(body)
		return errorResult(PaymentGateway, e.ErrorCode, e.Message, errorStatus(e, httpStatus), externalPaymentID)
	}

	var resp paymentResponse
	_ = json.Unmarshal(body, &resp)

	result := PaymentResult{
		Success:          true,
		PaymentType:      PaymentGateway,
		ExternalRefundID: resp.PSPReference,
		Status:           resp.Status,
		Raw:              json.RawMessage(body),
	}
	if resp.Amount != nil {
		result.AmountCents = resp.Amount.Value
		result.AmountCurrency = resp.Amount.Currency
	}
	return result
}

// NormalizeCancel classifies a recurring-disable response. Success requires
// both HTTP 200 and the body matching one of the accepted confirmation
// phrases; the endpoint may answer with a bare string rather than JSON.
func NormalizeCancel(httpStatus int, body []byte, paymentToken string) PaymentResult {
	if httpStatus == 200 && cancelConfirmed(body) {
		return PaymentResult{
			Success:     true,
			PaymentType: PaymentTypeRecurring,
			Message:     "Subscription cancelled successfully",
			Status:      strconv.Itoa(httpStatus),
			Raw:         json.RawMessage(body),
		}
	}

	e := parseAPIError(body)
	return errorResult(PaymentTypeRecurring, e.ErrorCode, e.Message, errorStatus(e, httpStatus), paymentToken)
}

// cancelConfirmed is the single predicate gating subscription cancellation.
// It accepts both the bare-string body and the JSON {"response": "..."} form.
func cancelConfirmed(body []byte) bool {
	var wrapped struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Response != "" {
		return subscriptionCancelConfirmations[wrapped.Response]
	}

	text := strings.Trim(strings.TrimSpace(string(body)), `"`)
	return subscriptionCancelConfirmations[text]
}

// NormalizeValidation classifies a credential probe. Only the HTTP status
// matters; the body is irrelevant.
func NormalizeValidation(httpStatus int) bool {
	return httpStatus == 200
}
