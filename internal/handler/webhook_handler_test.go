package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"adyenbridge/internal/adyen"
	"adyenbridge/internal/middleware"
	"adyenbridge/internal/models"
)

// Key and signature from the gateway's documented notification example.
const testHMACKey = "44782DEF547AAA06C910C43932B1EB0C71FC68D9D0C057550C48EC2ACF6BA056"

const signedNotification = `{
	"live":"false",
	"notificationItems":[
		{
			"NotificationRequestItem":{
				"additionalData":{"hmacSignature":"coqCmt/IZ4E3CzPvMY8zTjQVL5hYJUiBRg8UU+iCWo0="},
				"amount":{"value":1130,"currency":"EUR"},
				"pspReference":"7914073381342284",
				"eventCode":"AUTHORISATION",
				"eventDate":"2019-05-06T17:15:34.121+02:00",
				"merchantAccountCode":"TestMerchant",
				"operations":["CANCEL","CAPTURE","REFUND"],
				"merchantReference":"TestPayment-1407325143704",
				"paymentMethod":"visa",
				"success":"true"
			}
		}
	]
}`

type fakeEventStore struct {
	events []*models.WebhookEvent
	err    error
}

func (s *fakeEventStore) Create(event *models.WebhookEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func deliver(t *testing.T, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/adyen", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestHandleNotification_AcceptsSignedDelivery(t *testing.T) {
	store := &fakeEventStore{}
	h := NewWebhookHandler(adyen.NewAuthenticator(testHMACKey), store, zap.NewNop())

	rec := deliver(t, h.HandleNotification, signedNotification)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); got != "[accepted]" {
		t.Errorf("body = %q, want %q", got, "[accepted]")
	}

	if len(store.events) != 1 {
		t.Fatalf("stored %d events, want 1", len(store.events))
	}
	event := store.events[0]
	if event.PSPReference != "7914073381342284" {
		t.Errorf("psp reference = %q", event.PSPReference)
	}
	if event.CanonicalType != string(adyen.EventOneTimeCharged) {
		t.Errorf("canonical type = %q, want %q", event.CanonicalType, adyen.EventOneTimeCharged)
	}
	if event.AttemptToken != "TestPayment-1407325143704" {
		t.Errorf("attempt token = %q", event.AttemptToken)
	}
	if !event.Succeeded {
		t.Error("event must be marked succeeded")
	}
	if event.AmountCents != 1130 || event.AmountCurrency != "EUR" {
		t.Errorf("amount = %d %s", event.AmountCents, event.AmountCurrency)
	}
}

func TestHandleNotification_RejectsBadSignature(t *testing.T) {
	store := &fakeEventStore{}
	h := NewWebhookHandler(adyen.NewAuthenticator(testHMACKey), store, zap.NewNop())

	tampered := strings.Replace(signedNotification, `"value":1130`, `"value":9900`, 1)
	rec := deliver(t, h.HandleNotification, tampered)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if len(store.events) != 0 {
		t.Errorf("rejected delivery must not be stored, got %d events", len(store.events))
	}
}

func TestHandleNotification_StorageFailureTriggersRedelivery(t *testing.T) {
	store := &fakeEventStore{err: errors.New("db down")}
	h := NewWebhookHandler(adyen.NewAuthenticator(testHMACKey), store, zap.NewNop())

	rec := deliver(t, h.HandleNotification, signedNotification)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

// dedupChain wires the real dedup middleware in front of the handler, the way
// the router does.
func dedupChain(t *testing.T, h *WebhookHandler) echo.HandlerFunc {
	t.Helper()
	deduper, err := middleware.NewNotificationDeduper("", "", 0, time.Minute)
	if err != nil {
		t.Fatalf("NewNotificationDeduper: %v", err)
	}
	return middleware.WebhookDedup(deduper)(h.HandleNotification)
}

func TestHandleNotification_RedeliveredAfterStorageFailure(t *testing.T) {
	store := &fakeEventStore{err: errors.New("db down")}
	h := NewWebhookHandler(adyen.NewAuthenticator(testHMACKey), store, zap.NewNop())
	chain := dedupChain(t, h)

	rec := deliver(t, chain, signedNotification)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	// Storage recovers; the gateway redelivers the same notification. It must
	// reach the handler and be stored, not be acknowledged as a duplicate.
	store.err = nil
	rec = deliver(t, chain, signedNotification)
	if rec.Code != http.StatusOK {
		t.Fatalf("redelivery status = %d, want %d", rec.Code, http.StatusOK)
	}
	if len(store.events) != 1 {
		t.Fatalf("stored %d events after redelivery, want 1", len(store.events))
	}

	// The second redelivery, after a successful store, is the real duplicate.
	rec = deliver(t, chain, signedNotification)
	if rec.Code != http.StatusOK {
		t.Fatalf("duplicate status = %d, want %d", rec.Code, http.StatusOK)
	}
	if len(store.events) != 1 {
		t.Errorf("duplicate delivery must not be stored again, got %d events", len(store.events))
	}
}

func TestHandleNotification_ForgedDeliveryDoesNotSuppressGenuine(t *testing.T) {
	store := &fakeEventStore{}
	h := NewWebhookHandler(adyen.NewAuthenticator(testHMACKey), store, zap.NewNop())
	chain := dedupChain(t, h)

	// An unauthenticated delivery claiming the same pspReference and eventCode
	// as a genuine notification is rejected.
	forged := strings.Replace(signedNotification,
		"coqCmt/IZ4E3CzPvMY8zTjQVL5hYJUiBRg8UU+iCWo0=", "Zm9yZ2VkLXNpZ25hdHVyZQ==", 1)
	rec := deliver(t, chain, forged)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("forged status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	// The rejection must not have claimed the dedup key: the genuine delivery
	// arriving afterwards must still be processed and stored.
	rec = deliver(t, chain, signedNotification)
	if rec.Code != http.StatusOK {
		t.Fatalf("genuine status = %d, want %d", rec.Code, http.StatusOK)
	}
	if len(store.events) != 1 {
		t.Fatalf("stored %d events, want 1", len(store.events))
	}
}
