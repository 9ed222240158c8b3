package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"ticketflow/internal/shared/config"
)

func newTestPaystackProvider(baseURL string) *PaystackProvider {
	p := NewPaystackProvider(config.PaystackConfig{
		SecretKey:   "sk_test_secret",
		CallbackURL: "https://example.com/return",
	})
	if baseURL != "" {
		p.baseURL = baseURL
	}
	return p
}

func signPaystack(secret string, payload []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaystackParseWebhook(t *testing.T) {
	p := newTestPaystackProvider("")

	t.Run("charge success", func(t *testing.T) {
		payload := []byte(`{"event":"charge.success","data":{"status":"success","reference":"TF-abc-def"}}`)

		event, err := p.ParseWebhook(payload, signPaystack("sk_test_secret", payload))
		if err != nil {
			t.Fatalf("ParseWebhook() error = %v", err)
		}
		if event == nil {
			t.Fatal("expected an event for charge.success")
		}
		if event.IntentID != "TF-abc-def" {
			t.Errorf("IntentID = %q, want TF-abc-def", event.IntentID)
		}
		if event.Status != StatusSucceeded {
			t.Errorf("Status = %q, want %q", event.Status, StatusSucceeded)
		}
	})

	t.Run("charge failed carries the gateway reason", func(t *testing.T) {
		payload := []byte(`{"event":"charge.failed","data":{"status":"failed","reference":"TF-abc-def","gateway_response":"Insufficient funds"}}`)

		event, err := p.ParseWebhook(payload, signPaystack("sk_test_secret", payload))
		if err != nil {
			t.Fatalf("ParseWebhook() error = %v", err)
		}
		if event == nil || event.Status != StatusFailed {
			t.Fatalf("event = %+v, want failed status", event)
		}
		if event.Reason != "Insufficient funds" {
			t.Errorf("Reason = %q, want gateway response", event.Reason)
		}
	})

	t.Run("irrelevant event is ignored", func(t *testing.T) {
		payload := []byte(`{"event":"transfer.success","data":{"reference":"TRF-1"}}`)

		event, err := p.ParseWebhook(payload, signPaystack("sk_test_secret", payload))
		if err != nil {
			t.Fatalf("ParseWebhook() error = %v", err)
		}
		if event != nil {
			t.Errorf("expected nil event for unhandled type, got %+v", event)
		}
	})

	t.Run("bad signature rejected", func(t *testing.T) {
		payload := []byte(`{"event":"charge.success","data":{"reference":"TF-abc-def"}}`)

		if _, err := p.ParseWebhook(payload, "deadbeef"); err == nil {
			t.Fatal("expected signature verification error")
		}
	})

	t.Run("signature from a different secret rejected", func(t *testing.T) {
		payload := []byte(`{"event":"charge.success","data":{"reference":"TF-abc-def"}}`)

		if _, err := p.ParseWebhook(payload, signPaystack("sk_other", payload)); err == nil {
			t.Fatal("expected signature verification error")
		}
	})
}

func TestMapPaystackStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"success", StatusSucceeded},
		{"failed", StatusFailed},
		{"abandoned", StatusFailed},
		{"ongoing", StatusPending},
		{"pending", StatusPending},
		{"", StatusPending},
	}
	for _, tt := range tests {
		if got := mapPaystackStatus(tt.in); got != tt.want {
			t.Errorf("mapPaystackStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPaystackInitiate(t *testing.T) {
	orderID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/initialize" {
			t.Errorf("path = %q, want /transaction/initialize", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk_test_secret" {
			t.Errorf("Authorization = %q", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc123","access_code":"abc123","reference":"TF-ref-1"}}`))
	}))
	defer server.Close()

	p := newTestPaystackProvider(server.URL)

	ref, err := p.Initiate(context.Background(), InitiateParams{
		OrderID:       orderID,
		AmountCents:   10400,
		Currency:      "ngn",
		CustomerEmail: "buyer@example.com",
	})
	if err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}
	if ref.Provider != ProviderPaystack {
		t.Errorf("Provider = %q, want %q", ref.Provider, ProviderPaystack)
	}
	if ref.IntentID != "TF-ref-1" {
		t.Errorf("IntentID = %q, want TF-ref-1", ref.IntentID)
	}
	if ref.AuthorizationURL != "https://checkout.paystack.com/abc123" {
		t.Errorf("AuthorizationURL = %q", ref.AuthorizationURL)
	}
}

func TestPaystackVerify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/transaction/verify/") {
			t.Errorf("path = %q, want /transaction/verify/...", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"failed","reference":"TF-ref-1","amount":10400,"currency":"NGN","gateway_response":"Declined"}}`))
	}))
	defer server.Close()

	p := newTestPaystackProvider(server.URL)

	result, err := p.Verify(context.Background(), "TF-ref-1")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if result.Status != StatusFailed {
		t.Errorf("Status = %q, want %q", result.Status, StatusFailed)
	}
	if result.FailureReason != "Declined" {
		t.Errorf("FailureReason = %q, want Declined", result.FailureReason)
	}
}

func TestNewPaystackReference(t *testing.T) {
	orderID := uuid.New()
	ref := newPaystackReference(orderID)

	if !strings.HasPrefix(ref, "TF-"+orderID.String()[:8]+"-") {
		t.Errorf("reference %q does not embed the order prefix", ref)
	}
	if ref == newPaystackReference(orderID) {
		t.Error("references for the same order should be unique")
	}
}
