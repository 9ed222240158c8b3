package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Status is the provider-agnostic state of a payment attempt.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

var (
	// ErrUnknownProvider is returned when a requested provider is not
	// configured.
	ErrUnknownProvider = errors.New("unknown payment provider")

	// ErrNoDefaultProvider is returned when a provider must be chosen
	// explicitly because zero or several are configured.
	ErrNoDefaultProvider = errors.New("payment provider must be specified")
)

// InitiateParams carries everything a provider needs to open a payment for
// an order.
type InitiateParams struct {
	OrderID       uuid.UUID
	AmountCents   int64
	Currency      string
	CustomerEmail string
}

// IntentRef identifies a provider-side payment and the client handles needed
// to complete it. ClientSecret is Stripe's completion handle;
// AuthorizationURL is Paystack's redirect target.
type IntentRef struct {
	Provider         string `json:"provider"`
	IntentID         string `json:"intent_id"`
	Reference        string `json:"reference"`
	ClientSecret     string `json:"client_secret,omitempty"`
	AuthorizationURL string `json:"authorization_url,omitempty"`
}

// VerificationResult is a provider's answer to "what happened to this
// payment".
type VerificationResult struct {
	Status        Status
	Reference     string
	FailureReason string
}

// WebhookEvent is a provider push notification after signature verification.
type WebhookEvent struct {
	IntentID string
	Status   Status
	Reason   string
}

// Provider abstracts a payment processor. Implementations must be safe for
// concurrent use.
type Provider interface {
	Name() string

	// Initiate opens a provider-side payment for the order amount.
	Initiate(ctx context.Context, params InitiateParams) (*IntentRef, error)

	// Verify fetches the authoritative state of a previously initiated
	// payment.
	Verify(ctx context.Context, intentID string) (*VerificationResult, error)

	// ParseWebhook authenticates a raw webhook delivery and extracts the
	// payment event it describes. Deliveries that fail signature
	// verification return an error; authenticated events the provider
	// does not care about return (nil, nil).
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
