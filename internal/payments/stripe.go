package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/webhook"

	"ticketflow/internal/shared/config"
)

const ProviderStripe = "stripe"

// StripeProvider drives card payments through Stripe PaymentIntents.
type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider configures the Stripe SDK with the account secret key.
func NewStripeProvider(cfg config.StripeConfig) *StripeProvider {
	stripe.Key = cfg.SecretKey
	return &StripeProvider{webhookSecret: cfg.WebhookSecret}
}

func (p *StripeProvider) Name() string { return ProviderStripe }

func (p *StripeProvider) Initiate(ctx context.Context, params InitiateParams) (*IntentRef, error) {
	piParams := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(params.AmountCents),
		Currency: stripe.String(params.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	piParams.Context = ctx
	piParams.AddMetadata("order_id", params.OrderID.String())
	if params.CustomerEmail != "" {
		piParams.ReceiptEmail = stripe.String(params.CustomerEmail)
	}

	intent, err := paymentintent.New(piParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &IntentRef{
		Provider:     ProviderStripe,
		IntentID:     intent.ID,
		Reference:    intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (p *StripeProvider) Verify(ctx context.Context, intentID string) (*VerificationResult, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment intent %s: %w", intentID, err)
	}

	result := &VerificationResult{
		Status:    mapStripeStatus(intent),
		Reference: intent.ID,
	}
	if result.Status == StatusFailed && intent.LastPaymentError != nil {
		result.FailureReason = intent.LastPaymentError.Msg
	}
	return result, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts payment
// intent outcomes. Other event types are acknowledged and ignored.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
	default:
		return nil, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent from webhook: %w", err)
	}

	we := &WebhookEvent{IntentID: intent.ID}
	if event.Type == "payment_intent.succeeded" {
		we.Status = StatusSucceeded
	} else {
		we.Status = StatusFailed
		if intent.LastPaymentError != nil {
			we.Reason = intent.LastPaymentError.Msg
		}
	}
	return we, nil
}

// mapStripeStatus folds Stripe's intent lifecycle into the three states the
// order flow cares about. A canceled intent or one kicked back to
// requires_payment_method after an attempt counts as failed.
func mapStripeStatus(intent *stripe.PaymentIntent) Status {
	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return StatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return StatusFailed
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if intent.LastPaymentError != nil {
			return StatusFailed
		}
		return StatusPending
	default:
		return StatusPending
	}
}
