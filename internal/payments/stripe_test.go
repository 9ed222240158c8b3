package payments

import (
	"testing"

	"github.com/stripe/stripe-go/v74"
)

func TestMapStripeStatus(t *testing.T) {
	tests := []struct {
		name   string
		intent *stripe.PaymentIntent
		want   Status
	}{
		{
			name:   "succeeded",
			intent: &stripe.PaymentIntent{Status: stripe.PaymentIntentStatusSucceeded},
			want:   StatusSucceeded,
		},
		{
			name:   "canceled",
			intent: &stripe.PaymentIntent{Status: stripe.PaymentIntentStatusCanceled},
			want:   StatusFailed,
		},
		{
			name: "requires payment method after a decline",
			intent: &stripe.PaymentIntent{
				Status:           stripe.PaymentIntentStatusRequiresPaymentMethod,
				LastPaymentError: &stripe.Error{Msg: "Your card was declined."},
			},
			want: StatusFailed,
		},
		{
			name:   "requires payment method before any attempt",
			intent: &stripe.PaymentIntent{Status: stripe.PaymentIntentStatusRequiresPaymentMethod},
			want:   StatusPending,
		},
		{
			name:   "processing",
			intent: &stripe.PaymentIntent{Status: stripe.PaymentIntentStatusProcessing},
			want:   StatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapStripeStatus(tt.intent); got != tt.want {
				t.Errorf("mapStripeStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}
