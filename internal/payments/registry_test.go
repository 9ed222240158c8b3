package payments

import (
	"context"
	"errors"
	"testing"
)

type stubProvider struct {
	name string
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Initiate(ctx context.Context, params InitiateParams) (*IntentRef, error) {
	return &IntentRef{Provider: s.name, IntentID: "stub_intent"}, nil
}

func (s *stubProvider) Verify(ctx context.Context, intentID string) (*VerificationResult, error) {
	return &VerificationResult{Status: StatusPending}, nil
}

func (s *stubProvider) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	return nil, nil
}

func TestRegistrySelect(t *testing.T) {
	t.Run("named provider", func(t *testing.T) {
		r := NewRegistry()
		r.Register(&stubProvider{name: ProviderStripe})
		r.Register(&stubProvider{name: ProviderPaystack})

		p, err := r.Select(ProviderPaystack)
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if p.Name() != ProviderPaystack {
			t.Errorf("Name() = %q, want %q", p.Name(), ProviderPaystack)
		}
	})

	t.Run("auto-selects the only provider", func(t *testing.T) {
		r := NewRegistry()
		r.Register(&stubProvider{name: ProviderStripe})

		p, err := r.Select("")
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if p.Name() != ProviderStripe {
			t.Errorf("Name() = %q, want %q", p.Name(), ProviderStripe)
		}
	})

	t.Run("refuses to auto-select among several providers", func(t *testing.T) {
		r := NewRegistry()
		r.Register(&stubProvider{name: ProviderStripe})
		r.Register(&stubProvider{name: ProviderPaystack})

		_, err := r.Select("")
		if !errors.Is(err, ErrNoDefaultProvider) {
			t.Errorf("error = %v, want ErrNoDefaultProvider", err)
		}
	})

	t.Run("refuses to auto-select with no providers", func(t *testing.T) {
		r := NewRegistry()

		_, err := r.Select("")
		if !errors.Is(err, ErrNoDefaultProvider) {
			t.Errorf("error = %v, want ErrNoDefaultProvider", err)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		r := NewRegistry()
		r.Register(&stubProvider{name: ProviderStripe})

		_, err := r.Select("paypal")
		if !errors.Is(err, ErrUnknownProvider) {
			t.Errorf("error = %v, want ErrUnknownProvider", err)
		}
	})

	t.Run("available preserves registration order", func(t *testing.T) {
		r := NewRegistry()
		r.Register(&stubProvider{name: ProviderPaystack})
		r.Register(&stubProvider{name: ProviderStripe})

		got := r.Available()
		want := []string{ProviderPaystack, ProviderStripe}
		if len(got) != len(want) {
			t.Fatalf("Available() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Available()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})
}
