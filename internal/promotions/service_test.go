package promotions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeRepository struct {
	promos map[string]*Promotion
}

func (f *fakeRepository) GetByCode(ctx context.Context, code string) (*Promotion, error) {
	promo, ok := f.promos[code]
	if !ok {
		return nil, ErrPromotionNotFound
	}
	return promo, nil
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

func TestValidate(t *testing.T) {
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	eventID := uuid.New()
	otherEventID := uuid.New()

	repo := &fakeRepository{promos: map[string]*Promotion{
		"SAVE20": {
			Code:           "SAVE20",
			AmountOffCents: int64Ptr(2000),
			MinOrderCents:  5000,
			Active:         true,
		},
		"EARLYBIRD": {
			Code:       "EARLYBIRD",
			PercentOff: float64Ptr(10),
			Active:     true,
		},
		"FESTIVAL5": {
			Code:           "FESTIVAL5",
			EventID:        &eventID,
			AmountOffCents: int64Ptr(500),
			Active:         true,
		},
		"EXPIRED": {
			Code:           "EXPIRED",
			AmountOffCents: int64Ptr(1000),
			EndsAt:         &past,
			Active:         true,
		},
		"EXHAUSTED": {
			Code:           "EXHAUSTED",
			AmountOffCents: int64Ptr(1000),
			UsageLimit:     10,
			UsedCount:      10,
			Active:         true,
		},
		"DISABLED": {
			Code:           "DISABLED",
			AmountOffCents: int64Ptr(1000),
			Active:         false,
		},
	}}

	svc := NewService(repo).(*service)
	svc.now = func() time.Time { return now }

	tests := []struct {
		name         string
		req          ValidatePromoRequest
		wantValid    bool
		wantDiscount int64
	}{
		{
			name:         "flat discount above minimum",
			req:          ValidatePromoRequest{Code: "SAVE20", EventID: eventID.String(), OrderAmount: 10400},
			wantValid:    true,
			wantDiscount: 2000,
		},
		{
			name:      "flat discount below minimum",
			req:       ValidatePromoRequest{Code: "SAVE20", EventID: eventID.String(), OrderAmount: 4999},
			wantValid: false,
		},
		{
			name:         "code normalization",
			req:          ValidatePromoRequest{Code: "  save20 ", EventID: eventID.String(), OrderAmount: 10400},
			wantValid:    true,
			wantDiscount: 2000,
		},
		{
			name:         "percent discount floors to whole cents",
			req:          ValidatePromoRequest{Code: "EARLYBIRD", EventID: eventID.String(), OrderAmount: 10405},
			wantValid:    true,
			wantDiscount: 1040,
		},
		{
			name:         "event-scoped code on its event",
			req:          ValidatePromoRequest{Code: "FESTIVAL5", EventID: eventID.String(), OrderAmount: 5200},
			wantValid:    true,
			wantDiscount: 500,
		},
		{
			name:      "event-scoped code on another event",
			req:       ValidatePromoRequest{Code: "FESTIVAL5", EventID: otherEventID.String(), OrderAmount: 5200},
			wantValid: false,
		},
		{
			name:      "unknown code",
			req:       ValidatePromoRequest{Code: "NOPE", EventID: eventID.String(), OrderAmount: 5200},
			wantValid: false,
		},
		{
			name:      "expired window",
			req:       ValidatePromoRequest{Code: "EXPIRED", EventID: eventID.String(), OrderAmount: 5200},
			wantValid: false,
		},
		{
			name:      "usage limit reached",
			req:       ValidatePromoRequest{Code: "EXHAUSTED", EventID: eventID.String(), OrderAmount: 5200},
			wantValid: false,
		},
		{
			name:      "inactive code",
			req:       ValidatePromoRequest{Code: "DISABLED", EventID: eventID.String(), OrderAmount: 5200},
			wantValid: false,
		},
		{
			name:      "empty code",
			req:       ValidatePromoRequest{Code: "   ", EventID: eventID.String(), OrderAmount: 5200},
			wantValid: false,
		},
		{
			name:      "zero order amount",
			req:       ValidatePromoRequest{Code: "SAVE20", EventID: eventID.String(), OrderAmount: 0},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Validate(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if result.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (message: %s)", result.Valid, tt.wantValid, result.Message)
			}
			if result.DiscountAmount != tt.wantDiscount {
				t.Errorf("DiscountAmount = %d, want %d", result.DiscountAmount, tt.wantDiscount)
			}
		})
	}
}

func TestDiscountNeverExceedsOrderAmount(t *testing.T) {
	promo := &Promotion{Code: "BIG", AmountOffCents: int64Ptr(99999), Active: true}
	if got := promo.DiscountFor(5200); got != 5200 {
		t.Errorf("DiscountFor(5200) = %d, want capped at 5200", got)
	}
}
