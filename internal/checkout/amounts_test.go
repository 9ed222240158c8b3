package checkout

import (
	"testing"

	"github.com/google/uuid"

	"ticketflow/internal/events"
)

func testCatalog() (map[uuid.UUID]events.TicketType, uuid.UUID, uuid.UUID) {
	gaID := uuid.New()
	vipID := uuid.New()
	catalog := map[uuid.UUID]events.TicketType{
		gaID: {
			ID:            gaID,
			Name:          "General Admission",
			PriceCents:    5000,
			FeeCents:      200,
			QuantityTotal: 100,
			Status:        events.TicketTypeStatusActive,
		},
		vipID: {
			ID:            vipID,
			Name:          "VIP",
			PriceCents:    15000,
			FeeCents:      500,
			QuantityTotal: 20,
			Status:        events.TicketTypeStatusActive,
		},
	}
	return catalog, gaID, vipID
}

func TestComputeAmounts(t *testing.T) {
	catalog, gaID, vipID := testCatalog()
	unknownID := uuid.New()

	tests := []struct {
		name          string
		selections    map[uuid.UUID]int
		discountCents int64
		want          Amounts
	}{
		{
			name:       "two general admission tickets",
			selections: map[uuid.UUID]int{gaID: 2},
			want: Amounts{
				SubtotalCents:            10000,
				FeeCents:                 400,
				TotalBeforeDiscountCents: 10400,
				TotalCents:               10400,
			},
		},
		{
			name:          "flat discount applied",
			selections:    map[uuid.UUID]int{gaID: 2},
			discountCents: 2000,
			want: Amounts{
				SubtotalCents:            10000,
				FeeCents:                 400,
				DiscountCents:            2000,
				TotalBeforeDiscountCents: 10400,
				TotalCents:               8400,
			},
		},
		{
			name:       "mixed ticket types",
			selections: map[uuid.UUID]int{gaID: 1, vipID: 2},
			want: Amounts{
				SubtotalCents:            35000,
				FeeCents:                 1200,
				TotalBeforeDiscountCents: 36200,
				TotalCents:               36200,
			},
		},
		{
			name:       "unknown ticket type contributes zero",
			selections: map[uuid.UUID]int{gaID: 1, unknownID: 5},
			want: Amounts{
				SubtotalCents:            5000,
				FeeCents:                 200,
				TotalBeforeDiscountCents: 5200,
				TotalCents:               5200,
			},
		},
		{
			name:          "discount larger than order clamps to zero",
			selections:    map[uuid.UUID]int{gaID: 1},
			discountCents: 99999,
			want: Amounts{
				SubtotalCents:            5000,
				FeeCents:                 200,
				DiscountCents:            99999,
				TotalBeforeDiscountCents: 5200,
				TotalCents:               0,
			},
		},
		{
			name:       "zero and negative quantities skipped",
			selections: map[uuid.UUID]int{gaID: 0, vipID: -3},
			want:       Amounts{},
		},
		{
			name:       "empty selections",
			selections: map[uuid.UUID]int{},
			want:       Amounts{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAmounts(tt.selections, catalog, tt.discountCents)
			if got != tt.want {
				t.Errorf("ComputeAmounts() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
