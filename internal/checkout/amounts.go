package checkout

import (
	"github.com/google/uuid"

	"ticketflow/internal/events"
)

// ComputeAmounts prices a selection against the event's ticket-type catalog.
// Selection entries whose ticket type is not in the catalog are skipped.
// The discount is capped so the total never goes below zero.
func ComputeAmounts(selections map[uuid.UUID]int, catalog map[uuid.UUID]events.TicketType, discountCents int64) Amounts {
	var subtotal, fees int64
	for ticketTypeID, qty := range selections {
		if qty <= 0 {
			continue
		}
		tt, ok := catalog[ticketTypeID]
		if !ok {
			continue
		}
		subtotal += tt.PriceCents * int64(qty)
		fees += tt.FeeCents * int64(qty)
	}

	beforeDiscount := subtotal + fees
	total := beforeDiscount - discountCents
	if total < 0 {
		total = 0
	}

	return Amounts{
		SubtotalCents:            subtotal,
		FeeCents:                 fees,
		DiscountCents:            discountCents,
		TotalBeforeDiscountCents: beforeDiscount,
		TotalCents:               total,
	}
}
