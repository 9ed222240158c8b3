package orders

import "time"

type OrderResponse struct {
	ID            string              `json:"id"`
	EventID       string              `json:"event_id"`
	Status        Status              `json:"status"`
	Currency      string              `json:"currency"`
	SubtotalCents int64               `json:"subtotal_cents"`
	FeeCents      int64               `json:"fee_cents"`
	DiscountCents int64               `json:"discount_cents"`
	TotalCents    int64               `json:"total_cents"`
	PromoCode     string              `json:"promo_code,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	Payments      []PaymentResponse   `json:"payments,omitempty"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

type OrderItemResponse struct {
	TicketTypeID   string `json:"ticket_type_id"`
	TicketTypeName string `json:"ticket_type_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	UnitFeeCents   int64  `json:"unit_fee_cents"`
}

type PaymentResponse struct {
	Provider      string        `json:"provider"`
	IntentID      string        `json:"intent_id"`
	Status        PaymentStatus `json:"status"`
	FailureReason string        `json:"failure_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// OrderStatusSnapshot is the minimal view the polling and SSE paths serve.
type OrderStatusSnapshot struct {
	OrderID       string     `json:"order_id"`
	UserID        string     `json:"user_id"`
	Status        Status     `json:"status"`
	PaymentStatus string     `json:"payment_status,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

func toOrderResponse(o *Order) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			TicketTypeID:   item.TicketTypeID.String(),
			TicketTypeName: item.TicketTypeName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			UnitFeeCents:   item.UnitFeeCents,
		})
	}

	payments := make([]PaymentResponse, 0, len(o.Payments))
	for _, p := range o.Payments {
		payments = append(payments, PaymentResponse{
			Provider:      p.Provider,
			IntentID:      p.IntentID,
			Status:        p.Status,
			FailureReason: p.FailureReason,
			CreatedAt:     p.CreatedAt,
		})
	}

	return &OrderResponse{
		ID:            o.ID.String(),
		EventID:       o.EventID.String(),
		Status:        o.Status,
		Currency:      o.Currency,
		SubtotalCents: o.SubtotalCents,
		FeeCents:      o.FeeCents,
		DiscountCents: o.DiscountCents,
		TotalCents:    o.TotalCents,
		PromoCode:     o.PromoCode,
		Items:         items,
		Payments:      payments,
		PaidAt:        o.PaidAt,
		CreatedAt:     o.CreatedAt,
	}
}

func toStatusSnapshot(o *Order) *OrderStatusSnapshot {
	snapshot := &OrderStatusSnapshot{
		OrderID: o.ID.String(),
		UserID:  o.UserID.String(),
		Status:  o.Status,
		PaidAt:  o.PaidAt,
	}
	if p := latestPayment(o, ""); p != nil {
		snapshot.PaymentStatus = string(p.Status)
	}
	return snapshot
}
