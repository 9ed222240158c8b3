package orders

import (
	"time"

	"github.com/google/uuid"
)

// Order is a persisted purchase. Amounts are integer minor currency units,
// frozen at creation from the checkout session that produced the order.
type Order struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID  uuid.UUID `json:"user_id" gorm:"type:uuid;index;not null"`
	EventID uuid.UUID `json:"event_id" gorm:"type:uuid;index;not null"`
	Status  Status    `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	Currency      string `json:"currency" gorm:"type:varchar(3);not null"`
	SubtotalCents int64  `json:"subtotal_cents" gorm:"not null"`
	FeeCents      int64  `json:"fee_cents" gorm:"not null"`
	DiscountCents int64  `json:"discount_cents" gorm:"not null;default:0"`
	TotalCents    int64  `json:"total_cents" gorm:"not null"`
	PromoCode     string `json:"promo_code,omitempty" gorm:"size:64"`

	// IdempotencyKey dedupes order creation retries per user. Null when
	// the client did not supply one.
	IdempotencyKey *string `json:"-" gorm:"size:128;uniqueIndex"`

	PaidAt *time.Time `json:"paid_at,omitempty"`

	Items    []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;"`
	Payments []Payment   `json:"-" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// OrderItem is one ticket-type line of an order. Unit prices are snapshots;
// later catalog edits do not touch existing orders.
type OrderItem struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	OrderID        uuid.UUID `json:"order_id" gorm:"type:uuid;index;not null"`
	TicketTypeID   uuid.UUID `json:"ticket_type_id" gorm:"type:uuid;not null"`
	TicketTypeName string    `json:"ticket_type_name" gorm:"size:255"`
	Quantity       int       `json:"quantity" gorm:"not null;check:quantity > 0"`
	UnitPriceCents int64     `json:"unit_price_cents" gorm:"not null"`
	UnitFeeCents   int64     `json:"unit_fee_cents" gorm:"not null;default:0"`
}

// Payment is one provider payment attempt. An order can accumulate several
// when earlier attempts fail or are superseded; at most one succeeds.
type Payment struct {
	ID       uuid.UUID     `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	OrderID  uuid.UUID     `json:"order_id" gorm:"type:uuid;index;not null"`
	Provider string        `json:"provider" gorm:"size:32;not null"`
	IntentID string        `json:"intent_id" gorm:"size:255;not null;uniqueIndex:idx_payments_provider_intent"`
	Status   PaymentStatus `json:"status" gorm:"type:varchar(20);default:'initiated';index"`

	AmountCents   int64  `json:"amount_cents" gorm:"not null"`
	Currency      string `json:"currency" gorm:"type:varchar(3);not null"`
	FailureReason string `json:"failure_reason,omitempty" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (Payment) TableName() string {
	return "payments"
}

// IsTerminal reports whether the order has reached a final state.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusPaid || o.Status == StatusCancelled
}

// IsFree reports whether the order needs no payment.
func (o *Order) IsFree() bool {
	return o.TotalCents == 0
}
