package checkout

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side checkout state: the selected quantities, any
// applied promo, and the reservation window. It lives in Redis for the
// duration of the hold and is destroyed when it expires, is cancelled, or is
// converted into an order.
type Session struct {
	ID            uuid.UUID         `json:"id"`
	UserID        uuid.UUID         `json:"user_id"`
	EventID       uuid.UUID         `json:"event_id"`
	Selections    map[uuid.UUID]int `json:"selections"`
	PromoCode     string            `json:"promo_code,omitempty"`
	DiscountCents int64             `json:"discount_cents"`
	CreatedAt     time.Time         `json:"created_at"`

	// ExpiresAt is fixed when the session first acquires its hold and is
	// never extended by later selection changes.
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the reservation window has passed.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// RemainingTTL returns how much of the reservation window is left.
func (s *Session) RemainingTTL(now time.Time) time.Duration {
	if s.IsExpired(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// Amounts is the monetary breakdown of a cart. All values are integer minor
// currency units.
type Amounts struct {
	SubtotalCents            int64 `json:"subtotal_cents"`
	FeeCents                 int64 `json:"fee_cents"`
	DiscountCents            int64 `json:"discount_cents"`
	TotalBeforeDiscountCents int64 `json:"total_before_discount_cents"`
	TotalCents               int64 `json:"total_cents"`
}
