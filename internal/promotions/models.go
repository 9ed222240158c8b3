package promotions

import (
	"time"

	"github.com/google/uuid"
)

// Promotion is a discount code. Exactly one of AmountOffCents / PercentOff is
// set. A nil EventID means the code applies to any event.
type Promotion struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Code           string     `json:"code" gorm:"unique;not null;size:64"`
	Description    string     `json:"description" gorm:"size:255"`
	EventID        *uuid.UUID `json:"event_id,omitempty" gorm:"type:uuid;index"`
	AmountOffCents *int64     `json:"amount_off_cents,omitempty" gorm:"check:amount_off_cents > 0"`
	PercentOff     *float64   `json:"percent_off,omitempty" gorm:"check:percent_off > 0 AND percent_off <= 100"`
	MinOrderCents  int64      `json:"min_order_cents" gorm:"default:0"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	EndsAt         *time.Time `json:"ends_at,omitempty"`
	UsageLimit     int        `json:"usage_limit" gorm:"default:0"` // 0 = unlimited
	UsedCount      int        `json:"used_count" gorm:"default:0"`
	Active         bool       `json:"active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Promotion) TableName() string {
	return "promotions"
}

// IsLive reports whether the promotion can currently be applied.
func (p *Promotion) IsLive(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && now.After(*p.EndsAt) {
		return false
	}
	if p.UsageLimit > 0 && p.UsedCount >= p.UsageLimit {
		return false
	}
	return true
}

// DiscountFor computes the discount in cents for a given order amount.
// Percent discounts floor to whole cents; the discount never exceeds the
// order amount.
func (p *Promotion) DiscountFor(orderAmountCents int64) int64 {
	var discount int64
	switch {
	case p.AmountOffCents != nil:
		discount = *p.AmountOffCents
	case p.PercentOff != nil:
		discount = int64(float64(orderAmountCents) * *p.PercentOff / 100)
	}
	if discount > orderAmountCents {
		discount = orderAmountCents
	}
	return discount
}
