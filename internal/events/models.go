package events

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name        string      `json:"name" gorm:"not null;size:255"`
	Description string      `json:"description" gorm:"type:text"`
	Venue       string      `json:"venue" gorm:"not null;size:255"`
	StartsAt    time.Time   `json:"starts_at" gorm:"not null"`
	EndsAt      time.Time   `json:"ends_at"`
	Currency    string      `json:"currency" gorm:"type:varchar(3);default:'USD'"`
	Status      EventStatus `json:"status" gorm:"type:varchar(20);default:'draft'"`
	BannerURL   string      `json:"banner_url" gorm:"size:500"`

	TicketTypes []TicketType `json:"-" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TicketType is a priced admission class for an event. Prices and fees are
// integer minor currency units (cents) to avoid floating-point drift.
type TicketType struct {
	ID            uuid.UUID        `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID       uuid.UUID        `json:"event_id" gorm:"type:uuid;index;not null"`
	Name          string           `json:"name" gorm:"not null;size:255"`
	PriceCents    int64            `json:"price_cents" gorm:"not null;check:price_cents >= 0"`
	FeeCents      int64            `json:"fee_cents" gorm:"not null;default:0;check:fee_cents >= 0"`
	QuantityTotal int              `json:"quantity_total" gorm:"not null;check:quantity_total >= 0"`
	QuantitySold  int              `json:"quantity_sold" gorm:"default:0;check:quantity_sold >= 0"`
	Status        TicketTypeStatus `json:"status" gorm:"type:varchar(20);default:'active'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Event) TableName() string {
	return "events"
}

func (TicketType) TableName() string {
	return "ticket_types"
}

func (t *TicketType) Available() int {
	return t.QuantityTotal - t.QuantitySold
}

func (t *TicketType) IsActive() bool {
	return t.Status == TicketTypeStatusActive
}
