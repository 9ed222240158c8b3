package database

import (
	"ticketflow/internal/events"
	"ticketflow/internal/orders"
	"ticketflow/internal/promotions"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&events.Event{},
		&events.TicketType{},
		&promotions.Promotion{},
		&orders.Order{},
		&orders.OrderItem{},
		&orders.Payment{},
	)
}
