package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ticketflow/internal/events"
	"ticketflow/internal/promotions"
	"ticketflow/internal/shared/config"
	"ticketflow/internal/shared/database"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting Ticketflow database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"payments",
		"order_items",
		"orders",
		"promotions",
		"ticket_types",
		"events",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return err
	}

	for _, table := range tables {
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll populates the catalog and promotions with test data.
func (s *Seeder) SeedAll() error {
	eventIDs, err := s.seedEvents()
	if err != nil {
		return err
	}
	return s.seedPromotions(eventIDs)
}

func (s *Seeder) seedEvents() ([]uuid.UUID, error) {
	now := time.Now()

	seedEvents := []events.Event{
		{
			ID:          uuid.New(),
			Name:        "Midnight Frequencies Festival",
			Description: "Two stages of electronic music running until sunrise.",
			Venue:       "Riverside Grounds",
			StartsAt:    now.AddDate(0, 1, 0),
			EndsAt:      now.AddDate(0, 1, 1),
			Currency:    "USD",
			Status:      events.EventStatusPublished,
			TicketTypes: []events.TicketType{
				{ID: uuid.New(), Name: "General Admission", PriceCents: 5000, FeeCents: 200, QuantityTotal: 500, Status: events.TicketTypeStatusActive},
				{ID: uuid.New(), Name: "VIP", PriceCents: 15000, FeeCents: 500, QuantityTotal: 50, Status: events.TicketTypeStatusActive},
			},
		},
		{
			ID:          uuid.New(),
			Name:        "Laugh Track Live",
			Description: "Stand-up showcase with a rotating lineup.",
			Venue:       "The Basement Theater",
			StartsAt:    now.AddDate(0, 0, 14),
			EndsAt:      now.AddDate(0, 0, 14),
			Currency:    "USD",
			Status:      events.EventStatusPublished,
			TicketTypes: []events.TicketType{
				{ID: uuid.New(), Name: "Standard", PriceCents: 2500, FeeCents: 150, QuantityTotal: 120, Status: events.TicketTypeStatusActive},
				{ID: uuid.New(), Name: "Front Row", PriceCents: 4000, FeeCents: 150, QuantityTotal: 12, Status: events.TicketTypeStatusActive},
			},
		},
		{
			ID:          uuid.New(),
			Name:        "Community Open Mic",
			Description: "Free monthly open mic night.",
			Venue:       "Public Library Hall",
			StartsAt:    now.AddDate(0, 0, 7),
			EndsAt:      now.AddDate(0, 0, 7),
			Currency:    "USD",
			Status:      events.EventStatusPublished,
			TicketTypes: []events.TicketType{
				{ID: uuid.New(), Name: "Free Entry", PriceCents: 0, FeeCents: 0, QuantityTotal: 80, Status: events.TicketTypeStatusActive},
			},
		},
	}

	ids := make([]uuid.UUID, 0, len(seedEvents))
	for i := range seedEvents {
		if err := s.db.PostgreSQL.Create(&seedEvents[i]).Error; err != nil {
			return nil, fmt.Errorf("failed to seed event %s: %w", seedEvents[i].Name, err)
		}
		ids = append(ids, seedEvents[i].ID)
		fmt.Printf("  seeded event: %s (%d ticket types)\n", seedEvents[i].Name, len(seedEvents[i].TicketTypes))
	}
	return ids, nil
}

func (s *Seeder) seedPromotions(eventIDs []uuid.UUID) error {
	amountOff := int64(2000)
	percentOff := 10.0
	fiveOff := int64(500)

	seedPromos := []promotions.Promotion{
		{
			ID:             uuid.New(),
			Code:           "SAVE20",
			Description:    "Flat 20.00 off any order",
			AmountOffCents: &amountOff,
			MinOrderCents:  5000,
			Active:         true,
		},
		{
			ID:          uuid.New(),
			Code:        "EARLYBIRD",
			Description: "10% off, limited to the first hundred orders",
			PercentOff:  &percentOff,
			UsageLimit:  100,
			Active:      true,
		},
		{
			ID:             uuid.New(),
			Code:           "FESTIVAL5",
			Description:    "5.00 off festival tickets only",
			EventID:        &eventIDs[0],
			AmountOffCents: &fiveOff,
			Active:         true,
		},
	}

	for i := range seedPromos {
		if err := s.db.PostgreSQL.Create(&seedPromos[i]).Error; err != nil {
			return fmt.Errorf("failed to seed promotion %s: %w", seedPromos[i].Code, err)
		}
		fmt.Printf("  seeded promotion: %s\n", seedPromos[i].Code)
	}
	return nil
}
