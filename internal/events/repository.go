package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("event not found")

type Repository interface {
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetTicketTypesByEventID(ctx context.Context, eventID uuid.UUID) ([]TicketType, error)
	GetTicketTypesByIDs(ctx context.Context, ids []uuid.UUID) ([]TicketType, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (r *repository) GetTicketTypesByEventID(ctx context.Context, eventID uuid.UUID) ([]TicketType, error) {
	var ticketTypes []TicketType
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Where("status = ?", TicketTypeStatusActive).
		Order("price_cents ASC").
		Find(&ticketTypes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket types: %w", err)
	}
	return ticketTypes, nil
}

func (r *repository) GetTicketTypesByIDs(ctx context.Context, ids []uuid.UUID) ([]TicketType, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ticketTypes []TicketType
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ticketTypes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket types by ids: %w", err)
	}
	return ticketTypes, nil
}
