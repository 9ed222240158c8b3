package events

import (
	"context"
	"fmt"

	"ticketflow/internal/shared/constants"
	"ticketflow/pkg/cache"

	"github.com/google/uuid"
)

// Service exposes the catalog read side consumed by the checkout flow.
type Service interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	GetTicketTypes(ctx context.Context, eventID uuid.UUID) ([]TicketTypeResponse, error)

	// Catalog returns active ticket types keyed by id, for amount
	// computation and hold acquisition.
	Catalog(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]TicketType, error)

	// InvalidateTicketTypes drops cached catalog entries after a sale
	// moves the sold counters.
	InvalidateTicketTypes(ctx context.Context, eventID uuid.UUID) error
}

type service struct {
	repo  Repository
	cache cache.Service
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{repo: repo, cache: cacheService}
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	var resp EventResponse

	if s.cache != nil {
		err := s.cache.GetOrSet(ctx, constants.EventDetailKey(id.String()), constants.TTL_EVENT_DETAIL,
			func() (interface{}, error) {
				event, err := s.repo.GetEventByID(ctx, id)
				if err != nil {
					return nil, err
				}
				return toEventResponse(event), nil
			}, &resp)
		if err != nil {
			return nil, err
		}
		return &resp, nil
	}

	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEventResponse(event), nil
}

func (s *service) GetTicketTypes(ctx context.Context, eventID uuid.UUID) ([]TicketTypeResponse, error) {
	var resp []TicketTypeResponse

	fetch := func() (interface{}, error) {
		ticketTypes, err := s.repo.GetTicketTypesByEventID(ctx, eventID)
		if err != nil {
			return nil, err
		}
		out := make([]TicketTypeResponse, 0, len(ticketTypes))
		for _, tt := range ticketTypes {
			out = append(out, toTicketTypeResponse(tt))
		}
		return out, nil
	}

	if s.cache != nil {
		err := s.cache.GetOrSet(ctx, constants.EventTicketTypesKey(eventID.String()), constants.TTL_TICKET_TYPES, fetch, &resp)
		if err != nil {
			return nil, err
		}
		return resp, nil
	}

	raw, err := fetch()
	if err != nil {
		return nil, err
	}
	return raw.([]TicketTypeResponse), nil
}

func (s *service) Catalog(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]TicketType, error) {
	ticketTypes, err := s.repo.GetTicketTypesByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	catalog := make(map[uuid.UUID]TicketType, len(ticketTypes))
	for _, tt := range ticketTypes {
		catalog[tt.ID] = tt
	}
	return catalog, nil
}

func (s *service) InvalidateTicketTypes(ctx context.Context, eventID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, constants.EventTicketTypesKey(eventID.String()))
}
