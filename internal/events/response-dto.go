package events

import "time"

type EventResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Venue     string      `json:"venue"`
	StartsAt  time.Time   `json:"starts_at"`
	EndsAt    time.Time   `json:"ends_at"`
	Currency  string      `json:"currency"`
	Status    EventStatus `json:"status"`
	BannerURL string      `json:"banner_url"`
}

type TicketTypeResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	FeeCents   int64  `json:"fee_cents"`
	Available  int    `json:"available"`
	Status     string `json:"status"`
}

func toEventResponse(e *Event) *EventResponse {
	return &EventResponse{
		ID:        e.ID.String(),
		Name:      e.Name,
		Venue:     e.Venue,
		StartsAt:  e.StartsAt,
		EndsAt:    e.EndsAt,
		Currency:  e.Currency,
		Status:    e.Status,
		BannerURL: e.BannerURL,
	}
}

func toTicketTypeResponse(t TicketType) TicketTypeResponse {
	return TicketTypeResponse{
		ID:         t.ID.String(),
		Name:       t.Name,
		PriceCents: t.PriceCents,
		FeeCents:   t.FeeCents,
		Available:  t.Available(),
		Status:     t.Status.String(),
	}
}
