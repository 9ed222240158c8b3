package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ticketflow/internal/events"
	"ticketflow/internal/promotions"
	"ticketflow/pkg/logger"
)

var (
	// ErrEmptySelection is returned when a request carries no purchasable
	// line items after dropping zero quantities and unknown ticket types.
	ErrEmptySelection = errors.New("select at least one ticket")

	// ErrNotSessionOwner is returned when a session is accessed by a user
	// other than the one who started it.
	ErrNotSessionOwner = errors.New("session belongs to another user")
)

// HoldManager reserves and releases ticket quantities atomically.
type HoldManager interface {
	AtomicAcquireHold(ctx context.Context, sessionID uuid.UUID, lines []HoldLine, ttl time.Duration) error
	AtomicReleaseHold(ctx context.Context, sessionID uuid.UUID) (int, error)
}

// Service owns the checkout session lifecycle: selections, holds, promo
// application, and handoff to order creation.
type Service interface {
	StartSession(ctx context.Context, userID, eventID uuid.UUID, selections map[uuid.UUID]int) (*SessionView, error)
	UpdateSelections(ctx context.Context, sessionID, userID uuid.UUID, selections map[uuid.UUID]int) (*SessionView, error)
	ApplyPromo(ctx context.Context, sessionID, userID uuid.UUID, code string) (*SessionView, error)
	RemovePromo(ctx context.Context, sessionID, userID uuid.UUID) (*SessionView, error)
	GetSession(ctx context.Context, sessionID, userID uuid.UUID) (*SessionView, error)
	Cancel(ctx context.Context, sessionID, userID uuid.UUID) error

	// SessionForOrder hands the raw session to order creation, enforcing
	// ownership and expiry.
	SessionForOrder(ctx context.Context, sessionID, userID uuid.UUID) (*Session, error)

	// Finalize destroys a session and its hold after its order is
	// persisted. The sold counters have taken over capacity accounting.
	Finalize(ctx context.Context, sessionID uuid.UUID) error
}

type service struct {
	store    SessionStore
	holds    HoldManager
	events   events.Service
	promos   promotions.Service
	holdTTL  time.Duration
	currency string
	log      *logger.Logger
	now      func() time.Time
}

func NewService(store SessionStore, holds HoldManager, eventsService events.Service, promosService promotions.Service, holdTTL time.Duration, currency string, log *logger.Logger) Service {
	return &service{
		store:    store,
		holds:    holds,
		events:   eventsService,
		promos:   promosService,
		holdTTL:  holdTTL,
		currency: currency,
		log:      log,
		now:      time.Now,
	}
}

func (s *service) StartSession(ctx context.Context, userID, eventID uuid.UUID, selections map[uuid.UUID]int) (*SessionView, error) {
	catalog, err := s.events.Catalog(ctx, eventID)
	if err != nil {
		return nil, err
	}

	clean, lines := normalizeSelections(selections, catalog)
	if len(clean) == 0 {
		return nil, ErrEmptySelection
	}

	now := s.now()
	session := &Session{
		ID:         uuid.New(),
		UserID:     userID,
		EventID:    eventID,
		Selections: clean,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.holdTTL),
	}

	if err := s.holds.AtomicAcquireHold(ctx, session.ID, lines, s.holdTTL); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, session); err != nil {
		// Best effort: do not leave an orphan hold behind a failed save.
		s.holds.AtomicReleaseHold(ctx, session.ID)
		return nil, err
	}

	s.log.LogCheckoutSessionStarted(ctx, session.ID.String(), eventID.String(), userID.String(), s.holdTTL)
	return s.view(session, catalog), nil
}

// UpdateSelections replaces the session's cart. The hold is re-acquired for
// the new quantities within the original reservation window, and any applied
// promo is cleared because the amounts it was validated against changed.
// Updating to an empty cart cancels the session and returns a nil view.
func (s *service) UpdateSelections(ctx context.Context, sessionID, userID uuid.UUID, selections map[uuid.UUID]int) (*SessionView, error) {
	session, err := s.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.events.Catalog(ctx, session.EventID)
	if err != nil {
		return nil, err
	}

	clean, lines := normalizeSelections(selections, catalog)
	if len(clean) == 0 {
		if err := s.Cancel(ctx, sessionID, userID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	remaining := session.RemainingTTL(s.now())
	if err := s.holds.AtomicAcquireHold(ctx, session.ID, lines, remaining); err != nil {
		return nil, err
	}

	session.Selections = clean
	session.PromoCode = ""
	session.DiscountCents = 0

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.view(session, catalog), nil
}

func (s *service) ApplyPromo(ctx context.Context, sessionID, userID uuid.UUID, code string) (*SessionView, error) {
	session, err := s.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.events.Catalog(ctx, session.EventID)
	if err != nil {
		return nil, err
	}

	amounts := ComputeAmounts(session.Selections, catalog, 0)
	if amounts.TotalBeforeDiscountCents <= 0 {
		return nil, ErrEmptySelection
	}

	ticketTypeIDs := make([]string, 0, len(session.Selections))
	for id := range session.Selections {
		ticketTypeIDs = append(ticketTypeIDs, id.String())
	}

	result, err := s.promos.Validate(ctx, promotions.ValidatePromoRequest{
		Code:          code,
		EventID:       session.EventID.String(),
		TicketTypeIDs: ticketTypeIDs,
		OrderAmount:   amounts.TotalBeforeDiscountCents,
	})
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid promo code: %s", result.Message)
	}

	session.PromoCode = result.Code
	session.DiscountCents = result.DiscountAmount

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.view(session, catalog), nil
}

func (s *service) RemovePromo(ctx context.Context, sessionID, userID uuid.UUID) (*SessionView, error) {
	session, err := s.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	session.PromoCode = ""
	session.DiscountCents = 0

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	catalog, err := s.events.Catalog(ctx, session.EventID)
	if err != nil {
		return nil, err
	}
	return s.view(session, catalog), nil
}

func (s *service) GetSession(ctx context.Context, sessionID, userID uuid.UUID) (*SessionView, error) {
	session, err := s.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.events.Catalog(ctx, session.EventID)
	if err != nil {
		return nil, err
	}
	return s.view(session, catalog), nil
}

func (s *service) Cancel(ctx context.Context, sessionID, userID uuid.UUID) error {
	session, err := s.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return err
	}

	if _, err := s.holds.AtomicReleaseHold(ctx, session.ID); err != nil {
		s.log.Warn("failed to release hold on cancel", "session_id", session.ID.String(), "error", err)
	}
	return s.store.Delete(ctx, session.ID)
}

func (s *service) SessionForOrder(ctx context.Context, sessionID, userID uuid.UUID) (*Session, error) {
	return s.ownedSession(ctx, sessionID, userID)
}

func (s *service) Finalize(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := s.holds.AtomicReleaseHold(ctx, sessionID); err != nil {
		s.log.Warn("failed to release hold on finalize", "session_id", sessionID.String(), "error", err)
	}
	return s.store.Delete(ctx, sessionID)
}

func (s *service) ownedSession(ctx context.Context, sessionID, userID uuid.UUID) (*Session, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	if session.IsExpired(s.now()) {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *service) view(session *Session, catalog map[uuid.UUID]events.TicketType) *SessionView {
	amounts := ComputeAmounts(session.Selections, catalog, session.DiscountCents)
	return toSessionView(session, amounts, s.currency, s.now())
}

// normalizeSelections drops zero and negative quantities and entries whose
// ticket type is absent from the catalog, and builds the matching hold lines.
func normalizeSelections(selections map[uuid.UUID]int, catalog map[uuid.UUID]events.TicketType) (map[uuid.UUID]int, []HoldLine) {
	clean := make(map[uuid.UUID]int, len(selections))
	lines := make([]HoldLine, 0, len(selections))
	for id, qty := range selections {
		if qty <= 0 {
			continue
		}
		tt, ok := catalog[id]
		if !ok || !tt.IsActive() {
			continue
		}
		clean[id] = qty
		lines = append(lines, HoldLine{TicketTypeID: id, Quantity: qty, Available: tt.Available()})
	}
	return clean, lines
}
