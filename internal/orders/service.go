package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ticketflow/internal/checkout"
	"ticketflow/internal/events"
	"ticketflow/internal/notifications"
	"ticketflow/internal/payments"
	"ticketflow/internal/shared/constants"
	"ticketflow/pkg/cache"
	"ticketflow/pkg/logger"
)

var (
	// ErrNotOrderOwner is returned when an order is accessed by a user
	// other than its buyer.
	ErrNotOrderOwner = errors.New("order belongs to another user")

	// ErrEmptyOrder is returned when a session resolves to no purchasable
	// line items at order creation.
	ErrEmptyOrder = errors.New("select at least one ticket")

	// ErrOrderNotPayable is returned when payment is initiated against an
	// order that is already terminal or needs no payment.
	ErrOrderNotPayable = errors.New("order does not accept payment")

	// ErrConfirmationPending is returned by Confirm when the provider
	// still reports the payment in flight.
	ErrConfirmationPending = errors.New("payment confirmation pending")
)

// ConfirmResult is the answer to a confirmation request, whatever its
// source.
type ConfirmResult struct {
	Outcome ConfirmOutcome
	Order   *Order
}

type Service interface {
	// CreateOrder converts a checkout session into a persisted order.
	// Passing the same idempotency key replays the original order
	// instead of creating a second one.
	CreateOrder(ctx context.Context, userID uuid.UUID, userEmail string, req CreateOrderRequest) (*Order, error)

	GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]Order, int64, error)

	// GetOrderStatus returns a short-lived cached status snapshot, cheap
	// enough for tight polling and the SSE stream.
	GetOrderStatus(ctx context.Context, orderID, userID uuid.UUID) (*OrderStatusSnapshot, error)

	// InitiatePayment opens a provider payment for a pending order. A
	// repeat initiation supersedes earlier still-initiated attempts.
	InitiatePayment(ctx context.Context, orderID, userID uuid.UUID, userEmail, providerName string) (*payments.IntentRef, error)

	// Confirm is the client-driven confirmation path: it verifies the
	// payment with the provider and applies the result.
	Confirm(ctx context.Context, orderID, userID uuid.UUID, intentID string) (*ConfirmResult, error)

	// ApplyProviderEvent applies an authenticated webhook event.
	ApplyProviderEvent(ctx context.Context, provider string, event *payments.WebhookEvent, source string) error

	// VerifyAndApply re-verifies an initiated payment with its provider
	// and applies the answer. Used by the reconciliation poller.
	VerifyAndApply(ctx context.Context, payment *Payment, source string) (payments.Status, error)

	// InitiatedPaymentsBefore lists stale in-flight payments for the
	// reconciliation poller.
	InitiatedPaymentsBefore(ctx context.Context, cutoff time.Time, limit int) ([]Payment, error)
}

type service struct {
	repo      Repository
	checkout  checkout.Service
	events    events.Service
	registry  *payments.Registry
	publisher notifications.Publisher
	cache     cache.Service
	currency  string
	log       *logger.Logger
}

func NewService(repo Repository, checkoutService checkout.Service, eventsService events.Service, registry *payments.Registry, publisher notifications.Publisher, cacheService cache.Service, currency string, log *logger.Logger) Service {
	return &service{
		repo:      repo,
		checkout:  checkoutService,
		events:    eventsService,
		registry:  registry,
		publisher: publisher,
		cache:     cacheService,
		currency:  currency,
		log:       log,
	}
}

func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, userEmail string, req CreateOrderRequest) (*Order, error) {
	if req.IdempotencyKey != "" {
		existing, err := s.repo.GetOrderByIdempotencyKey(ctx, userID, req.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}

	session, err := s.checkout.SessionForOrder(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.events.Catalog(ctx, session.EventID)
	if err != nil {
		return nil, err
	}

	items := buildItems(session.Selections, catalog)
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	amounts := checkout.ComputeAmounts(session.Selections, catalog, session.DiscountCents)
	currency := s.orderCurrency(ctx, session.EventID)

	order := &Order{
		ID:            uuid.New(),
		UserID:        userID,
		EventID:       session.EventID,
		Status:        StatusPending,
		Currency:      currency,
		SubtotalCents: amounts.SubtotalCents,
		FeeCents:      amounts.FeeCents,
		DiscountCents: amounts.DiscountCents,
		TotalCents:    amounts.TotalCents,
		PromoCode:     session.PromoCode,
		Items:         items,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		order.IdempotencyKey = &key
	}

	// Free orders bypass the payment stage entirely.
	if order.IsFree() {
		now := time.Now()
		order.Status = StatusPaid
		order.PaidAt = &now
	}

	if err := s.repo.CreateOrderWithInventoryCheck(ctx, order); err != nil {
		// A concurrent retry with the same key beat this one to the
		// unique index; replay its order instead of failing.
		if errors.Is(err, ErrDuplicateIdempotencyKey) && req.IdempotencyKey != "" {
			return s.repo.GetOrderByIdempotencyKey(ctx, userID, req.IdempotencyKey)
		}
		return nil, err
	}

	// The sold counters now account for this inventory; the hold and
	// session are done.
	if err := s.checkout.Finalize(ctx, session.ID); err != nil {
		s.log.Error("Failed to finalize checkout session", "error", err, "session_id", session.ID.String())
	}
	if err := s.events.InvalidateTicketTypes(ctx, session.EventID); err != nil {
		s.log.Error("Failed to invalidate ticket type cache", "error", err, "event_id", session.EventID.String())
	}

	s.log.LogOrderCreated(ctx, order.ID.String(), order.EventID.String(), userID.String(), order.TotalCents)
	s.publisher.OrderCreated(ctx, order.ID, order.EventID, userID, userEmail, order.TotalCents, order.Currency)

	if order.Status == StatusPaid {
		s.log.LogOrderPaid(ctx, order.ID.String(), "", "free_order")
		s.publisher.OrderPaid(ctx, order.ID, order.EventID, userID, userEmail, order.TotalCents, order.Currency, "")
	}

	return order, nil
}

func (s *service) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]Order, int64, error) {
	return s.repo.GetUserOrders(ctx, userID, page, limit)
}

func (s *service) GetOrderStatus(ctx context.Context, orderID, userID uuid.UUID) (*OrderStatusSnapshot, error) {
	fetch := func() (interface{}, error) {
		order, err := s.GetOrder(ctx, orderID, userID)
		if err != nil {
			return nil, err
		}
		return toStatusSnapshot(order), nil
	}

	if s.cache != nil {
		var snapshot OrderStatusSnapshot
		err := s.cache.GetOrSet(ctx, constants.OrderStatusKey(orderID.String()), constants.TTL_ORDER_STATUS, fetch, &snapshot)
		if err != nil {
			return nil, err
		}
		if snapshot.UserID != userID.String() {
			return nil, ErrNotOrderOwner
		}
		return &snapshot, nil
	}

	raw, err := fetch()
	if err != nil {
		return nil, err
	}
	return raw.(*OrderStatusSnapshot), nil
}

func (s *service) InitiatePayment(ctx context.Context, orderID, userID uuid.UUID, userEmail, providerName string) (*payments.IntentRef, error) {
	order, err := s.GetOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() || order.IsFree() {
		return nil, ErrOrderNotPayable
	}

	provider, err := s.registry.Select(providerName)
	if err != nil {
		return nil, err
	}

	ref, err := provider.Initiate(ctx, payments.InitiateParams{
		OrderID:       order.ID,
		AmountCents:   order.TotalCents,
		Currency:      order.Currency,
		CustomerEmail: userEmail,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.SupersedeInitiatedPayments(ctx, order.ID); err != nil {
		return nil, err
	}

	payment := &Payment{
		OrderID:     order.ID,
		Provider:    provider.Name(),
		IntentID:    ref.IntentID,
		Status:      PaymentStatusInitiated,
		AmountCents: order.TotalCents,
		Currency:    order.Currency,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	s.invalidateStatus(ctx, order.ID)
	s.log.LogPaymentInitiated(ctx, order.ID.String(), provider.Name(), ref.Reference)
	return ref, nil
}

func (s *service) Confirm(ctx context.Context, orderID, userID uuid.UUID, intentID string) (*ConfirmResult, error) {
	order, err := s.GetOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.Status == StatusPaid {
		return &ConfirmResult{Outcome: OutcomeAlreadyPaid, Order: order}, nil
	}

	payment := latestPayment(order, intentID)
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	status, err := s.VerifyAndApply(ctx, payment, "client_confirm")
	if err != nil {
		return nil, err
	}

	switch status {
	case payments.StatusSucceeded:
		updated, err := s.repo.GetOrderByID(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		return &ConfirmResult{Outcome: OutcomeNewlyPaid, Order: updated}, nil
	case payments.StatusFailed:
		updated, err := s.repo.GetOrderByID(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		return &ConfirmResult{Outcome: OutcomeRejected, Order: updated}, nil
	default:
		return nil, ErrConfirmationPending
	}
}

func (s *service) ApplyProviderEvent(ctx context.Context, provider string, event *payments.WebhookEvent, source string) error {
	switch event.Status {
	case payments.StatusSucceeded:
		_, err := s.applySuccess(ctx, provider, event.IntentID, source)
		return err
	case payments.StatusFailed:
		return s.applyFailure(ctx, provider, event.IntentID, event.Reason)
	default:
		return nil
	}
}

func (s *service) VerifyAndApply(ctx context.Context, payment *Payment, source string) (payments.Status, error) {
	provider, err := s.registry.Get(payment.Provider)
	if err != nil {
		return "", err
	}

	result, err := provider.Verify(ctx, payment.IntentID)
	if err != nil {
		return "", err
	}

	switch result.Status {
	case payments.StatusSucceeded:
		if _, err := s.applySuccess(ctx, payment.Provider, payment.IntentID, source); err != nil {
			return "", err
		}
	case payments.StatusFailed:
		if err := s.applyFailure(ctx, payment.Provider, payment.IntentID, result.FailureReason); err != nil {
			return "", err
		}
	}
	return result.Status, nil
}

func (s *service) InitiatedPaymentsBefore(ctx context.Context, cutoff time.Time, limit int) ([]Payment, error) {
	return s.repo.ListInitiatedPaymentsBefore(ctx, cutoff, limit)
}

// applySuccess marks the order paid exactly once. Redundant confirmations
// from other sources land on already_paid and are not errors.
func (s *service) applySuccess(ctx context.Context, provider, intentID, source string) (ConfirmOutcome, error) {
	outcome, order, err := s.repo.MarkPaidByIntent(ctx, provider, intentID)
	if err != nil {
		return OutcomeRejected, err
	}

	if outcome == OutcomeNewlyPaid {
		s.invalidateStatus(ctx, order.ID)
		s.log.LogOrderPaid(ctx, order.ID.String(), intentID, source)
		s.publisher.OrderPaid(ctx, order.ID, order.EventID, order.UserID, "", order.TotalCents, order.Currency, provider)
	}
	return outcome, nil
}

func (s *service) applyFailure(ctx context.Context, provider, intentID, reason string) error {
	order, err := s.repo.MarkPaymentFailed(ctx, provider, intentID, reason)
	if err != nil {
		return err
	}

	s.invalidateStatus(ctx, order.ID)
	s.log.LogPaymentFailed(ctx, order.ID.String(), intentID, reason)
	s.publisher.PaymentFailed(ctx, order.ID, order.EventID, order.UserID, "", provider, reason)
	return nil
}

func (s *service) invalidateStatus(ctx context.Context, orderID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.OrderStatusKey(orderID.String())); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Error("Failed to invalidate order status cache", "error", err, "order_id", orderID.String())
	}
}

func (s *service) orderCurrency(ctx context.Context, eventID uuid.UUID) string {
	event, err := s.events.GetEvent(ctx, eventID)
	if err == nil && event.Currency != "" {
		return event.Currency
	}
	return s.currency
}

// buildItems snapshots the selected ticket types into order lines. Unknown
// ticket type ids are skipped.
func buildItems(selections map[uuid.UUID]int, catalog map[uuid.UUID]events.TicketType) []OrderItem {
	items := make([]OrderItem, 0, len(selections))
	for ticketTypeID, qty := range selections {
		if qty <= 0 {
			continue
		}
		tt, ok := catalog[ticketTypeID]
		if !ok {
			continue
		}
		items = append(items, OrderItem{
			TicketTypeID:   ticketTypeID,
			TicketTypeName: tt.Name,
			Quantity:       qty,
			UnitPriceCents: tt.PriceCents,
			UnitFeeCents:   tt.FeeCents,
		})
	}
	return items
}

// latestPayment picks the payment a confirm request targets: the one with a
// matching intent id, or the newest initiated attempt when none is named.
func latestPayment(order *Order, intentID string) *Payment {
	if intentID != "" {
		for i := range order.Payments {
			if order.Payments[i].IntentID == intentID {
				return &order.Payments[i]
			}
		}
		return nil
	}

	var newest *Payment
	for i := range order.Payments {
		p := &order.Payments[i]
		if p.Status != PaymentStatusInitiated {
			continue
		}
		if newest == nil || p.CreatedAt.After(newest.CreatedAt) {
			newest = p
		}
	}
	return newest
}
