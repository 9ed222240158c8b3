package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"ticketflow/internal/checkout"
	"ticketflow/internal/events"
	"ticketflow/internal/payments"
	"ticketflow/pkg/logger"
)

type fakeRepository struct {
	orders   map[uuid.UUID]*Order
	payments map[string]*Payment // keyed provider:intentID

	createCalls    int
	supersedeCalls int
	createErr      error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		orders:   make(map[uuid.UUID]*Order),
		payments: make(map[string]*Payment),
	}
}

func paymentKey(provider, intentID string) string { return provider + ":" + intentID }

func (f *fakeRepository) CreateOrderWithInventoryCheck(ctx context.Context, order *Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.createCalls++
	f.orders[order.ID] = order
	return nil
}

func (f *fakeRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeRepository) GetOrderByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*Order, error) {
	for _, order := range f.orders {
		if order.UserID == userID && order.IdempotencyKey != nil && *order.IdempotencyKey == key {
			return order, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (f *fakeRepository) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]Order, int64, error) {
	var out []Order
	for _, order := range f.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) CreatePayment(ctx context.Context, payment *Payment) error {
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()
	f.payments[paymentKey(payment.Provider, payment.IntentID)] = payment
	if order, ok := f.orders[payment.OrderID]; ok {
		order.Payments = append(order.Payments, *payment)
	}
	return nil
}

func (f *fakeRepository) GetPaymentByIntentID(ctx context.Context, provider, intentID string) (*Payment, error) {
	payment, ok := f.payments[paymentKey(provider, intentID)]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (f *fakeRepository) SupersedeInitiatedPayments(ctx context.Context, orderID uuid.UUID) error {
	f.supersedeCalls++
	for _, payment := range f.payments {
		if payment.OrderID == orderID && payment.Status == PaymentStatusInitiated {
			payment.Status = PaymentStatusFailed
			payment.FailureReason = "superseded by a newer payment attempt"
		}
	}
	return nil
}

func (f *fakeRepository) ListInitiatedPaymentsBefore(ctx context.Context, cutoff time.Time, limit int) ([]Payment, error) {
	var out []Payment
	for _, payment := range f.payments {
		if payment.Status == PaymentStatusInitiated && payment.CreatedAt.Before(cutoff) {
			out = append(out, *payment)
		}
	}
	return out, nil
}

func (f *fakeRepository) MarkPaidByIntent(ctx context.Context, provider, intentID string) (ConfirmOutcome, *Order, error) {
	payment, ok := f.payments[paymentKey(provider, intentID)]
	if !ok {
		return OutcomeRejected, nil, ErrPaymentNotFound
	}
	order, ok := f.orders[payment.OrderID]
	if !ok {
		return OutcomeRejected, nil, ErrOrderNotFound
	}

	switch order.Status {
	case StatusPaid:
		return OutcomeAlreadyPaid, order, nil
	case StatusCancelled:
		return OutcomeRejected, order, nil
	}

	payment.Status = PaymentStatusSucceeded
	now := time.Now()
	order.Status = StatusPaid
	order.PaidAt = &now
	return OutcomeNewlyPaid, order, nil
}

func (f *fakeRepository) MarkPaymentFailed(ctx context.Context, provider, intentID, reason string) (*Order, error) {
	payment, ok := f.payments[paymentKey(provider, intentID)]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	if payment.Status == PaymentStatusInitiated {
		payment.Status = PaymentStatusFailed
		payment.FailureReason = reason
	}
	order, ok := f.orders[payment.OrderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// raceLosingRepository models losing a concurrent idempotent-create race:
// the key lookup misses until the insert has hit the unique index.
type raceLosingRepository struct {
	*fakeRepository
	hideUntilCreate bool
}

func (r *raceLosingRepository) GetOrderByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*Order, error) {
	if r.hideUntilCreate {
		return nil, ErrOrderNotFound
	}
	return r.fakeRepository.GetOrderByIdempotencyKey(ctx, userID, key)
}

func (r *raceLosingRepository) CreateOrderWithInventoryCheck(ctx context.Context, order *Order) error {
	r.hideUntilCreate = false
	return r.fakeRepository.CreateOrderWithInventoryCheck(ctx, order)
}

type fakeCheckoutService struct {
	session   *checkout.Session
	finalized []uuid.UUID
}

func (f *fakeCheckoutService) StartSession(ctx context.Context, userID, eventID uuid.UUID, selections map[uuid.UUID]int) (*checkout.SessionView, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCheckoutService) UpdateSelections(ctx context.Context, sessionID, userID uuid.UUID, selections map[uuid.UUID]int) (*checkout.SessionView, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCheckoutService) ApplyPromo(ctx context.Context, sessionID, userID uuid.UUID, code string) (*checkout.SessionView, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCheckoutService) RemovePromo(ctx context.Context, sessionID, userID uuid.UUID) (*checkout.SessionView, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCheckoutService) GetSession(ctx context.Context, sessionID, userID uuid.UUID) (*checkout.SessionView, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCheckoutService) Cancel(ctx context.Context, sessionID, userID uuid.UUID) error {
	return errors.New("not implemented")
}

func (f *fakeCheckoutService) SessionForOrder(ctx context.Context, sessionID, userID uuid.UUID) (*checkout.Session, error) {
	if f.session == nil || f.session.ID != sessionID {
		return nil, checkout.ErrSessionNotFound
	}
	if f.session.UserID != userID {
		return nil, checkout.ErrNotSessionOwner
	}
	return f.session, nil
}

func (f *fakeCheckoutService) Finalize(ctx context.Context, sessionID uuid.UUID) error {
	f.finalized = append(f.finalized, sessionID)
	return nil
}

type fakeCatalogService struct {
	catalog map[uuid.UUID]events.TicketType
}

func (f *fakeCatalogService) GetEvent(ctx context.Context, id uuid.UUID) (*events.EventResponse, error) {
	return nil, errors.New("not found")
}

func (f *fakeCatalogService) GetTicketTypes(ctx context.Context, eventID uuid.UUID) ([]events.TicketTypeResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCatalogService) Catalog(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]events.TicketType, error) {
	return f.catalog, nil
}

func (f *fakeCatalogService) InvalidateTicketTypes(ctx context.Context, eventID uuid.UUID) error {
	return nil
}

type verifyingProvider struct {
	name      string
	result    *payments.VerificationResult
	verifyErr error
	initiated int
}

func (p *verifyingProvider) Name() string { return p.name }

func (p *verifyingProvider) Initiate(ctx context.Context, params payments.InitiateParams) (*payments.IntentRef, error) {
	p.initiated++
	return &payments.IntentRef{
		Provider:  p.name,
		IntentID:  "pi_test_" + uuid.NewString()[:8],
		Reference: "ref_test",
	}, nil
}

func (p *verifyingProvider) Verify(ctx context.Context, intentID string) (*payments.VerificationResult, error) {
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	return p.result, nil
}

func (p *verifyingProvider) ParseWebhook(payload []byte, signature string) (*payments.WebhookEvent, error) {
	return nil, nil
}

type recordingPublisher struct {
	created []uuid.UUID
	paid    []uuid.UUID
	failed  []uuid.UUID
}

func (r *recordingPublisher) OrderCreated(ctx context.Context, orderID, eventID, userID uuid.UUID, email string, totalCents int64, currency string) {
	r.created = append(r.created, orderID)
}

func (r *recordingPublisher) OrderPaid(ctx context.Context, orderID, eventID, userID uuid.UUID, email string, totalCents int64, currency, provider string) {
	r.paid = append(r.paid, orderID)
}

func (r *recordingPublisher) PaymentFailed(ctx context.Context, orderID, eventID, userID uuid.UUID, email, provider, reason string) {
	r.failed = append(r.failed, orderID)
}

type ordersFixture struct {
	service   *service
	repo      *fakeRepository
	checkout  *fakeCheckoutService
	provider  *verifyingProvider
	publisher *recordingPublisher
	gaID      uuid.UUID
	freeID    uuid.UUID
	eventID   uuid.UUID
	userID    uuid.UUID
}

func newOrdersFixture(t *testing.T) *ordersFixture {
	t.Helper()

	gaID := uuid.New()
	freeID := uuid.New()
	catalog := map[uuid.UUID]events.TicketType{
		gaID: {
			ID:            gaID,
			Name:          "General Admission",
			PriceCents:    5000,
			FeeCents:      200,
			QuantityTotal: 100,
			Status:        events.TicketTypeStatusActive,
		},
		freeID: {
			ID:            freeID,
			Name:          "Community Pass",
			PriceCents:    0,
			FeeCents:      0,
			QuantityTotal: 500,
			Status:        events.TicketTypeStatusActive,
		},
	}

	repo := newFakeRepository()
	checkoutSvc := &fakeCheckoutService{}
	provider := &verifyingProvider{name: payments.ProviderStripe}
	publisher := &recordingPublisher{}

	registry := payments.NewRegistry()
	registry.Register(provider)

	svc := NewService(repo, checkoutSvc, &fakeCatalogService{catalog: catalog}, registry, publisher, nil, "USD", logger.GetDefault()).(*service)

	return &ordersFixture{
		service:   svc,
		repo:      repo,
		checkout:  checkoutSvc,
		provider:  provider,
		publisher: publisher,
		gaID:      gaID,
		freeID:    freeID,
		eventID:   uuid.New(),
		userID:    uuid.New(),
	}
}

func (f *ordersFixture) withSession(selections map[uuid.UUID]int, discountCents int64, promoCode string) *checkout.Session {
	now := time.Now()
	session := &checkout.Session{
		ID:            uuid.New(),
		UserID:        f.userID,
		EventID:       f.eventID,
		Selections:    selections,
		PromoCode:     promoCode,
		DiscountCents: discountCents,
		CreatedAt:     now,
		ExpiresAt:     now.Add(10 * time.Minute),
	}
	f.checkout.session = session
	return session
}

func (f *ordersFixture) createOrder(t *testing.T, req CreateOrderRequest) *Order {
	t.Helper()
	order, err := f.service.CreateOrder(context.Background(), f.userID, "buyer@example.com", req)
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	return order
}

func TestCreateOrder(t *testing.T) {
	t.Run("persists amounts and line items", func(t *testing.T) {
		f := newOrdersFixture(t)
		session := f.withSession(map[uuid.UUID]int{f.gaID: 2}, 2000, "SAVE20")

		order := f.createOrder(t, CreateOrderRequest{SessionID: session.ID.String()})

		if order.Status != StatusPending {
			t.Errorf("Status = %q, want %q", order.Status, StatusPending)
		}
		if order.SubtotalCents != 10000 || order.FeeCents != 400 || order.DiscountCents != 2000 || order.TotalCents != 8400 {
			t.Errorf("amounts = %d/%d/%d/%d, want 10000/400/2000/8400",
				order.SubtotalCents, order.FeeCents, order.DiscountCents, order.TotalCents)
		}
		if order.PromoCode != "SAVE20" {
			t.Errorf("PromoCode = %q, want SAVE20", order.PromoCode)
		}
		if len(order.Items) != 1 || order.Items[0].Quantity != 2 || order.Items[0].UnitPriceCents != 5000 {
			t.Errorf("unexpected items: %+v", order.Items)
		}
		if len(f.checkout.finalized) != 1 || f.checkout.finalized[0] != session.ID {
			t.Error("expected the checkout session to be finalized")
		}
		if len(f.publisher.created) != 1 {
			t.Errorf("published created events = %d, want 1", len(f.publisher.created))
		}
		if len(f.publisher.paid) != 0 {
			t.Errorf("published paid events = %d, want 0 for a pending order", len(f.publisher.paid))
		}
	})

	t.Run("free orders complete without payment", func(t *testing.T) {
		f := newOrdersFixture(t)
		session := f.withSession(map[uuid.UUID]int{f.freeID: 3}, 0, "")

		order := f.createOrder(t, CreateOrderRequest{SessionID: session.ID.String()})

		if order.Status != StatusPaid {
			t.Errorf("Status = %q, want %q", order.Status, StatusPaid)
		}
		if order.PaidAt == nil {
			t.Error("PaidAt should be set for a free order")
		}
		if len(f.publisher.paid) != 1 {
			t.Errorf("published paid events = %d, want 1", len(f.publisher.paid))
		}
	})

	t.Run("idempotency key replays the original order", func(t *testing.T) {
		f := newOrdersFixture(t)
		session := f.withSession(map[uuid.UUID]int{f.gaID: 1}, 0, "")

		req := CreateOrderRequest{SessionID: session.ID.String(), IdempotencyKey: "retry-abc-123"}
		first := f.createOrder(t, req)

		// The session is gone by the retry; the key alone must resolve it.
		f.checkout.session = nil
		second := f.createOrder(t, req)

		if first.ID != second.ID {
			t.Errorf("replayed order id = %s, want %s", second.ID, first.ID)
		}
		if f.repo.createCalls != 1 {
			t.Errorf("createCalls = %d, want 1", f.repo.createCalls)
		}
	})

	t.Run("losing a concurrent duplicate-key race replays the winner", func(t *testing.T) {
		f := newOrdersFixture(t)
		session := f.withSession(map[uuid.UUID]int{f.gaID: 1}, 0, "")

		// A concurrent retry already persisted the order under this key.
		key := "retry-race-456"
		winner := &Order{
			ID:             uuid.New(),
			UserID:         f.userID,
			EventID:        f.eventID,
			Status:         StatusPending,
			TotalCents:     5200,
			IdempotencyKey: &key,
		}
		f.repo.orders[winner.ID] = winner
		f.repo.createErr = ErrDuplicateIdempotencyKey

		// The replay-before-create check misses because the winner commits
		// inside the race window; simulate that by hiding the order until
		// the insert fails.
		lookupRepo := &raceLosingRepository{fakeRepository: f.repo, hideUntilCreate: true}
		f.service.repo = lookupRepo

		order, err := f.service.CreateOrder(context.Background(), f.userID, "buyer@example.com",
			CreateOrderRequest{SessionID: session.ID.String(), IdempotencyKey: key})
		if err != nil {
			t.Fatalf("CreateOrder() error = %v", err)
		}
		if order.ID != winner.ID {
			t.Errorf("order id = %s, want the winner %s", order.ID, winner.ID)
		}
	})

	t.Run("rejects a session with no resolvable items", func(t *testing.T) {
		f := newOrdersFixture(t)
		session := f.withSession(map[uuid.UUID]int{uuid.New(): 2}, 0, "")

		_, err := f.service.CreateOrder(context.Background(), f.userID, "buyer@example.com", CreateOrderRequest{SessionID: session.ID.String()})
		if !errors.Is(err, ErrEmptyOrder) {
			t.Errorf("error = %v, want ErrEmptyOrder", err)
		}
	})

	t.Run("rejects another user's session", func(t *testing.T) {
		f := newOrdersFixture(t)
		session := f.withSession(map[uuid.UUID]int{f.gaID: 1}, 0, "")

		_, err := f.service.CreateOrder(context.Background(), uuid.New(), "other@example.com", CreateOrderRequest{SessionID: session.ID.String()})
		if !errors.Is(err, checkout.ErrNotSessionOwner) {
			t.Errorf("error = %v, want checkout.ErrNotSessionOwner", err)
		}
	})
}

func TestInitiatePayment(t *testing.T) {
	t.Run("creates a payment and supersedes earlier attempts", func(t *testing.T) {
		f := newOrdersFixture(t)
		session := f.withSession(map[uuid.UUID]int{f.gaID: 2}, 0, "")
		order := f.createOrder(t, CreateOrderRequest{SessionID: session.ID.String()})

		first, err := f.service.InitiatePayment(context.Background(), order.ID, f.userID, "buyer@example.com", "")
		if err != nil {
			t.Fatalf("InitiatePayment() error = %v", err)
		}
		second, err := f.service.InitiatePayment(context.Background(), order.ID, f.userID, "buyer@example.com", "")
		if err != nil {
			t.Fatalf("InitiatePayment() retry error = %v", err)
		}

		if first.IntentID == second.IntentID {
			t.Error("expected a fresh intent per initiation")
		}
		firstPayment, err := f.repo.GetPaymentByIntentID(context.Background(), payments.ProviderStripe, first.IntentID)
		if err != nil {
			t.Fatalf("GetPaymentByIntentID() error = %v", err)
		}
		if firstPayment.Status != PaymentStatusFailed {
			t.Errorf("first payment status = %q, want superseded as %q", firstPayment.Status, PaymentStatusFailed)
		}
	})

	t.Run("rejects paid orders", func(t *testing.T) {
		f := newOrdersFixture(t)
		session := f.withSession(map[uuid.UUID]int{f.freeID: 1}, 0, "")
		order := f.createOrder(t, CreateOrderRequest{SessionID: session.ID.String()})

		_, err := f.service.InitiatePayment(context.Background(), order.ID, f.userID, "buyer@example.com", "")
		if !errors.Is(err, ErrOrderNotPayable) {
			t.Errorf("error = %v, want ErrOrderNotPayable", err)
		}
	})

	t.Run("rejects another user", func(t *testing.T) {
		f := newOrdersFixture(t)
		session := f.withSession(map[uuid.UUID]int{f.gaID: 1}, 0, "")
		order := f.createOrder(t, CreateOrderRequest{SessionID: session.ID.String()})

		_, err := f.service.InitiatePayment(context.Background(), order.ID, uuid.New(), "other@example.com", "")
		if !errors.Is(err, ErrNotOrderOwner) {
			t.Errorf("error = %v, want ErrNotOrderOwner", err)
		}
	})
}

func TestConfirm(t *testing.T) {
	setup := func(t *testing.T) (*ordersFixture, *Order, string) {
		t.Helper()
		f := newOrdersFixture(t)
		session := f.withSession(map[uuid.UUID]int{f.gaID: 2}, 0, "")
		order := f.createOrder(t, CreateOrderRequest{SessionID: session.ID.String()})
		ref, err := f.service.InitiatePayment(context.Background(), order.ID, f.userID, "buyer@example.com", "")
		if err != nil {
			t.Fatalf("InitiatePayment() error = %v", err)
		}
		return f, order, ref.IntentID
	}

	t.Run("succeeded payment marks the order paid", func(t *testing.T) {
		f, order, intentID := setup(t)
		f.provider.result = &payments.VerificationResult{Status: payments.StatusSucceeded}

		result, err := f.service.Confirm(context.Background(), order.ID, f.userID, intentID)
		if err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if result.Outcome != OutcomeNewlyPaid {
			t.Errorf("Outcome = %q, want %q", result.Outcome, OutcomeNewlyPaid)
		}
		if result.Order.Status != StatusPaid {
			t.Errorf("order status = %q, want %q", result.Order.Status, StatusPaid)
		}
		if len(f.publisher.paid) != 1 {
			t.Errorf("published paid events = %d, want 1", len(f.publisher.paid))
		}
	})

	t.Run("redundant confirmation lands on already paid", func(t *testing.T) {
		f, order, intentID := setup(t)
		f.provider.result = &payments.VerificationResult{Status: payments.StatusSucceeded}

		if _, err := f.service.Confirm(context.Background(), order.ID, f.userID, intentID); err != nil {
			t.Fatalf("first Confirm() error = %v", err)
		}
		result, err := f.service.Confirm(context.Background(), order.ID, f.userID, intentID)
		if err != nil {
			t.Fatalf("second Confirm() error = %v", err)
		}
		if result.Outcome != OutcomeAlreadyPaid {
			t.Errorf("Outcome = %q, want %q", result.Outcome, OutcomeAlreadyPaid)
		}
		if len(f.publisher.paid) != 1 {
			t.Errorf("published paid events = %d, want exactly 1", len(f.publisher.paid))
		}
	})

	t.Run("pending payment reports confirmation pending", func(t *testing.T) {
		f, order, intentID := setup(t)
		f.provider.result = &payments.VerificationResult{Status: payments.StatusPending}

		_, err := f.service.Confirm(context.Background(), order.ID, f.userID, intentID)
		if !errors.Is(err, ErrConfirmationPending) {
			t.Errorf("error = %v, want ErrConfirmationPending", err)
		}
	})

	t.Run("failed payment is rejected", func(t *testing.T) {
		f, order, intentID := setup(t)
		f.provider.result = &payments.VerificationResult{Status: payments.StatusFailed, FailureReason: "card_declined"}

		result, err := f.service.Confirm(context.Background(), order.ID, f.userID, intentID)
		if err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if result.Outcome != OutcomeRejected {
			t.Errorf("Outcome = %q, want %q", result.Outcome, OutcomeRejected)
		}
		if len(f.publisher.failed) != 1 {
			t.Errorf("published failed events = %d, want 1", len(f.publisher.failed))
		}
	})

	t.Run("unknown intent id", func(t *testing.T) {
		f, order, _ := setup(t)

		_, err := f.service.Confirm(context.Background(), order.ID, f.userID, "pi_unknown")
		if !errors.Is(err, ErrPaymentNotFound) {
			t.Errorf("error = %v, want ErrPaymentNotFound", err)
		}
	})

	t.Run("empty intent id targets the newest initiated payment", func(t *testing.T) {
		f, order, _ := setup(t)
		f.provider.result = &payments.VerificationResult{Status: payments.StatusSucceeded}

		result, err := f.service.Confirm(context.Background(), order.ID, f.userID, "")
		if err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if result.Outcome != OutcomeNewlyPaid {
			t.Errorf("Outcome = %q, want %q", result.Outcome, OutcomeNewlyPaid)
		}
	})
}

func TestApplyProviderEvent(t *testing.T) {
	setup := func(t *testing.T) (*ordersFixture, *Order, string) {
		t.Helper()
		f := newOrdersFixture(t)
		session := f.withSession(map[uuid.UUID]int{f.gaID: 1}, 0, "")
		order := f.createOrder(t, CreateOrderRequest{SessionID: session.ID.String()})
		ref, err := f.service.InitiatePayment(context.Background(), order.ID, f.userID, "buyer@example.com", "")
		if err != nil {
			t.Fatalf("InitiatePayment() error = %v", err)
		}
		return f, order, ref.IntentID
	}

	t.Run("success event marks the order paid", func(t *testing.T) {
		f, order, intentID := setup(t)

		event := &payments.WebhookEvent{IntentID: intentID, Status: payments.StatusSucceeded}
		if err := f.service.ApplyProviderEvent(context.Background(), payments.ProviderStripe, event, "webhook"); err != nil {
			t.Fatalf("ApplyProviderEvent() error = %v", err)
		}

		updated, err := f.repo.GetOrderByID(context.Background(), order.ID)
		if err != nil {
			t.Fatalf("GetOrderByID() error = %v", err)
		}
		if updated.Status != StatusPaid {
			t.Errorf("order status = %q, want %q", updated.Status, StatusPaid)
		}
	})

	t.Run("duplicate success event publishes once", func(t *testing.T) {
		f, _, intentID := setup(t)

		event := &payments.WebhookEvent{IntentID: intentID, Status: payments.StatusSucceeded}
		for i := 0; i < 3; i++ {
			if err := f.service.ApplyProviderEvent(context.Background(), payments.ProviderStripe, event, "webhook"); err != nil {
				t.Fatalf("ApplyProviderEvent() #%d error = %v", i+1, err)
			}
		}
		if len(f.publisher.paid) != 1 {
			t.Errorf("published paid events = %d, want exactly 1", len(f.publisher.paid))
		}
	})

	t.Run("failure event records the reason", func(t *testing.T) {
		f, _, intentID := setup(t)

		event := &payments.WebhookEvent{IntentID: intentID, Status: payments.StatusFailed, Reason: "card_declined"}
		if err := f.service.ApplyProviderEvent(context.Background(), payments.ProviderStripe, event, "webhook"); err != nil {
			t.Fatalf("ApplyProviderEvent() error = %v", err)
		}

		payment, err := f.repo.GetPaymentByIntentID(context.Background(), payments.ProviderStripe, intentID)
		if err != nil {
			t.Fatalf("GetPaymentByIntentID() error = %v", err)
		}
		if payment.Status != PaymentStatusFailed || payment.FailureReason != "card_declined" {
			t.Errorf("payment = %q/%q, want failed/card_declined", payment.Status, payment.FailureReason)
		}
	})

	t.Run("pending event is a no-op", func(t *testing.T) {
		f, _, intentID := setup(t)

		event := &payments.WebhookEvent{IntentID: intentID, Status: payments.StatusPending}
		if err := f.service.ApplyProviderEvent(context.Background(), payments.ProviderStripe, event, "webhook"); err != nil {
			t.Fatalf("ApplyProviderEvent() error = %v", err)
		}
		if len(f.publisher.paid) != 0 || len(f.publisher.failed) != 0 {
			t.Error("pending event should publish nothing")
		}
	})
}

func TestGetOrderStatus(t *testing.T) {
	f := newOrdersFixture(t)
	session := f.withSession(map[uuid.UUID]int{f.gaID: 1}, 0, "")
	order := f.createOrder(t, CreateOrderRequest{SessionID: session.ID.String()})

	snapshot, err := f.service.GetOrderStatus(context.Background(), order.ID, f.userID)
	if err != nil {
		t.Fatalf("GetOrderStatus() error = %v", err)
	}
	if snapshot.Status != StatusPending {
		t.Errorf("Status = %q, want %q", snapshot.Status, StatusPending)
	}

	if _, err := f.service.GetOrderStatus(context.Background(), order.ID, uuid.New()); !errors.Is(err, ErrNotOrderOwner) {
		t.Errorf("error = %v, want ErrNotOrderOwner", err)
	}
}
