package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ticketflow/internal/events"
	"ticketflow/internal/promotions"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInsufficientInventory is returned when the row-locked capacity
	// check fails at order creation.
	ErrInsufficientInventory = errors.New("insufficient ticket inventory")

	// ErrPromotionExhausted is returned when a promo's usage limit is hit
	// between validation and redemption.
	ErrPromotionExhausted = errors.New("promotion usage limit reached")

	// ErrDuplicateIdempotencyKey is returned when a concurrent retry with
	// the same idempotency key won the creation race.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
)

type Repository interface {
	// CreateOrderWithInventoryCheck persists the order atomically: ticket
	// type rows are locked, capacity re-verified, sold counters advanced,
	// and the promo redeemed, all in one transaction.
	CreateOrderWithInventoryCheck(ctx context.Context, order *Order) error

	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*Order, error)
	GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]Order, int64, error)

	CreatePayment(ctx context.Context, payment *Payment) error
	GetPaymentByIntentID(ctx context.Context, provider, intentID string) (*Payment, error)
	SupersedeInitiatedPayments(ctx context.Context, orderID uuid.UUID) error
	ListInitiatedPaymentsBefore(ctx context.Context, cutoff time.Time, limit int) ([]Payment, error)

	// MarkPaidByIntent applies a successful provider confirmation. The
	// order row is locked so concurrent confirmations (webhook, client
	// confirm, reconciler) serialize; exactly one observes newly_paid.
	MarkPaidByIntent(ctx context.Context, provider, intentID string) (ConfirmOutcome, *Order, error)

	// MarkPaymentFailed records a failed attempt. Payments already
	// succeeded are left untouched.
	MarkPaymentFailed(ctx context.Context, provider, intentID, reason string) (*Order, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateOrderWithInventoryCheck(ctx context.Context, order *Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock each ticket type row and re-verify capacity. The Redis
		// hold makes a failure here unlikely but not impossible.
		for _, item := range order.Items {
			var tt struct {
				ID            uuid.UUID `gorm:"column:id"`
				QuantityTotal int       `gorm:"column:quantity_total"`
				QuantitySold  int       `gorm:"column:quantity_sold"`
				Status        string    `gorm:"column:status"`
			}

			err := tx.Table("ticket_types").
				Select("id, quantity_total, quantity_sold, status").
				Where("id = ?", item.TicketTypeID).
				Set("gorm:query_option", "FOR UPDATE").
				First(&tt).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("ticket type %s not found", item.TicketTypeID)
				}
				return fmt.Errorf("failed to lock ticket type: %w", err)
			}

			if tt.Status != "active" {
				return fmt.Errorf("%w: ticket type %s is not on sale", ErrInsufficientInventory, item.TicketTypeID)
			}
			if tt.QuantitySold+item.Quantity > tt.QuantityTotal {
				return fmt.Errorf("%w: ticket type %s has %d left, requested %d",
					ErrInsufficientInventory, item.TicketTypeID, tt.QuantityTotal-tt.QuantitySold, item.Quantity)
			}
		}

		// 2. Redeem the promo under the same lock discipline.
		if order.PromoCode != "" {
			result := tx.Model(&promotions.Promotion{}).
				Where("code = ? AND active = true", order.PromoCode).
				Where("usage_limit = 0 OR used_count < usage_limit").
				Update("used_count", gorm.Expr("used_count + 1"))
			if result.Error != nil {
				return fmt.Errorf("failed to redeem promotion: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrPromotionExhausted
			}
		}

		// 3. Create the order with its items.
		if err := tx.Create(order).Error; err != nil {
			if order.IdempotencyKey != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateIdempotencyKey
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		// 4. Advance the sold counters.
		for _, item := range order.Items {
			err := tx.Model(&events.TicketType{}).
				Where("id = ?", item.TicketTypeID).
				Update("quantity_sold", gorm.Expr("quantity_sold + ?", item.Quantity)).Error
			if err != nil {
				return fmt.Errorf("failed to update sold count: %w", err)
			}
		}

		return nil
	})
}

func (r *repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) GetOrderByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]Order, int64, error) {
	var orders []Order
	var totalCount int64

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	baseQuery := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("user_id = ?", userID)

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := baseQuery.
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error

	return orders, totalCount, err
}

func (r *repository) CreatePayment(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) GetPaymentByIntentID(ctx context.Context, provider, intentID string) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).
		Where("provider = ? AND intent_id = ?", provider, intentID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// SupersedeInitiatedPayments fails any still-initiated payments for an
// order. Called before a new initiation so only the newest attempt can
// confirm through the client path.
func (r *repository) SupersedeInitiatedPayments(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Payment{}).
		Where("order_id = ? AND status = ?", orderID, PaymentStatusInitiated).
		Updates(map[string]interface{}{
			"status":         PaymentStatusFailed,
			"failure_reason": "superseded by a newer payment attempt",
			"updated_at":     time.Now(),
		}).Error
}

func (r *repository) ListInitiatedPaymentsBefore(ctx context.Context, cutoff time.Time, limit int) ([]Payment, error) {
	var payments []Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", PaymentStatusInitiated, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

func (r *repository) MarkPaidByIntent(ctx context.Context, provider, intentID string) (ConfirmOutcome, *Order, error) {
	var outcome ConfirmOutcome
	var order Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment Payment
		err := tx.Where("provider = ? AND intent_id = ?", provider, intentID).
			First(&payment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		err = tx.Set("gorm:query_option", "FOR UPDATE").
			Where("id = ?", payment.OrderID).
			First(&order).Error
		if err != nil {
			return fmt.Errorf("failed to lock order: %w", err)
		}

		switch order.Status {
		case StatusPaid:
			outcome = OutcomeAlreadyPaid
			return nil
		case StatusCancelled:
			outcome = OutcomeRejected
			return nil
		}

		now := time.Now()
		err = tx.Model(&Payment{}).
			Where("id = ?", payment.ID).
			Updates(map[string]interface{}{
				"status":     PaymentStatusSucceeded,
				"updated_at": now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}

		err = tx.Model(&Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"status":     StatusPaid,
				"paid_at":    now,
				"updated_at": now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to mark order paid: %w", err)
		}

		order.Status = StatusPaid
		order.PaidAt = &now
		outcome = OutcomeNewlyPaid
		return nil
	})
	if err != nil {
		return OutcomeRejected, nil, err
	}
	return outcome, &order, nil
}

func (r *repository) MarkPaymentFailed(ctx context.Context, provider, intentID, reason string) (*Order, error) {
	payment, err := r.GetPaymentByIntentID(ctx, provider, intentID)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&Payment{}).
		Where("id = ? AND status = ?", payment.ID, PaymentStatusInitiated).
		Updates(map[string]interface{}{
			"status":         PaymentStatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now(),
		}).Error
	if err != nil {
		return nil, err
	}

	return r.GetOrderByID(ctx, payment.OrderID)
}
