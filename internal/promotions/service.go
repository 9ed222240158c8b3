package promotions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service validates promo codes against the current cart context.
type Service interface {
	Validate(ctx context.Context, req ValidatePromoRequest) (*ValidationResult, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// NormalizeCode trims surrounding whitespace and upper-cases a user-entered
// code. Codes are stored and matched in this canonical form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *service) Validate(ctx context.Context, req ValidatePromoRequest) (*ValidationResult, error) {
	code := NormalizeCode(req.Code)
	if code == "" {
		return &ValidationResult{Valid: false, Message: "promo code is required"}, nil
	}
	if req.OrderAmount <= 0 {
		return &ValidationResult{Valid: false, Message: "select at least one ticket before applying a promo code"}, nil
	}

	promo, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrPromotionNotFound) {
			return &ValidationResult{Valid: false, Code: code, Message: "invalid promo code"}, nil
		}
		return nil, fmt.Errorf("promo lookup failed: %w", err)
	}

	if !promo.IsLive(s.now()) {
		return &ValidationResult{Valid: false, Code: code, Message: "this promo code is no longer valid"}, nil
	}

	if promo.EventID != nil {
		eventID, err := uuid.Parse(req.EventID)
		if err != nil || *promo.EventID != eventID {
			return &ValidationResult{Valid: false, Code: code, Message: "this promo code does not apply to this event"}, nil
		}
	}

	if promo.MinOrderCents > 0 && req.OrderAmount < promo.MinOrderCents {
		return &ValidationResult{
			Valid:   false,
			Code:    code,
			Message: fmt.Sprintf("order must be at least %d to use this code", promo.MinOrderCents),
		}, nil
	}

	discount := promo.DiscountFor(req.OrderAmount)
	if discount <= 0 {
		return &ValidationResult{Valid: false, Code: code, Message: "this promo code is no longer valid"}, nil
	}

	return &ValidationResult{
		Valid:          true,
		Code:           code,
		DiscountAmount: discount,
	}, nil
}
