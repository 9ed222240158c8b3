package promotions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrPromotionNotFound = errors.New("promotion not found")

type Repository interface {
	GetByCode(ctx context.Context, code string) (*Promotion, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Promotion, error) {
	var promo Promotion
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&promo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, fmt.Errorf("failed to get promotion: %w", err)
	}
	return &promo, nil
}
