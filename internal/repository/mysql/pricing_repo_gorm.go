package mysql

import (
	"context"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/repository"

	"gorm.io/gorm"
)

type pricingRuleRepo struct {
	db *gorm.DB
}

func NewPricingRuleRepository(db *gorm.DB) repository.PricingRuleRepository {
	return &pricingRuleRepo{db: db}
}

func (r *pricingRuleRepo) FindByProduct(ctx context.Context, productID uint64) ([]domain.PricingRule, error) {
	var rules []domain.PricingRule
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}
