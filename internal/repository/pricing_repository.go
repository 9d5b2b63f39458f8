package repository

import (
	"context"

	"fulfillment-service/internal/domain"
)

type PricingRuleRepository interface {
	FindByProduct(ctx context.Context, productID uint64) ([]domain.PricingRule, error)
}
