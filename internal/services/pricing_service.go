package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/repository"

	"github.com/shopspring/decimal"
)

var ErrInvalidProductData = errors.New("invalid product data")

// PricingService computes the advisory display price for a product by
// applying its pricing rules on top of the base price. The orchestrator
// reconciles declared totals against declared line prices, not against
// this value, so a stale display price surfaces as an explicit
// validation failure instead of a silent substitution.
type PricingService struct {
	products repository.ProductRepository
	rules    repository.PricingRuleRepository
}

func NewPricingService(products repository.ProductRepository, rules repository.PricingRuleRepository) *PricingService {
	return &PricingService{products: products, rules: rules}
}

// PriceProduct resolves the product and evaluates its rules at the
// current time.
func (s *PricingService) PriceProduct(ctx context.Context, productID uint64) (decimal.Decimal, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if product == nil {
		return decimal.Zero, fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}
	rules, err := s.rules.FindByProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return Evaluate(product, rules, time.Now())
}

// Evaluate applies every applicable rule multiplier to the base price.
// Multipliers compose multiplicatively, so rule order is irrelevant.
// The result is rounded to 2 decimal places.
func Evaluate(product *domain.Product, rules []domain.PricingRule, now time.Time) (decimal.Decimal, error) {
	if product.Price.Sign() <= 0 {
		return decimal.Zero, ErrInvalidProductData
	}

	price := product.Price
	for i := range rules {
		rule := &rules[i]
		switch rule.Condition {
		case domain.ConditionPeakHours:
			if inPeakWindow(rule, now) {
				price = price.Mul(rule.Multiplier)
			}
		case domain.ConditionLowStock:
			if rule.Threshold != nil && product.Stock <= *rule.Threshold {
				price = price.Mul(rule.Multiplier)
			}
		}
	}
	return price.Round(2), nil
}

// inPeakWindow checks the current hour against the rule's window,
// inclusive on both ends.
func inPeakWindow(rule *domain.PricingRule, now time.Time) bool {
	start, end := rule.Window()
	hour := now.Hour()
	return hour >= start && hour <= end
}
