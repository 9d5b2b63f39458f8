package services

import (
	"context"
	"testing"
	"time"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func TestEvaluate(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2025, 3, 1, hour, 30, 0, 0, time.UTC)
	}

	peakDefault := domain.PricingRule{Condition: domain.ConditionPeakHours, Multiplier: money("1.2")}
	peakCustom := domain.PricingRule{Condition: domain.ConditionPeakHours, Multiplier: money("1.5"), StartHour: intPtr(8), EndHour: intPtr(10)}
	lowStock := domain.PricingRule{Condition: domain.ConditionLowStock, Multiplier: money("1.1"), Threshold: int64Ptr(10)}

	tests := []struct {
		name     string
		product  *domain.Product
		rules    []domain.PricingRule
		now      time.Time
		expected string
		wantErr  bool
	}{
		{
			name:     "no rules returns base price",
			product:  CreateMockProduct(1, "Milk", "10.00", 20),
			now:      at(9),
			expected: "10.00",
		},
		{
			name:     "peak hours applies inside default window",
			product:  CreateMockProduct(1, "Milk", "10.00", 20),
			rules:    []domain.PricingRule{peakDefault},
			now:      at(12),
			expected: "12.00",
		},
		{
			name:     "default window is inclusive at the end",
			product:  CreateMockProduct(1, "Milk", "10.00", 20),
			rules:    []domain.PricingRule{peakDefault},
			now:      at(18),
			expected: "12.00",
		},
		{
			name:     "peak hours skipped outside window",
			product:  CreateMockProduct(1, "Milk", "10.00", 20),
			rules:    []domain.PricingRule{peakDefault},
			now:      at(11),
			expected: "10.00",
		},
		{
			name:     "custom window bounds are inclusive",
			product:  CreateMockProduct(1, "Milk", "10.00", 20),
			rules:    []domain.PricingRule{peakCustom},
			now:      at(10),
			expected: "15.00",
		},
		{
			name:     "low stock applies at threshold",
			product:  CreateMockProduct(1, "Milk", "10.00", 10),
			rules:    []domain.PricingRule{lowStock},
			now:      at(9),
			expected: "11.00",
		},
		{
			name:     "low stock skipped above threshold",
			product:  CreateMockProduct(1, "Milk", "10.00", 11),
			rules:    []domain.PricingRule{lowStock},
			now:      at(9),
			expected: "10.00",
		},
		{
			name:     "applicable rules compose multiplicatively",
			product:  CreateMockProduct(1, "Milk", "10.00", 5),
			rules:    []domain.PricingRule{peakDefault, lowStock},
			now:      at(14),
			expected: "13.20",
		},
		{
			name:     "result rounds to two decimal places",
			product:  CreateMockProduct(1, "Milk", "9.99", 5),
			rules:    []domain.PricingRule{lowStock},
			now:      at(9),
			expected: "10.99",
		},
		{
			name:    "non-positive base price is invalid",
			product: CreateMockProduct(1, "Milk", "-10.00", 5),
			now:     at(9),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := Evaluate(tt.product, tt.rules, tt.now)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidProductData)
				return
			}
			assert.NoError(t, err)
			assert.True(t, price.Equal(money(tt.expected)), "expected %s, got %s", tt.expected, price)
		})
	}
}

func TestEvaluate_OrderIndependent(t *testing.T) {
	product := CreateMockProduct(1, "Milk", "10.00", 5)
	rules := []domain.PricingRule{
		{Condition: domain.ConditionPeakHours, Multiplier: money("1.2")},
		{Condition: domain.ConditionLowStock, Multiplier: money("1.1"), Threshold: int64Ptr(10)},
	}
	reversed := []domain.PricingRule{rules[1], rules[0]}
	now := time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)

	a, err := Evaluate(product, rules, now)
	assert.NoError(t, err)
	b, err := Evaluate(product, reversed, now)
	assert.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestPricingService_PriceProduct(t *testing.T) {
	mockProducts := new(mocks.MockProductRepository)
	mockRules := new(mocks.MockPricingRuleRepository)

	mockProducts.On("FindByID", mock.Anything, TestProductID).Return(CreateMockProduct(TestProductID, "Milk", "10.00", 20), nil)
	mockRules.On("FindByProduct", mock.Anything, TestProductID).Return([]domain.PricingRule{}, nil)

	service := NewPricingService(mockProducts, mockRules)
	price, err := service.PriceProduct(context.Background(), TestProductID)

	assert.NoError(t, err)
	assert.True(t, price.Equal(money("10.00")))
	mockProducts.AssertExpectations(t)
	mockRules.AssertExpectations(t)
}

func TestPricingService_PriceProduct_NotFound(t *testing.T) {
	mockProducts := new(mocks.MockProductRepository)
	mockRules := new(mocks.MockPricingRuleRepository)

	mockProducts.On("FindByID", mock.Anything, uint64(999)).Return(nil, nil)

	service := NewPricingService(mockProducts, mockRules)
	_, err := service.PriceProduct(context.Background(), 999)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
