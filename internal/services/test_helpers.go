package services

import (
	"time"

	"fulfillment-service/internal/domain"

	"github.com/shopspring/decimal"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func CreateMockProduct(id uint64, name string, price string, stock int64) *domain.Product {
	return &domain.Product{
		ID:    id,
		Name:  name,
		Price: money(price),
		Stock: stock,
	}
}

func CreateMockOrder(id, userID uint64, total string, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:          id,
		UserID:      userID,
		CityID:      TestCityID,
		AreaID:      TestAreaID,
		TotalAmount: money(total),
		Status:      status,
		CreatedAt:   time.Now(),
	}
}

func CreateMockUser(id uint64, role string) *domain.User {
	return &domain.User{
		ID:           id,
		Name:         "Test User",
		Email:        "user@example.com",
		MobileNumber: "+15550100",
		Role:         role,
	}
}

const (
	TestUserID    = uint64(1)
	TestAdminID   = uint64(9)
	TestCityID    = uint64(1)
	TestAreaID    = uint64(2)
	TestProductID = uint64(1)
	TestOrderID   = uint64(1)
)
