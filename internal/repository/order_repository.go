package repository

import (
	"context"

	"fulfillment-service/internal/domain"
)

// OrderFilter narrows FindAll. Zero UserID means any user, empty Status
// means any status. Soft-deleted rows are excluded unless
// IncludeDeleted is set.
type OrderFilter struct {
	UserID         uint64
	Status         domain.OrderStatus
	IncludeDeleted bool
}

type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	// FindByID returns (nil, nil) when the order does not exist.
	// Soft-deleted rows are returned; callers decide visibility.
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
}
