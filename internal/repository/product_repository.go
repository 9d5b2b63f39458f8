package repository

import (
	"context"

	"fulfillment-service/internal/domain"
)

// Reservation is the outcome of one atomic check-and-decrement.
type Reservation struct {
	// Product state after the decrement committed.
	Product *domain.Product
	// Remaining stock of the decremented pool.
	Remaining int64
	// Crossed is true when this decrement pushed the pool at or below
	// the low-stock threshold and raised the sticky flag. It is true at
	// most once per product over any sequence of reservations.
	Crossed bool
}

type ProductRepository interface {
	// FindByID returns (nil, nil) when the product does not exist.
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	// ReserveStock checks and decrements the product (or variant) stock
	// pool in a single row-locked transaction. Two concurrent calls
	// against the same pool never both succeed when only one has
	// sufficient stock. Returns domain.ErrNotFound or
	// domain.ErrInsufficientStock wrapped with detail.
	ReserveStock(ctx context.Context, productID uint64, size string, qty int64) (*Reservation, error)
	// ReleaseStock reverses a reservation. It never clears the
	// low-stock flag; that takes an explicit admin action.
	ReleaseStock(ctx context.Context, productID uint64, size string, qty int64) error
	// ClearLowStockAlert is the explicit admin clear of the sticky flag.
	ClearLowStockAlert(ctx context.Context, productID uint64) error
}
