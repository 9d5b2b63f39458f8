package services

import (
	"context"
	"fmt"
	"log"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/repository"
)

// ReservedLine identifies one committed reservation so it can be
// reversed if a later line of the same order fails.
type ReservedLine struct {
	ProductID uint64
	Size      string
	Quantity  int64
}

// StockReserver is the orchestrator's view of the inventory ledger.
type StockReserver interface {
	ReserveAll(ctx context.Context, lines []domain.OrderLine) ([]ReservedLine, error)
	ReleaseAll(ctx context.Context, reserved []ReservedLine)
}

// InventoryService is the inventory ledger. Atomicity of each
// check-and-decrement lives in the product repository; this layer adds
// multi-line reservation with compensation and the low-stock alert
// fan-out.
type InventoryService struct {
	products repository.ProductRepository
	notifier AdminNotifier
}

// AdminNotifier receives the low-stock alert raised once per threshold
// crossing.
type AdminNotifier interface {
	NotifyAdmins(ctx context.Context, message, notifType string) error
}

func NewInventoryService(products repository.ProductRepository, notifier AdminNotifier) *InventoryService {
	return &InventoryService{products: products, notifier: notifier}
}

var _ StockReserver = (*InventoryService)(nil)

// Reserve atomically checks and decrements one stock pool. When the
// decrement crosses the low-stock threshold the sticky flag has already
// been set inside the same transaction; the alert is emitted here,
// exactly once per crossing, and its failure never fails the
// reservation.
func (s *InventoryService) Reserve(ctx context.Context, productID uint64, size string, qty int64) (*repository.Reservation, error) {
	res, err := s.products.ReserveStock(ctx, productID, size, qty)
	if err != nil {
		return nil, err
	}
	if res.Crossed {
		s.alertLowStock(ctx, res.Product, res.Remaining)
	}
	return res, nil
}

// ReserveAll reserves every line in order. If any line fails, every
// reservation already taken for this order is released before the error
// is returned, so no order ever holds a partial reservation set.
func (s *InventoryService) ReserveAll(ctx context.Context, lines []domain.OrderLine) ([]ReservedLine, error) {
	reserved := make([]ReservedLine, 0, len(lines))
	for _, line := range lines {
		if _, err := s.Reserve(ctx, line.ProductID, line.Size, line.Quantity); err != nil {
			s.ReleaseAll(ctx, reserved)
			return nil, fmt.Errorf("reserve product %d: %w", line.ProductID, err)
		}
		reserved = append(reserved, ReservedLine{ProductID: line.ProductID, Size: line.Size, Quantity: line.Quantity})
	}
	return reserved, nil
}

// ReleaseAll reverses reservations, logging rather than failing on
// individual errors: a failed compensation must not mask the original
// failure that triggered it.
func (s *InventoryService) ReleaseAll(ctx context.Context, reserved []ReservedLine) {
	for _, r := range reserved {
		if err := s.products.ReleaseStock(ctx, r.ProductID, r.Size, r.Quantity); err != nil {
			log.Printf("failed to release %d unit(s) of product %d: %v", r.Quantity, r.ProductID, err)
		}
	}
}

// Release is the explicit inventory-adjustment operation. Cancelling an
// order does not restock; callers who decide to restock use this.
func (s *InventoryService) Release(ctx context.Context, productID uint64, size string, qty int64) error {
	return s.products.ReleaseStock(ctx, productID, size, qty)
}

// ClearLowStockAlert is the explicit admin clear of the sticky flag.
func (s *InventoryService) ClearLowStockAlert(ctx context.Context, productID uint64) error {
	return s.products.ClearLowStockAlert(ctx, productID)
}

func (s *InventoryService) alertLowStock(ctx context.Context, p *domain.Product, remaining int64) {
	log.Printf("low stock alert for product %q: %d left", p.Name, remaining)
	if s.notifier == nil {
		return
	}
	msg := fmt.Sprintf("Product %q is low on stock (%d left).", p.Name, remaining)
	if err := s.notifier.NotifyAdmins(ctx, msg, domain.NotificationLowStockAlert); err != nil {
		log.Printf("failed to notify admins of low stock for product %d: %v", p.ID, err)
	}
}
