package mysql

import (
	"context"
	"errors"
	"fmt"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ReserveStock holds a FOR UPDATE lock on the product row for the whole
// check-and-decrement, so a concurrent reservation for the same product
// blocks until this one commits and then sees the decremented stock.
// The sticky low-stock flag is written inside the same transaction.
func (r *productRepo) ReserveStock(ctx context.Context, productID uint64, size string, qty int64) (*repository.Reservation, error) {
	var res *repository.Reservation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
			}
			return err
		}

		available := p.AvailableStock(size)
		if qty <= 0 {
			return fmt.Errorf("%w: quantity must be positive", domain.ErrInsufficientStock)
		}
		if available < qty {
			return fmt.Errorf("%w: product %q has %d left", domain.ErrInsufficientStock, p.Name, available)
		}

		remaining := available - qty
		if size == "" {
			p.Stock = remaining
		} else {
			p.VariantBySize(size).Stock = remaining
		}

		crossed := false
		if remaining <= domain.LowStockThreshold && !p.LowStockAlert {
			p.LowStockAlert = true
			crossed = true
		}
		p.Version++

		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		res = &repository.Reservation{Product: &p, Remaining: remaining, Crossed: crossed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ReleaseStock adds qty back to the pool. The low-stock flag stays set
// even when the restored stock rises above the threshold.
func (r *productRepo) ReleaseStock(ctx context.Context, productID uint64, size string, qty int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
			}
			return err
		}
		if size == "" {
			p.Stock += qty
		} else {
			v := p.VariantBySize(size)
			if v == nil {
				return fmt.Errorf("%w: product %d has no size %q", domain.ErrNotFound, productID, size)
			}
			v.Stock += qty
		}
		p.Version++
		return tx.Save(&p).Error
	})
}

func (r *productRepo) ClearLowStockAlert(ctx context.Context, productID uint64) error {
	result := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{"low_stock_alert": false, "version": gorm.Expr("version + 1")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}
	return nil
}
