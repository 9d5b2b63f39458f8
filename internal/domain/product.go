package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the stock level at or below which the sticky
// low-stock flag is raised.
const LowStockThreshold = 10

// Variant is a size-specific stock pool with its own price.
type Variant struct {
	Size  string          `json:"size"`
	Price decimal.Decimal `json:"price"`
	Stock int64           `json:"stock"`
}

type Product struct {
	ID            uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string          `json:"name" gorm:"not null"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock         int64           `json:"stock" gorm:"not null"`
	LowStockAlert bool            `json:"lowStockAlert" gorm:"default:false"`
	Variants      []Variant       `json:"variants,omitempty" gorm:"serializer:json"`
	Version       uint64          `json:"-" gorm:"default:0"`
	CreatedAt     time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

// VariantBySize returns the variant pool matching size, or nil.
func (p *Product) VariantBySize(size string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].Size == size {
			return &p.Variants[i]
		}
	}
	return nil
}

// AvailableStock is the stock of the named variant pool, or the product
// pool when size is empty. Unknown sizes report zero.
func (p *Product) AvailableStock(size string) int64 {
	if size == "" {
		return p.Stock
	}
	if v := p.VariantBySize(size); v != nil {
		return v.Stock
	}
	return 0
}
