package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusAccepted       OrderStatus = "accepted"
	StatusPreparing      OrderStatus = "preparing"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentOnline         PaymentMethod = "online"
	PaymentCashOnDelivery PaymentMethod = "cod"
)

// OrderLine is the snapshot of one purchased product captured at order
// time. Orders keep these values even if the catalog changes later, so a
// line is a value, not a foreign key.
type OrderLine struct {
	ProductID     uint64          `json:"productId"`
	Name          string          `json:"name"`
	Quantity      int64           `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Size          string          `json:"size,omitempty"`
	Stock         int64           `json:"stock"`
	LowStockAlert bool            `json:"lowStockAlert"`
}

// Subtotal is price times quantity for this line.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}

type Order struct {
	ID            uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        uint64          `json:"userId" gorm:"not null;index"`
	CityID        uint64          `json:"cityId" gorm:"not null"`
	AreaID        uint64          `json:"areaId" gorm:"not null"`
	Lines         []OrderLine     `json:"products" gorm:"serializer:json"`
	TotalAmount   decimal.Decimal `json:"totalAmount" gorm:"type:decimal(10,2);not null"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" gorm:"type:varchar(16);not null"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(32);default:'pending';index"`
	DeliveryTime  *time.Time      `json:"deliveryTime,omitempty"`
	DeletedAt     *time.Time      `json:"deletedAt,omitempty" gorm:"index"`
	CreatedAt     time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

// ComputedTotal sums every line subtotal, rounded to 2 decimal places.
func (o *Order) ComputedTotal() decimal.Decimal {
	return LinesTotal(o.Lines)
}

// LinesTotal is the server-side truth a declared total is checked against.
func LinesTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}

// Terminal reports whether no further status transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition validates a lifecycle move. The forward chain is
// pending -> accepted -> preparing -> out_for_delivery -> delivered;
// cancelled is reachable from any non-terminal status.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s == to {
		return true
	}
	if s.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	next := map[OrderStatus]OrderStatus{
		StatusPending:        StatusAccepted,
		StatusAccepted:       StatusPreparing,
		StatusPreparing:      StatusOutForDelivery,
		StatusOutForDelivery: StatusDelivered,
	}
	return next[s] == to
}

// ValidStatus reports whether v names a known order status.
func ValidStatus(v string) bool {
	switch OrderStatus(v) {
	case StatusPending, StatusAccepted, StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}
