package http

import (
	"time"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/services"

	"github.com/shopspring/decimal"
)

type OrderLineRequest struct {
	ProductID uint64          `json:"productId" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,min=1"`
	Price     decimal.Decimal `json:"price" binding:"required"`
	Size      string          `json:"size"`
}

type CreateOrderRequest struct {
	CityID        uint64             `json:"city" binding:"required"`
	AreaID        uint64             `json:"area" binding:"required"`
	Products      []OrderLineRequest `json:"products" binding:"required,dive"`
	TotalAmount   decimal.Decimal    `json:"totalAmount" binding:"required"`
	PaymentMethod string             `json:"paymentMethod" binding:"required,oneof=online cod"`
	DeliveryTime  *time.Time         `json:"deliveryTime"`
}

type UpdateOrderRequest struct {
	Products      []OrderLineRequest `json:"products" binding:"omitempty,dive"`
	TotalAmount   *decimal.Decimal   `json:"totalAmount"`
	Status        *string            `json:"status" binding:"omitempty,oneof=pending accepted preparing out_for_delivery delivered cancelled"`
	PaymentMethod *string            `json:"paymentMethod" binding:"omitempty,oneof=online cod"`
	DeliveryTime  *time.Time         `json:"deliveryTime"`
}

type BulkUpdateRequest struct {
	Updates []struct {
		ID   uint64             `json:"id" binding:"required"`
		Data UpdateOrderRequest `json:"data" binding:"required"`
	} `json:"updates" binding:"required,dive"`
}

type BulkIDsRequest struct {
	IDs []uint64 `json:"ids" binding:"required,min=1"`
}

func toLineInputs(lines []OrderLineRequest) []services.OrderLineInput {
	out := make([]services.OrderLineInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, services.OrderLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Price,
			Size:      l.Size,
		})
	}
	return out
}

func (r UpdateOrderRequest) toInput() services.UpdateOrderInput {
	in := services.UpdateOrderInput{
		TotalAmount:  r.TotalAmount,
		DeliveryTime: r.DeliveryTime,
	}
	if r.Products != nil {
		in.Lines = toLineInputs(r.Products)
	}
	if r.Status != nil {
		st := domain.OrderStatus(*r.Status)
		in.Status = &st
	}
	if r.PaymentMethod != nil {
		pm := domain.PaymentMethod(*r.PaymentMethod)
		in.PaymentMethod = &pm
	}
	return in
}
