package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"fulfillment-service/internal/domain"
	rabbit "fulfillment-service/internal/infra/rabbitmq"
	"fulfillment-service/internal/repository"

	"github.com/shopspring/decimal"
)

// OrderLineInput is one requested line: the product, the quantity and
// the unit price the caller saw. The declared price is what the total
// is reconciled against; a changed catalog price surfaces as a total
// mismatch, never as a silent substitution.
type OrderLineInput struct {
	ProductID uint64
	Quantity  int64
	Price     decimal.Decimal
	Size      string
}

type CreateOrderInput struct {
	UserID        uint64
	CityID        uint64
	AreaID        uint64
	Lines         []OrderLineInput
	TotalAmount   decimal.Decimal
	PaymentMethod domain.PaymentMethod
	DeliveryTime  *time.Time
}

// UpdateOrderInput patches an order. Nil fields are left unchanged.
// TotalAmount must accompany Lines so the invariant is re-checked.
type UpdateOrderInput struct {
	Lines         []OrderLineInput
	TotalAmount   *decimal.Decimal
	Status        *domain.OrderStatus
	PaymentMethod *domain.PaymentMethod
	DeliveryTime  *time.Time
}

// OrderPatch pairs an order id with its patch for bulk updates.
type OrderPatch struct {
	ID   uint64
	Data UpdateOrderInput
}

// OrderService owns the order lifecycle. It composes entity resolution,
// stock reservation, total reconciliation and persistence, then fans
// out notifications, the audit record and the lifecycle event after the
// order is durable. Side-effect failures are logged and isolated; they
// never unwind a committed order.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	refs      repository.ReferenceRepository
	inventory StockReserver
	notifier  Notifier
	auditor   Auditor
	publisher rabbit.PublisherInterface
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	refs repository.ReferenceRepository,
	inventory StockReserver,
	notifier Notifier,
	auditor Auditor,
	publisher rabbit.PublisherInterface,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		refs:      refs,
		inventory: inventory,
		notifier:  notifier,
		auditor:   auditor,
		publisher: publisher,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	user, err := s.refs.FindUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", domain.ErrNotFound, in.UserID)
	}
	city, err := s.refs.FindCity(ctx, in.CityID)
	if err != nil {
		return nil, err
	}
	if city == nil {
		return nil, fmt.Errorf("%w: city %d", domain.ErrNotFound, in.CityID)
	}
	area, err := s.refs.FindArea(ctx, in.AreaID)
	if err != nil {
		return nil, err
	}
	if area == nil {
		return nil, fmt.Errorf("%w: area %d", domain.ErrNotFound, in.AreaID)
	}

	lines, err := s.snapshotLines(ctx, in.Lines, in.TotalAmount)
	if err != nil {
		return nil, err
	}

	reserved, err := s.inventory.ReserveAll(ctx, lines)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID:        in.UserID,
		CityID:        in.CityID,
		AreaID:        in.AreaID,
		Lines:         lines,
		TotalAmount:   domain.LinesTotal(lines),
		PaymentMethod: in.PaymentMethod,
		Status:        domain.StatusPending,
		DeliveryTime:  in.DeliveryTime,
	}
	if err := s.orders.Save(ctx, order); err != nil {
		// The order row never committed, so give the stock back.
		s.inventory.ReleaseAll(ctx, reserved)
		return nil, err
	}

	go s.fanOut(order, in.UserID, domain.ActionCreateOrder, domain.EventOrderCreated,
		fmt.Sprintf("Your order #%d has been placed successfully.", order.ID),
		fmt.Sprintf("New order #%d placed by user %d.", order.ID, order.UserID))

	return order, nil
}

// snapshotLines resolves every requested product, checks stock and
// freezes the line values into the order, then reconciles the declared
// total against the declared line prices. A mismatch is rejected, not
// corrected: silently trusting client totals is the fraud vector this
// check closes.
func (s *OrderService) snapshotLines(ctx context.Context, inputs []OrderLineInput, declaredTotal decimal.Decimal) ([]domain.OrderLine, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: order has no product lines", domain.ErrTotalMismatch)
	}
	lines := make([]domain.OrderLine, 0, len(inputs))
	for _, in := range inputs {
		product, err := s.products.FindByID(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, in.ProductID)
		}
		if in.Size != "" && product.VariantBySize(in.Size) == nil {
			return nil, fmt.Errorf("%w: product %q has no size %q", domain.ErrNotFound, product.Name, in.Size)
		}
		available := product.AvailableStock(in.Size)
		if available < in.Quantity {
			return nil, fmt.Errorf("%w: product %q has %d left", domain.ErrInsufficientStock, product.Name, available)
		}
		lines = append(lines, domain.OrderLine{
			ProductID:     in.ProductID,
			Name:          product.Name,
			Quantity:      in.Quantity,
			Price:         in.Price,
			Size:          in.Size,
			Stock:         available,
			LowStockAlert: product.LowStockAlert,
		})
	}

	computed := domain.LinesTotal(lines)
	if !computed.Equal(declaredTotal.Round(2)) {
		return nil, fmt.Errorf("%w: declared %s, computed %s", domain.ErrTotalMismatch, declaredTotal, computed)
	}
	return lines, nil
}

// findOne loads an order and enforces the ownership rule: admins see
// everything, everyone else only their own orders.
func (s *OrderService) findOne(ctx context.Context, id uint64, actor domain.Actor, includeDeleted bool) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil || (!includeDeleted && order.DeletedAt != nil) {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, id)
	}
	if !actor.IsAdmin() && order.UserID != actor.ID {
		return nil, fmt.Errorf("%w: order %d", domain.ErrForbidden, id)
	}
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint64, actor domain.Actor) (*domain.Order, error) {
	return s.findOne(ctx, id, actor, false)
}

func (s *OrderService) ListOrders(ctx context.Context, actor domain.Actor, status domain.OrderStatus) ([]domain.Order, error) {
	filter := repository.OrderFilter{Status: status}
	if !actor.IsAdmin() {
		filter.UserID = actor.ID
	}
	return s.orders.FindAll(ctx, filter)
}

func (s *OrderService) UpdateOrder(ctx context.Context, id uint64, in UpdateOrderInput, actor domain.Actor) (*domain.Order, error) {
	order, err := s.findOne(ctx, id, actor, false)
	if err != nil {
		return nil, err
	}

	if in.Lines != nil {
		if in.TotalAmount == nil {
			return nil, fmt.Errorf("%w: total amount required when updating products", domain.ErrTotalMismatch)
		}
		lines, err := s.snapshotLines(ctx, in.Lines, *in.TotalAmount)
		if err != nil {
			return nil, err
		}
		order.Lines = lines
		order.TotalAmount = domain.LinesTotal(lines)
	}
	if in.Status != nil {
		if !order.Status.CanTransition(*in.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, *in.Status)
		}
		order.Status = *in.Status
	}
	if in.PaymentMethod != nil {
		order.PaymentMethod = *in.PaymentMethod
	}
	if in.DeliveryTime != nil {
		order.DeliveryTime = in.DeliveryTime
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	go s.fanOut(order, actor.ID, domain.ActionUpdateOrder, domain.EventOrderUpdated,
		fmt.Sprintf("Your order #%d has been updated.", order.ID),
		fmt.Sprintf("Order #%d updated by user %d.", order.ID, actor.ID))

	return order, nil
}

// UpdateMany applies each patch independently, collecting successes.
// Per-item failures are logged and skipped; the call fails only when
// nothing succeeded.
func (s *OrderService) UpdateMany(ctx context.Context, patches []OrderPatch, actor domain.Actor) ([]domain.Order, error) {
	var updated []domain.Order
	for _, p := range patches {
		order, err := s.UpdateOrder(ctx, p.ID, p.Data, actor)
		if err != nil {
			log.Printf("bulk update error for order %d: %v", p.ID, err)
			continue
		}
		updated = append(updated, *order)
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("%w: no orders found to update", domain.ErrNotFound)
	}
	return updated, nil
}

// CancelOrder soft-deletes the order. Stock consumed by the order is
// not returned; restocking on cancellation is a business decision left
// to the caller via the inventory Release operation.
func (s *OrderService) CancelOrder(ctx context.Context, id uint64, actor domain.Actor) error {
	order, err := s.findOne(ctx, id, actor, false)
	if err != nil {
		return err
	}

	now := time.Now()
	order.DeletedAt = &now
	if !order.Status.Terminal() {
		order.Status = domain.StatusCancelled
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return err
	}

	go s.fanOut(order, actor.ID, domain.ActionDeleteOrder, domain.EventOrderCancelled,
		fmt.Sprintf("Your order #%d has been canceled.", order.ID),
		fmt.Sprintf("Order #%d has been canceled by user %d.", order.ID, actor.ID))

	return nil
}

func (s *OrderService) BulkCancel(ctx context.Context, ids []uint64, actor domain.Actor) ([]uint64, error) {
	var deleted []uint64
	for _, id := range ids {
		if err := s.CancelOrder(ctx, id, actor); err != nil {
			log.Printf("bulk cancel error for order %d: %v", id, err)
			continue
		}
		deleted = append(deleted, id)
	}
	if len(deleted) == 0 {
		return nil, fmt.Errorf("%w: no orders found to delete", domain.ErrNotFound)
	}
	return deleted, nil
}

// RestoreOrder clears the soft-delete timestamp. The status is left as
// it was; deletion is orthogonal to the lifecycle.
func (s *OrderService) RestoreOrder(ctx context.Context, id uint64, actor domain.Actor) (*domain.Order, error) {
	order, err := s.findOne(ctx, id, actor, true)
	if err != nil {
		return nil, err
	}
	if order.DeletedAt == nil {
		return order, nil
	}

	order.DeletedAt = nil
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	go s.fanOut(order, actor.ID, domain.ActionRestoreOrder, domain.EventOrderUpdated,
		fmt.Sprintf("Your order #%d has been restored.", order.ID),
		fmt.Sprintf("Order #%d restored by user %d.", order.ID, actor.ID))

	return order, nil
}

func (s *OrderService) BulkRestore(ctx context.Context, ids []uint64, actor domain.Actor) ([]uint64, error) {
	var restored []uint64
	for _, id := range ids {
		if _, err := s.RestoreOrder(ctx, id, actor); err != nil {
			log.Printf("bulk restore error for order %d: %v", id, err)
			continue
		}
		restored = append(restored, id)
	}
	if len(restored) == 0 {
		return nil, fmt.Errorf("%w: no orders found to restore", domain.ErrNotFound)
	}
	return restored, nil
}

// fanOut runs the post-commit side effects: user and admin
// notifications, the audit record and the lifecycle event. It runs
// detached from the request with its own context, and every failure is
// logged rather than surfaced; the order is already durable.
func (s *OrderService) fanOut(order *domain.Order, actorID uint64, action, pattern, userMsg, adminMsg string) {
	ctx := context.Background()

	if s.notifier != nil {
		if _, err := s.notifier.NotifyUser(ctx, order.UserID, userMsg, domain.NotificationOrderUpdate); err != nil {
			log.Printf("failed to notify user %d for order %d: %v", order.UserID, order.ID, err)
		}
		if err := s.notifier.NotifyAdmins(ctx, adminMsg, domain.NotificationOrderUpdate); err != nil {
			log.Printf("failed to notify admins for order %d: %v", order.ID, err)
		}
	}

	if s.auditor != nil {
		details := map[string]any{"orderId": order.ID, "userId": order.UserID, "actorId": actorID}
		if err := s.auditor.Record(ctx, actorID, action, details); err != nil {
			log.Printf("failed to record %s audit entry for order %d: %v", action, order.ID, err)
		}
	}

	if s.publisher != nil {
		evt := domain.OrderEvent{
			OrderID:   order.ID,
			UserID:    order.UserID,
			Status:    order.Status,
			CreatedAt: time.Now(),
		}
		if err := s.publisher.Publish(ctx, pattern, evt); err != nil {
			log.Printf("failed to publish %s event for order %d: %v", pattern, order.ID, err)
		}
	}
}
