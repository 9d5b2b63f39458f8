package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

type Handler struct {
	orders        *services.OrderService
	notifications *services.NotificationService
	pricing       *services.PricingService
	rdb           *redis.Client
}

func NewHandler(orders *services.OrderService, notifications *services.NotificationService, pricing *services.PricingService, rdb *redis.Client) *Handler {
	return &Handler{orders: orders, notifications: notifications, pricing: pricing, rdb: rdb}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.PATCH("/orders/:id", h.UpdateOrder)
	r.PATCH("/orders", h.BulkUpdate)
	r.DELETE("/orders/:id", h.CancelOrder)
	r.POST("/orders/bulk-delete", h.BulkCancel)
	r.POST("/orders/:id/restore", h.RestoreOrder)
	r.POST("/orders/bulk-restore", h.BulkRestore)
	r.GET("/products/:id/price", h.ProductPrice)
	r.GET("/notifications", h.ListNotifications)
	r.PATCH("/notifications/:id/read", h.MarkNotificationRead)
}

// actor reads the identity the upstream auth layer attached to the
// request. Authentication itself is outside this service.
func actor(c *gin.Context) (domain.Actor, bool) {
	id, err := strconv.ParseUint(c.GetHeader("X-User-ID"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid X-User-ID"})
		return domain.Actor{}, false
	}
	role := c.GetHeader("X-User-Role")
	if role == "" {
		role = domain.RoleCustomer
	}
	return domain.Actor{ID: id, Role: role}, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrTotalMismatch), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func (h *Handler) listCacheKey(a domain.Actor) string {
	if a.IsAdmin() {
		return "orders:all"
	}
	return fmt.Sprintf("orders:user:%d", a.ID)
}

func (h *Handler) invalidateListCache(a domain.Actor) {
	if h.rdb == nil {
		return
	}
	h.rdb.Del(context.Background(), h.listCacheKey(a), "orders:all")
}

func (h *Handler) CreateOrder(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), services.CreateOrderInput{
		UserID:        a.ID,
		CityID:        req.CityID,
		AreaID:        req.AreaID,
		Lines:         toLineInputs(req.Products),
		TotalAmount:   req.TotalAmount,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		DeliveryTime:  req.DeliveryTime,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.invalidateListCache(a)
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	status := c.Query("status")
	if status != "" && !domain.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + status})
		return
	}

	ctx := c.Request.Context()
	cacheKey := h.listCacheKey(a)
	if h.rdb != nil && status == "" {
		if b, err := h.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var orders []domain.Order
			if json.Unmarshal([]byte(b), &orders) == nil {
				c.JSON(http.StatusOK, orders)
				return
			}
		}
	}

	orders, err := h.orders.ListOrders(ctx, a, domain.OrderStatus(status))
	if err != nil {
		h.fail(c, err)
		return
	}

	if h.rdb != nil && status == "" {
		if data, err := json.Marshal(orders); err == nil {
			h.rdb.Set(ctx, cacheKey, data, 10*time.Second)
		}
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id, a)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.UpdateOrder(c.Request.Context(), id, req.toInput(), a)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.invalidateListCache(a)
	c.JSON(http.StatusOK, order)
}

func (h *Handler) BulkUpdate(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patches := make([]services.OrderPatch, 0, len(req.Updates))
	for _, u := range req.Updates {
		patches = append(patches, services.OrderPatch{ID: u.ID, Data: u.Data.toInput()})
	}
	orders, err := h.orders.UpdateMany(c.Request.Context(), patches, a)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.invalidateListCache(a)
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	if err := h.orders.CancelOrder(c.Request.Context(), id, a); err != nil {
		h.fail(c, err)
		return
	}
	h.invalidateListCache(a)
	c.Status(http.StatusNoContent)
}

func (h *Handler) BulkCancel(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	deleted, err := h.orders.BulkCancel(c.Request.Context(), req.IDs, a)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.invalidateListCache(a)
	c.JSON(http.StatusOK, gin.H{"deletedIds": deleted})
}

func (h *Handler) RestoreOrder(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	order, err := h.orders.RestoreOrder(c.Request.Context(), id, a)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.invalidateListCache(a)
	c.JSON(http.StatusOK, order)
}

func (h *Handler) BulkRestore(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	restored, err := h.orders.BulkRestore(c.Request.Context(), req.IDs, a)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.invalidateListCache(a)
	c.JSON(http.StatusOK, gin.H{"restoredIds": restored})
}

// ProductPrice returns the advisory display price with the product's
// pricing rules applied. Cached briefly: rule windows are hour-grained.
func (h *Handler) ProductPrice(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	ctx := c.Request.Context()
	cacheKey := "price:product:" + c.Param("id")
	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Result(); err == nil {
			c.JSON(http.StatusOK, gin.H{"productId": id, "price": json.RawMessage(cached)})
			return
		}
	}

	price, err := h.pricing.PriceProduct(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.rdb != nil {
		h.rdb.Set(ctx, cacheKey, price.String(), time.Minute)
	}
	c.JSON(http.StatusOK, gin.H{"productId": id, "price": price})
}

func (h *Handler) ListNotifications(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	notifications, err := h.notifications.ListForUser(c.Request.Context(), a.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), id, a.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
