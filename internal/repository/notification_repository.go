package repository

import (
	"context"

	"fulfillment-service/internal/domain"
)

type NotificationRepository interface {
	Save(ctx context.Context, n *domain.Notification) error
	// UpdateDeliveryFlags persists the per-channel outcome flags of an
	// already saved notification.
	UpdateDeliveryFlags(ctx context.Context, n *domain.Notification) error
	FindByUser(ctx context.Context, userID uint64) ([]domain.Notification, error)
	// MarkRead flips is_read on the user's own notification; returns
	// domain.ErrNotFound when no row matched.
	MarkRead(ctx context.Context, id, userID uint64) error
}
