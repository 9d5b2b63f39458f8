package mysql

import (
	"context"
	"fmt"
	"log"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/repository"

	"gorm.io/gorm"
)

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Save(ctx context.Context, n *domain.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		log.Printf("notification save error: %v", err)
		return err
	}
	return nil
}

func (r *notificationRepo) UpdateDeliveryFlags(ctx context.Context, n *domain.Notification) error {
	return r.db.WithContext(ctx).Model(n).
		Select("email_sent", "sms_sent", "push_sent").
		Updates(n).Error
}

func (r *notificationRepo) FindByUser(ctx context.Context, userID uint64) ([]domain.Notification, error) {
	var out []domain.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_read ASC, created_at DESC").
		Limit(50).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	result := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: notification %d", domain.ErrNotFound, id)
	}
	return nil
}
