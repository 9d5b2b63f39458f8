package mysql

import (
	"context"
	"log"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/repository"

	"gorm.io/gorm"
)

type auditLogRepo struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) repository.AuditLogRepository {
	return &auditLogRepo{db: db}
}

func (r *auditLogRepo) Append(ctx context.Context, entry *domain.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		log.Printf("audit append error: %v", err)
		return err
	}
	return nil
}

func (r *auditLogRepo) FindAll(ctx context.Context) ([]domain.AuditLog, error) {
	var out []domain.AuditLog
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *auditLogRepo) FindByUser(ctx context.Context, userID uint64) ([]domain.AuditLog, error) {
	var out []domain.AuditLog
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
