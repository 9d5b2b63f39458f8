package repository

import (
	"context"

	"fulfillment-service/internal/domain"
)

type AuditLogRepository interface {
	// Append writes a new audit row. Rows are never updated or deleted.
	Append(ctx context.Context, entry *domain.AuditLog) error
	FindAll(ctx context.Context) ([]domain.AuditLog, error)
	FindByUser(ctx context.Context, userID uint64) ([]domain.AuditLog, error)
}
