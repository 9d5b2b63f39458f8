package services

import (
	"context"
	"fmt"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/repository"

	"github.com/google/uuid"
)

// Auditor is the orchestrator's view of the audit recorder.
type Auditor interface {
	Record(ctx context.Context, actorID uint64, action string, details map[string]any) error
}

// AuditService appends immutable action records. The actor must resolve
// to a real user; an audit entry never silently records an unknown
// actor.
type AuditService struct {
	logs  repository.AuditLogRepository
	users repository.ReferenceRepository
}

func NewAuditService(logs repository.AuditLogRepository, users repository.ReferenceRepository) *AuditService {
	return &AuditService{logs: logs, users: users}
}

var _ Auditor = (*AuditService)(nil)

func (s *AuditService) Record(ctx context.Context, actorID uint64, action string, details map[string]any) error {
	actor, err := s.users.FindUser(ctx, actorID)
	if err != nil {
		return err
	}
	if actor == nil {
		return fmt.Errorf("%w: actor %d", domain.ErrNotFound, actorID)
	}

	return s.logs.Append(ctx, &domain.AuditLog{
		ID:      uuid.NewString(),
		UserID:  actorID,
		Action:  action,
		Details: details,
	})
}

func (s *AuditService) AllLogs(ctx context.Context) ([]domain.AuditLog, error) {
	return s.logs.FindAll(ctx)
}

func (s *AuditService) LogsByUser(ctx context.Context, userID uint64) ([]domain.AuditLog, error) {
	logs, err := s.logs.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, fmt.Errorf("%w: no logs for user %d", domain.ErrNotFound, userID)
	}
	return logs, nil
}
