package repository

import (
	"context"

	"fulfillment-service/internal/domain"
)

// ReferenceRepository resolves the entities an order points at. All
// lookups return (nil, nil) when the id does not resolve.
type ReferenceRepository interface {
	FindUser(ctx context.Context, id uint64) (*domain.User, error)
	FindCity(ctx context.Context, id uint64) (*domain.City, error)
	FindArea(ctx context.Context, id uint64) (*domain.Area, error)
	FindAdmins(ctx context.Context) ([]domain.User, error)
}
