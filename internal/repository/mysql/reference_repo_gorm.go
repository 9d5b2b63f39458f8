package mysql

import (
	"context"
	"errors"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/repository"

	"gorm.io/gorm"
)

type referenceRepo struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) repository.ReferenceRepository {
	return &referenceRepo{db: db}
}

func (r *referenceRepo) FindUser(ctx context.Context, id uint64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *referenceRepo) FindCity(ctx context.Context, id uint64) (*domain.City, error) {
	var c domain.City
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *referenceRepo) FindArea(ctx context.Context, id uint64) (*domain.Area, error) {
	var a domain.Area
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *referenceRepo) FindAdmins(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	if err := r.db.WithContext(ctx).Where("role = ?", domain.RoleAdmin).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
