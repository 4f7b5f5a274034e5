package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openfinance/backend/internal/domain/fx"
	"github.com/openfinance/backend/internal/domain/shared"
)

// GormFxDealRepository implements fx.Repository using GORM
type GormFxDealRepository struct {
	db *gorm.DB
}

// NewGormFxDealRepository creates a new GormFxDealRepository
func NewGormFxDealRepository(db *gorm.DB) *GormFxDealRepository {
	return &GormFxDealRepository{db: db}
}

// Save persists an FX deal
func (r *GormFxDealRepository) Save(ctx context.Context, deal *fx.Deal) error {
	return r.db.WithContext(ctx).Save(deal).Error
}

// FindByDealID finds a deal by its public deal ID
func (r *GormFxDealRepository) FindByDealID(ctx context.Context, dealID string) (*fx.Deal, error) {
	var deal fx.Deal
	if err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		First(&deal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &deal, nil
}

// FindByDealIDForParticipant finds a deal scoped to its owning TPP
func (r *GormFxDealRepository) FindByDealIDForParticipant(ctx context.Context, dealID, participantID string) (*fx.Deal, error) {
	var deal fx.Deal
	if err := r.db.WithContext(ctx).
		Where("deal_id = ? AND participant_id = ?", dealID, participantID).
		First(&deal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &deal, nil
}

// Ensure GormFxDealRepository implements fx.Repository
var _ fx.Repository = (*GormFxDealRepository)(nil)
