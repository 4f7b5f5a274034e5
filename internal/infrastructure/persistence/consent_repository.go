package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openfinance/backend/internal/domain/consent"
)

// GormConsentRepository implements consent.Repository using GORM
type GormConsentRepository struct {
	db *gorm.DB
}

// NewGormConsentRepository creates a new GormConsentRepository
func NewGormConsentRepository(db *gorm.DB) *GormConsentRepository {
	return &GormConsentRepository{db: db}
}

// FindByID returns the consent context or nil when absent. A nil context
// flows into the authorization check as "Consent not found".
func (r *GormConsentRepository) FindByID(ctx context.Context, consentID string) (*consent.Context, error) {
	var c consent.Context
	if err := r.db.WithContext(ctx).
		Where("consent_id = ?", consentID).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// Save stores a consent context
func (r *GormConsentRepository) Save(ctx context.Context, c *consent.Context) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Ensure GormConsentRepository implements consent.Repository
var _ consent.Repository = (*GormConsentRepository)(nil)
