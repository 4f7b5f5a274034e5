package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openfinance/backend/internal/domain/onboarding"
	"github.com/openfinance/backend/internal/domain/shared"
)

// GormOnboardingRepository implements onboarding.Repository using GORM
type GormOnboardingRepository struct {
	db *gorm.DB
}

// NewGormOnboardingRepository creates a new GormOnboardingRepository
func NewGormOnboardingRepository(db *gorm.DB) *GormOnboardingRepository {
	return &GormOnboardingRepository{db: db}
}

// Save persists an onboarding account
func (r *GormOnboardingRepository) Save(ctx context.Context, account *onboarding.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// FindByAccountID finds an account by its public account ID
func (r *GormOnboardingRepository) FindByAccountID(ctx context.Context, accountID string) (*onboarding.Account, error) {
	var account onboarding.Account
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByNationalIDHash finds an account by the applicant fingerprint.
// Returns nil when no account exists for the applicant.
func (r *GormOnboardingRepository) FindByNationalIDHash(ctx context.Context, hash string) (*onboarding.Account, error) {
	var account onboarding.Account
	if err := r.db.WithContext(ctx).
		Where("national_id_hash = ?", hash).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// Ensure GormOnboardingRepository implements onboarding.Repository
var _ onboarding.Repository = (*GormOnboardingRepository)(nil)
