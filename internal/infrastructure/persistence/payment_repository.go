package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openfinance/backend/internal/domain/payment"
	"github.com/openfinance/backend/internal/domain/shared"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save persists a payment transaction
func (r *GormPaymentRepository) Save(ctx context.Context, tx *payment.Transaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

// FindByPaymentID finds a transaction by its public payment ID
func (r *GormPaymentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*payment.Transaction, error) {
	var tx payment.Transaction
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByPaymentIDForParticipant finds a transaction scoped to its owning TPP
func (r *GormPaymentRepository) FindByPaymentIDForParticipant(ctx context.Context, participantID, paymentID string) (*payment.Transaction, error) {
	var tx payment.Transaction
	if err := r.db.WithContext(ctx).
		Where("payment_id = ? AND participant_id = ?", paymentID, participantID).
		First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// Ensure GormPaymentRepository implements payment.Repository
var _ payment.Repository = (*GormPaymentRepository)(nil)

// GormPaymentConsentRepository implements payment.ConsentRepository using GORM
type GormPaymentConsentRepository struct {
	db *gorm.DB
}

// NewGormPaymentConsentRepository creates a new GormPaymentConsentRepository
func NewGormPaymentConsentRepository(db *gorm.DB) *GormPaymentConsentRepository {
	return &GormPaymentConsentRepository{db: db}
}

// FindByID finds a payment consent by its ID. Absent consents return nil so
// the caller classifies the rejection, not the storage layer.
func (r *GormPaymentConsentRepository) FindByID(ctx context.Context, consentID string) (*payment.Consent, error) {
	var consent payment.Consent
	if err := r.db.WithContext(ctx).
		Where("consent_id = ?", consentID).
		First(&consent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consent, nil
}

// Save persists a payment consent
func (r *GormPaymentConsentRepository) Save(ctx context.Context, consent *payment.Consent) error {
	return r.db.WithContext(ctx).Save(consent).Error
}

// Ensure GormPaymentConsentRepository implements payment.ConsentRepository
var _ payment.ConsentRepository = (*GormPaymentConsentRepository)(nil)
