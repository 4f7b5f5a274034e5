package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openfinance/backend/internal/domain/account"
	"github.com/openfinance/backend/internal/domain/shared"
	"github.com/openfinance/backend/internal/infrastructure/persistence/models"
)

// GormAccountReader implements account.Reader over the snapshot tables
type GormAccountReader struct {
	db *gorm.DB
}

// NewGormAccountReader creates a new GormAccountReader
func NewGormAccountReader(db *gorm.DB) *GormAccountReader {
	return &GormAccountReader{db: db}
}

// AccountsForSubject lists account snapshots owned by a PSU
func (r *GormAccountReader) AccountsForSubject(ctx context.Context, subjectID string) ([]account.Snapshot, error) {
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("account_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	snapshots := make([]account.Snapshot, 0, len(rows))
	for i := range rows {
		snapshots = append(snapshots, rows[i].ToDomain())
	}
	return snapshots, nil
}

// AccountByID loads a single account snapshot
func (r *GormAccountReader) AccountByID(ctx context.Context, accountID string) (*account.Snapshot, error) {
	var row models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	snapshot := row.ToDomain()
	return &snapshot, nil
}

// BalancesForAccount lists the balance snapshots of an account
func (r *GormAccountReader) BalancesForAccount(ctx context.Context, accountID string) ([]account.BalanceSnapshot, error) {
	var rows []models.BalanceModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("balance_type").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	balances := make([]account.BalanceSnapshot, 0, len(rows))
	for i := range rows {
		balances = append(balances, rows[i].ToDomain())
	}
	return balances, nil
}

// Ensure GormAccountReader implements account.Reader
var _ account.Reader = (*GormAccountReader)(nil)
