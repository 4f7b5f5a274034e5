package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openfinance/backend/internal/domain/account"
)

// AccountModel is the persistence model for account snapshots. The snapshot
// tables are written by the core banking sync, this service only reads them.
type AccountModel struct {
	AccountID    string    `gorm:"type:varchar(64);primaryKey"`
	SubjectID    string    `gorm:"type:varchar(64);not null;index"`
	AccountType  string    `gorm:"type:varchar(40);not null"`
	Currency     string    `gorm:"type:varchar(3);not null"`
	Status       string    `gorm:"type:varchar(20);not null"`
	Nickname     string    `gorm:"type:varchar(100)"`
	LastModified time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "account_snapshots"
}

// ToDomain converts the model to a domain snapshot
func (m *AccountModel) ToDomain() account.Snapshot {
	return account.Snapshot{
		AccountID:    m.AccountID,
		SubjectID:    m.SubjectID,
		AccountType:  m.AccountType,
		Currency:     m.Currency,
		Status:       m.Status,
		Nickname:     m.Nickname,
		LastModified: m.LastModified,
	}
}

// FromAccountSnapshot converts a domain snapshot to the persistence model
func FromAccountSnapshot(s account.Snapshot) AccountModel {
	return AccountModel{
		AccountID:    s.AccountID,
		SubjectID:    s.SubjectID,
		AccountType:  s.AccountType,
		Currency:     s.Currency,
		Status:       s.Status,
		Nickname:     s.Nickname,
		LastModified: s.LastModified,
	}
}

// BalanceModel is the persistence model for balance snapshots
type BalanceModel struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"`
	AccountID    string          `gorm:"type:varchar(64);not null;index"`
	BalanceType  string          `gorm:"type:varchar(40);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency     string          `gorm:"type:varchar(3);not null"`
	LastModified time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BalanceModel) TableName() string {
	return "balance_snapshots"
}

// ToDomain converts the model to a domain snapshot
func (m *BalanceModel) ToDomain() account.BalanceSnapshot {
	return account.BalanceSnapshot{
		AccountID:    m.AccountID,
		Type:         m.BalanceType,
		Amount:       m.Amount,
		Currency:     m.Currency,
		LastModified: m.LastModified,
	}
}

// FromBalanceSnapshot converts a domain snapshot to the persistence model
func FromBalanceSnapshot(s account.BalanceSnapshot) BalanceModel {
	return BalanceModel{
		AccountID:    s.AccountID,
		BalanceType:  s.Type,
		Amount:       s.Amount,
		Currency:     s.Currency,
		LastModified: s.LastModified,
	}
}
