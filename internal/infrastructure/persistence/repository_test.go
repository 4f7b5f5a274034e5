package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openfinance/backend/internal/domain/account"
	"github.com/openfinance/backend/internal/domain/consent"
	"github.com/openfinance/backend/internal/domain/fx"
	"github.com/openfinance/backend/internal/domain/onboarding"
	"github.com/openfinance/backend/internal/domain/payment"
	"github.com/openfinance/backend/internal/domain/shared"
	"github.com/openfinance/backend/internal/infrastructure/persistence/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&payment.Transaction{},
		&payment.Consent{},
		&consent.Context{},
		&fx.Deal{},
		&onboarding.Account{},
		&models.AccountModel{},
		&models.BalanceModel{},
	))
	return db
}

func TestGormPaymentRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPaymentRepository(db)

	init := payment.Initiation{
		InstructionID:   "INSTR-001",
		DebtorAccountID: "ACC-1",
		Amount:          decimal.RequireFromString("150.00"),
		Currency:        "AED",
		CreditorAccount: "AE0700001",
		CreditorName:    "Acme",
	}
	tx, err := payment.NewTransaction("TPP-001", "CONSENT-1", init, payment.StatusAcceptedSettlement)
	require.NoError(t, err)
	tx.ClearDomainEvents()

	require.NoError(t, repo.Save(ctx, tx))

	t.Run("find by payment id", func(t *testing.T) {
		found, err := repo.FindByPaymentID(ctx, tx.PaymentID)
		require.NoError(t, err)
		assert.Equal(t, tx.PaymentID, found.PaymentID)
		assert.Equal(t, payment.StatusAcceptedSettlement, found.Status)
		assert.True(t, init.Amount.Equal(found.Amount))
	})

	t.Run("participant scoping", func(t *testing.T) {
		found, err := repo.FindByPaymentIDForParticipant(ctx, "TPP-001", tx.PaymentID)
		require.NoError(t, err)
		assert.Equal(t, tx.PaymentID, found.PaymentID)

		_, err = repo.FindByPaymentIDForParticipant(ctx, "TPP-002", tx.PaymentID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("missing payment", func(t *testing.T) {
		_, err := repo.FindByPaymentID(ctx, "PAY-missing")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("save is an upsert", func(t *testing.T) {
		require.NoError(t, tx.Settle(time.Now()))
		tx.ClearDomainEvents()
		require.NoError(t, repo.Save(ctx, tx))

		found, err := repo.FindByPaymentID(ctx, tx.PaymentID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusSettled, found.Status)
	})
}

func TestGormPaymentConsentRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPaymentConsentRepository(db)

	c := &payment.Consent{
		ConsentID:     "CONSENT-1",
		ParticipantID: "TPP-001",
		MaxAmount:     decimal.RequireFromString("500.00"),
		Currency:      "AED",
		PayeeHash:     payment.HashPayee("AE0700001"),
		ExpiresAt:     time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Save(ctx, c))

	found, err := repo.FindByID(ctx, "CONSENT-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, c.MaxAmount.Equal(found.MaxAmount))

	absent, err := repo.FindByID(ctx, "CONSENT-unknown")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestGormConsentRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormConsentRepository(db)

	c, err := consent.NewContext("CONSENT-1", "TPP-001", "PSU-1",
		[]string{"ReadAccounts"}, []string{"ACC-1"}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	found, err := repo.FindByID(ctx, "CONSENT-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.HasScope("read_accounts"))
	assert.True(t, found.Covers("ACC-1"))

	absent, err := repo.FindByID(ctx, "CONSENT-unknown")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestGormFxDealRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormFxDealRepository(db)

	now := time.Now()
	deal, err := fx.NewQuote("TPP-001", fx.QuoteInputs{
		SellCurrency: "AED",
		BuyCurrency:  "USD",
		SellAmount:   decimal.RequireFromString("1000.00"),
		Rate:         decimal.RequireFromString("0.27229"),
	}, now, 15*time.Minute)
	require.NoError(t, err)
	deal.ClearDomainEvents()

	require.NoError(t, repo.Save(ctx, deal))

	found, err := repo.FindByDealID(ctx, deal.DealID)
	require.NoError(t, err)
	assert.Equal(t, fx.StatusQuoted, found.Status)
	assert.Equal(t, "272.29", found.CounterAmount.StringFixed(2))
	assert.Equal(t, deal.QuoteFingerprint, found.QuoteFingerprint)

	_, err = repo.FindByDealIDForParticipant(ctx, deal.DealID, "TPP-002")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOnboardingRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOnboardingRepository(db)

	acc, err := onboarding.OpenAccount("TPP-001", onboarding.ApplicantProfile{
		FullName:   "Fatima Al Mansoori",
		NationalID: "784-1990-1234567-1",
		Currency:   "AED",
	}, time.Now())
	require.NoError(t, err)
	acc.ClearDomainEvents()

	require.NoError(t, repo.Save(ctx, acc))

	found, err := repo.FindByAccountID(ctx, acc.AccountID)
	require.NoError(t, err)
	assert.Equal(t, onboarding.StatusActive, found.Status)

	byHash, err := repo.FindByNationalIDHash(ctx, acc.NationalIDHash)
	require.NoError(t, err)
	require.NotNil(t, byHash)
	assert.Equal(t, acc.AccountID, byHash.AccountID)

	absent, err := repo.FindByNationalIDHash(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestGormAccountReader(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	reader := NewGormAccountReader(db)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, db.Create(&models.AccountModel{
		AccountID: "ACC-1", SubjectID: "PSU-1", AccountType: "CURRENT",
		Currency: "AED", Status: "ACTIVE", LastModified: now,
	}).Error)
	require.NoError(t, db.Create(&models.AccountModel{
		AccountID: "ACC-2", SubjectID: "PSU-1", AccountType: "SAVINGS",
		Currency: "AED", Status: "ACTIVE", LastModified: now,
	}).Error)
	require.NoError(t, db.Create(&models.BalanceModel{
		AccountID: "ACC-1", BalanceType: "AVAILABLE",
		Amount: decimal.RequireFromString("2500.00"), Currency: "AED", LastModified: now,
	}).Error)

	t.Run("accounts for subject", func(t *testing.T) {
		accounts, err := reader.AccountsForSubject(ctx, "PSU-1")
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		assert.Equal(t, "ACC-1", accounts[0].AccountID)
	})

	t.Run("account by id", func(t *testing.T) {
		snap, err := reader.AccountByID(ctx, "ACC-1")
		require.NoError(t, err)
		assert.Equal(t, "CURRENT", snap.AccountType)

		_, err = reader.AccountByID(ctx, "ACC-404")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("balances for account", func(t *testing.T) {
		balances, err := reader.BalancesForAccount(ctx, "ACC-1")
		require.NoError(t, err)
		require.Len(t, balances, 1)
		assert.Equal(t, "AVAILABLE", balances[0].Type)
		assert.True(t, balances[0].Amount.Equal(decimal.RequireFromString("2500.00")))
	})

	var _ account.Reader = reader
}
