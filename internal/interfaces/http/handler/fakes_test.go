package handler

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openfinance/backend/internal/domain/account"
	"github.com/openfinance/backend/internal/domain/consent"
	"github.com/openfinance/backend/internal/domain/fx"
	"github.com/openfinance/backend/internal/domain/onboarding"
	"github.com/openfinance/backend/internal/domain/payment"
	"github.com/openfinance/backend/internal/domain/shared"
)

type fakeIdempotencyStore struct {
	records map[string]*shared.IdempotencyRecord
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{records: make(map[string]*shared.IdempotencyRecord)}
}

func (f *fakeIdempotencyStore) Find(ctx context.Context, key, participantID string, now time.Time) (*shared.IdempotencyRecord, error) {
	rec, ok := f.records[key+"\x00"+participantID]
	if !ok || rec.IsExpired(now) {
		return nil, nil
	}
	return rec, nil
}

func (f *fakeIdempotencyStore) Save(ctx context.Context, rec *shared.IdempotencyRecord) error {
	f.records[rec.Key+"\x00"+rec.ParticipantID] = rec
	return nil
}

func (f *fakeIdempotencyStore) Close() error { return nil }

type fakePublisher struct {
	events []shared.DomainEvent
}

func (f *fakePublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	f.events = append(f.events, events...)
	return nil
}

type fakePaymentRepo struct {
	saved map[string]*payment.Transaction
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{saved: make(map[string]*payment.Transaction)}
}

func (f *fakePaymentRepo) Save(ctx context.Context, tx *payment.Transaction) error {
	f.saved[tx.PaymentID] = tx
	return nil
}

func (f *fakePaymentRepo) FindByPaymentID(ctx context.Context, paymentID string) (*payment.Transaction, error) {
	if tx, ok := f.saved[paymentID]; ok {
		return tx, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakePaymentRepo) FindByPaymentIDForParticipant(ctx context.Context, participantID, paymentID string) (*payment.Transaction, error) {
	if tx, ok := f.saved[paymentID]; ok && tx.ParticipantID == participantID {
		return tx, nil
	}
	return nil, shared.ErrNotFound
}

type fakePaymentConsentRepo struct {
	consents map[string]*payment.Consent
}

func (f *fakePaymentConsentRepo) FindByID(ctx context.Context, consentID string) (*payment.Consent, error) {
	return f.consents[consentID], nil
}

func (f *fakePaymentConsentRepo) Save(ctx context.Context, c *payment.Consent) error {
	f.consents[c.ConsentID] = c
	return nil
}

type fakeRisk struct {
	decision payment.RiskDecision
}

func (f *fakeRisk) Assess(ctx context.Context, init payment.Initiation, participantID string) (payment.RiskDecision, error) {
	return f.decision, nil
}

type fakeFunds struct {
	available bool
}

func (f *fakeFunds) Reserve(ctx context.Context, debtorAccountID string, amount decimal.Decimal, currency, reference string) (bool, error) {
	return f.available, nil
}

type fakeSignature struct {
	valid bool
}

func (f *fakeSignature) Validate(ctx context.Context, payload, signature string) (bool, error) {
	return f.valid, nil
}

type fakeDealRepo struct {
	saved map[string]*fx.Deal
}

func newFakeDealRepo() *fakeDealRepo {
	return &fakeDealRepo{saved: make(map[string]*fx.Deal)}
}

func (f *fakeDealRepo) Save(ctx context.Context, deal *fx.Deal) error {
	f.saved[deal.DealID] = deal
	return nil
}

func (f *fakeDealRepo) FindByDealID(ctx context.Context, dealID string) (*fx.Deal, error) {
	if deal, ok := f.saved[dealID]; ok {
		return deal, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeDealRepo) FindByDealIDForParticipant(ctx context.Context, dealID, participantID string) (*fx.Deal, error) {
	if deal, ok := f.saved[dealID]; ok && deal.ParticipantID == participantID {
		return deal, nil
	}
	return nil, shared.ErrNotFound
}

type fakeRateLookup struct {
	rates map[string]decimal.Decimal
}

func (f *fakeRateLookup) Rate(ctx context.Context, sellCurrency, buyCurrency string) (decimal.Decimal, bool, error) {
	rate, ok := f.rates[sellCurrency+"/"+buyCurrency]
	return rate, ok, nil
}

type fakeAccountRepo struct {
	saved map[string]*onboarding.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{saved: make(map[string]*onboarding.Account)}
}

func (f *fakeAccountRepo) Save(ctx context.Context, a *onboarding.Account) error {
	f.saved[a.AccountID] = a
	return nil
}

func (f *fakeAccountRepo) FindByAccountID(ctx context.Context, accountID string) (*onboarding.Account, error) {
	if a, ok := f.saved[accountID]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeAccountRepo) FindByNationalIDHash(ctx context.Context, hash string) (*onboarding.Account, error) {
	for _, a := range f.saved {
		if a.NationalIDHash == hash {
			return a, nil
		}
	}
	return nil, nil
}

type fakeDecrypter struct{}

func (fakeDecrypter) Decrypt(ctx context.Context, ciphertext string) ([]byte, error) {
	return []byte(ciphertext), nil
}

type fakeScreening struct {
	result onboarding.ScreeningResult
}

func (f *fakeScreening) Screen(ctx context.Context, fullName, nationalID string) (onboarding.ScreeningResult, error) {
	return f.result, nil
}

type fakeReader struct {
	accounts map[string]account.Snapshot
	balances map[string][]account.BalanceSnapshot
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		accounts: make(map[string]account.Snapshot),
		balances: make(map[string][]account.BalanceSnapshot),
	}
}

func (f *fakeReader) AccountsForSubject(ctx context.Context, subjectID string) ([]account.Snapshot, error) {
	var out []account.Snapshot
	for _, snap := range f.accounts {
		if snap.SubjectID == subjectID {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (f *fakeReader) AccountByID(ctx context.Context, accountID string) (*account.Snapshot, error) {
	if snap, ok := f.accounts[accountID]; ok {
		return &snap, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeReader) BalancesForAccount(ctx context.Context, accountID string) ([]account.BalanceSnapshot, error) {
	return f.balances[accountID], nil
}

type fakeConsentRepo struct {
	consents map[string]*consent.Context
}

func (f *fakeConsentRepo) FindByID(ctx context.Context, consentID string) (*consent.Context, error) {
	return f.consents[consentID], nil
}

func (f *fakeConsentRepo) Save(ctx context.Context, c *consent.Context) error {
	f.consents[c.ConsentID] = c
	return nil
}
