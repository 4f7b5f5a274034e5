package account

import (
	"context"
	"errors"
	"time"

	"github.com/openfinance/backend/internal/domain/account"
	"github.com/openfinance/backend/internal/domain/consent"
	"github.com/openfinance/backend/internal/domain/shared"
	"github.com/openfinance/backend/internal/infrastructure/cache"
)

const (
	ScopeReadAccounts = "ReadAccounts"
	ScopeReadBalances = "ReadBalances"
)

// ReadQuery identifies one conditional account information read
type ReadQuery struct {
	ConsentID     string
	ParticipantID string
	AccountID     string
	IfNoneMatch   string
}

// AccountListResult is the outcome of listing the accounts a consent covers
type AccountListResult struct {
	Accounts    []account.Snapshot `json:"accounts"`
	ETag        string             `json:"-"`
	CacheHit    bool               `json:"-"`
	NotModified bool               `json:"-"`
}

// AccountResult is the outcome of reading a single account
type AccountResult struct {
	Account     account.Snapshot `json:"account"`
	ETag        string           `json:"-"`
	CacheHit    bool             `json:"-"`
	NotModified bool             `json:"-"`
}

// BalancesResult is the outcome of reading the balances of one account
type BalancesResult struct {
	AccountID   string                    `json:"account_id"`
	Balances    []account.BalanceSnapshot `json:"balances"`
	ETag        string                    `json:"-"`
	CacheHit    bool                      `json:"-"`
	NotModified bool                      `json:"-"`
}

// Service serves account information reads behind consent authorization and
// a cache-aside layer. Authorization runs on every request, cached or not,
// so a consent revoked or expired mid-TTL stops serving immediately.
type Service struct {
	reader   account.Reader
	consents consent.Repository
	accounts *cache.ReadCache[[]account.Snapshot]
	details  *cache.ReadCache[account.Snapshot]
	balances *cache.ReadCache[[]account.BalanceSnapshot]
	now      func() time.Time
}

// NewService creates a new account information Service
func NewService(reader account.Reader, consents consent.Repository, ttl time.Duration, maxEntries int) *Service {
	return &Service{
		reader:   reader,
		consents: consents,
		accounts: cache.NewReadCache[[]account.Snapshot](ttl, maxEntries),
		details:  cache.NewReadCache[account.Snapshot](ttl, maxEntries),
		balances: cache.NewReadCache[[]account.BalanceSnapshot](ttl, maxEntries),
		now:      time.Now,
	}
}

func (s *Service) authorize(ctx context.Context, q ReadQuery, scope string, now time.Time) (*consent.Context, error) {
	if q.ConsentID == "" {
		return nil, shared.NewForbidden("Consent not found")
	}
	c, err := s.consents.FindByID(ctx, q.ConsentID)
	if err != nil {
		return nil, err
	}
	if err := consent.Authorize(c, scope, q.AccountID, q.ParticipantID, now); err != nil {
		return nil, err
	}
	return c, nil
}

// ListAccounts returns the accounts of the consent's subject that the
// consent links, served cache-aside per subject.
func (s *Service) ListAccounts(ctx context.Context, q ReadQuery) (*AccountListResult, error) {
	now := s.now()
	q.AccountID = ""
	c, err := s.authorize(ctx, q, ScopeReadAccounts, now)
	if err != nil {
		return nil, err
	}

	key := "accounts\x00" + c.SubjectID
	snapshots, hit := s.accounts.Get(key, now)
	if !hit {
		snapshots, err = s.reader.AccountsForSubject(ctx, c.SubjectID)
		if err != nil {
			return nil, err
		}
		s.accounts.Put(key, snapshots, now)
	}

	linked := make([]account.Snapshot, 0, len(snapshots))
	for _, snap := range snapshots {
		if c.Covers(snap.AccountID) {
			linked = append(linked, snap)
		}
	}

	result := &AccountListResult{
		Accounts: linked,
		ETag:     account.FingerprintAccounts(linked),
		CacheHit: hit,
	}
	if q.IfNoneMatch != "" && q.IfNoneMatch == result.ETag {
		result.NotModified = true
	}
	return result, nil
}

// GetAccount returns one account snapshot. The consent must link the account
// id, so an account held by another subject only ever reads as forbidden.
func (s *Service) GetAccount(ctx context.Context, q ReadQuery) (*AccountResult, error) {
	now := s.now()
	c, err := s.authorize(ctx, q, ScopeReadAccounts, now)
	if err != nil {
		return nil, err
	}

	key := "account\x00" + q.AccountID
	snap, hit := s.details.Get(key, now)
	if !hit {
		loaded, err := s.reader.AccountByID(ctx, q.AccountID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewNotFound("Account not found")
			}
			return nil, err
		}
		snap = *loaded
		s.details.Put(key, snap, now)
	}
	if snap.SubjectID != c.SubjectID {
		return nil, shared.NewForbidden("Resource not linked to consent")
	}

	result := &AccountResult{
		Account:  snap,
		ETag:     snap.Fingerprint(),
		CacheHit: hit,
	}
	if q.IfNoneMatch != "" && q.IfNoneMatch == result.ETag {
		result.NotModified = true
	}
	return result, nil
}

// GetBalances returns the balances of one account under the same
// authorization and caching rules as GetAccount.
func (s *Service) GetBalances(ctx context.Context, q ReadQuery) (*BalancesResult, error) {
	now := s.now()
	c, err := s.authorize(ctx, q, ScopeReadBalances, now)
	if err != nil {
		return nil, err
	}

	detailKey := "account\x00" + q.AccountID
	snap, detailHit := s.details.Get(detailKey, now)
	if !detailHit {
		loaded, err := s.reader.AccountByID(ctx, q.AccountID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewNotFound("Account not found")
			}
			return nil, err
		}
		snap = *loaded
		s.details.Put(detailKey, snap, now)
	}
	if snap.SubjectID != c.SubjectID {
		return nil, shared.NewForbidden("Resource not linked to consent")
	}

	key := "balances\x00" + q.AccountID
	balances, hit := s.balances.Get(key, now)
	if !hit {
		balances, err = s.reader.BalancesForAccount(ctx, q.AccountID)
		if err != nil {
			return nil, err
		}
		s.balances.Put(key, balances, now)
	}

	result := &BalancesResult{
		AccountID: q.AccountID,
		Balances:  balances,
		ETag:      account.FingerprintBalances(q.AccountID, balances),
		CacheHit:  hit,
	}
	if q.IfNoneMatch != "" && q.IfNoneMatch == result.ETag {
		result.NotModified = true
	}
	return result, nil
}

// InvalidateAccount drops cached entries for an account after an upstream
// change notification.
func (s *Service) InvalidateAccount(accountID, subjectID string) {
	s.details.Invalidate("account\x00" + accountID)
	s.balances.Invalidate("balances\x00" + accountID)
	if subjectID != "" {
		s.accounts.Invalidate("accounts\x00" + subjectID)
	}
}

// CacheStats reports aggregate hit and miss counts across the read caches
func (s *Service) CacheStats() (hits, misses int64) {
	for _, stats := range []func() (int64, int64){s.accounts.Stats, s.details.Stats, s.balances.Stats} {
		h, m := stats()
		hits += h
		misses += m
	}
	return hits, misses
}
