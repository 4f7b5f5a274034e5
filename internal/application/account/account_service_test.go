package account

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfinance/backend/internal/domain/account"
	"github.com/openfinance/backend/internal/domain/consent"
	"github.com/openfinance/backend/internal/domain/shared"
)

type fakeReader struct {
	accounts     map[string]account.Snapshot
	balances     map[string][]account.BalanceSnapshot
	listCalls    int
	detailCalls  int
	balanceCalls int
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		accounts: make(map[string]account.Snapshot),
		balances: make(map[string][]account.BalanceSnapshot),
	}
}

func (f *fakeReader) AccountsForSubject(ctx context.Context, subjectID string) ([]account.Snapshot, error) {
	f.listCalls++
	var out []account.Snapshot
	for _, snap := range f.accounts {
		if snap.SubjectID == subjectID {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (f *fakeReader) AccountByID(ctx context.Context, accountID string) (*account.Snapshot, error) {
	f.detailCalls++
	if snap, ok := f.accounts[accountID]; ok {
		return &snap, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeReader) BalancesForAccount(ctx context.Context, accountID string) ([]account.BalanceSnapshot, error) {
	f.balanceCalls++
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

type accountFixture struct {
	service  *Service
	reader   *fakeReader
	consents *fakeConsentRepo
	now      time.Time
}

const cacheTTL = 5 * time.Minute

func newFixture(t *testing.T) *accountFixture {
	f := &accountFixture{
		reader:   newFakeReader(),
		consents: &fakeConsentRepo{consents: make(map[string]*consent.Context)},
		now:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	f.service = NewService(f.reader, f.consents, cacheTTL, 100)
	f.service.now = func() time.Time { return f.now }

	f.reader.accounts["ACC-1"] = account.Snapshot{
		AccountID:    "ACC-1",
		SubjectID:    "CUST-001",
		AccountType:  "CURRENT",
		Currency:     "AED",
		Status:       "ACTIVE",
		LastModified: f.now.Add(-time.Hour),
	}
	f.reader.accounts["ACC-2"] = account.Snapshot{
		AccountID:    "ACC-2",
		SubjectID:    "CUST-001",
		AccountType:  "SAVINGS",
		Currency:     "AED",
		Status:       "ACTIVE",
		LastModified: f.now.Add(-time.Hour),
	}
	f.reader.accounts["ACC-9"] = account.Snapshot{
		AccountID:    "ACC-9",
		SubjectID:    "CUST-999",
		AccountType:  "CURRENT",
		Currency:     "AED",
		Status:       "ACTIVE",
		LastModified: f.now.Add(-time.Hour),
	}
	f.reader.balances["ACC-1"] = []account.BalanceSnapshot{
		{AccountID: "ACC-1", Type: "AVAILABLE", Amount: decimal.RequireFromString("2500.00"), Currency: "AED", LastModified: f.now.Add(-time.Hour)},
	}

	c, err := consent.NewContext(
		"CONS-1", "TPP-001", "CUST-001",
		[]string{"ReadAccounts", "ReadBalances"},
		[]string{"ACC-1"},
		f.now.Add(24*time.Hour),
	)
	require.NoError(t, err)
	require.NoError(t, f.consents.Save(context.Background(), c))
	return f
}

func query(accountID string) ReadQuery {
	return ReadQuery{ConsentID: "CONS-1", ParticipantID: "TPP-001", AccountID: accountID}
}

func TestListAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("returns only consent-linked accounts", func(t *testing.T) {
		f := newFixture(t)

		result, err := f.service.ListAccounts(ctx, query(""))
		require.NoError(t, err)

		require.Len(t, result.Accounts, 1)
		assert.Equal(t, "ACC-1", result.Accounts[0].AccountID)
		assert.False(t, result.CacheHit)
		assert.NotEmpty(t, result.ETag)
	})

	t.Run("second read is a cache hit", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.ListAccounts(ctx, query(""))
		require.NoError(t, err)

		result, err := f.service.ListAccounts(ctx, query(""))
		require.NoError(t, err)
		assert.True(t, result.CacheHit)
		assert.Equal(t, 1, f.reader.listCalls)
	})

	t.Run("expired entry refetches from the reader", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.ListAccounts(ctx, query(""))
		require.NoError(t, err)

		f.now = f.now.Add(cacheTTL)
		result, err := f.service.ListAccounts(ctx, query(""))
		require.NoError(t, err)
		assert.False(t, result.CacheHit)
		assert.Equal(t, 2, f.reader.listCalls)
	})

	t.Run("matching If-None-Match short-circuits", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.service.ListAccounts(ctx, query(""))
		require.NoError(t, err)

		q := query("")
		q.IfNoneMatch = first.ETag
		second, err := f.service.ListAccounts(ctx, q)
		require.NoError(t, err)
		assert.True(t, second.NotModified)
		assert.Equal(t, first.ETag, second.ETag)
	})

	t.Run("unknown consent is forbidden", func(t *testing.T) {
		f := newFixture(t)
		q := query("")
		q.ConsentID = "CONS-missing"

		_, err := f.service.ListAccounts(ctx, q)
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeForbidden))
		assert.Zero(t, f.reader.listCalls)
	})

	t.Run("consent expiry is enforced on cached entries", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.ListAccounts(ctx, query(""))
		require.NoError(t, err)

		f.consents.consents["CONS-1"].ExpiresAt = f.now
		_, err = f.service.ListAccounts(ctx, query(""))
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeForbidden))
	})
}

func TestGetAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("miss then hit cycle", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.service.GetAccount(ctx, query("ACC-1"))
		require.NoError(t, err)
		assert.False(t, first.CacheHit)

		second, err := f.service.GetAccount(ctx, query("ACC-1"))
		require.NoError(t, err)
		assert.True(t, second.CacheHit)
		assert.Equal(t, first.ETag, second.ETag)
		assert.Equal(t, 1, f.reader.detailCalls)
	})

	t.Run("unlinked account is forbidden not missing", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.GetAccount(ctx, query("ACC-2"))
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeForbidden))
		assert.Contains(t, err.Error(), "Resource not linked to consent")
		assert.Zero(t, f.reader.detailCalls)
	})

	t.Run("consent of another participant is forbidden", func(t *testing.T) {
		f := newFixture(t)
		q := query("ACC-1")
		q.ParticipantID = "TPP-999"

		_, err := f.service.GetAccount(ctx, q)
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeForbidden))
	})

	t.Run("linked but nonexistent account is not found", func(t *testing.T) {
		f := newFixture(t)
		c := f.consents.consents["CONS-1"]
		c.ResourceIDs = consent.NewStringSet("ACC-1", "ACC-gone")

		_, err := f.service.GetAccount(ctx, query("ACC-gone"))
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeNotFound))
	})

	t.Run("linked account of another subject stays forbidden", func(t *testing.T) {
		f := newFixture(t)
		c := f.consents.consents["CONS-1"]
		c.ResourceIDs = consent.NewStringSet("ACC-1", "ACC-9")

		_, err := f.service.GetAccount(ctx, query("ACC-9"))
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeForbidden))
	})

	t.Run("If-None-Match with stale etag returns full body", func(t *testing.T) {
		f := newFixture(t)
		q := query("ACC-1")
		q.IfNoneMatch = `"stale"`

		result, err := f.service.GetAccount(ctx, q)
		require.NoError(t, err)
		assert.False(t, result.NotModified)
	})
}

func TestGetBalances(t *testing.T) {
	ctx := context.Background()

	t.Run("returns balances with etag", func(t *testing.T) {
		f := newFixture(t)

		result, err := f.service.GetBalances(ctx, query("ACC-1"))
		require.NoError(t, err)

		require.Len(t, result.Balances, 1)
		assert.True(t, result.Balances[0].Amount.Equal(decimal.RequireFromString("2500.00")))
		assert.False(t, result.CacheHit)
		assert.NotEmpty(t, result.ETag)
	})

	t.Run("cache hit with conditional read", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.service.GetBalances(ctx, query("ACC-1"))
		require.NoError(t, err)

		q := query("ACC-1")
		q.IfNoneMatch = first.ETag
		second, err := f.service.GetBalances(ctx, q)
		require.NoError(t, err)
		assert.True(t, second.CacheHit)
		assert.True(t, second.NotModified)
		assert.Equal(t, 1, f.reader.balanceCalls)
	})

	t.Run("requires the balances scope", func(t *testing.T) {
		f := newFixture(t)
		c, err := consent.NewContext(
			"CONS-2", "TPP-001", "CUST-001",
			[]string{"ReadAccounts"},
			[]string{"ACC-1"},
			f.now.Add(24*time.Hour),
		)
		require.NoError(t, err)
		require.NoError(t, f.consents.Save(ctx, c))

		q := query("ACC-1")
		q.ConsentID = "CONS-2"
		_, err = f.service.GetBalances(ctx, q)
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeForbidden))
	})
}

func TestInvalidateAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.service.GetBalances(ctx, query("ACC-1"))
	require.NoError(t, err)

	f.service.InvalidateAccount("ACC-1", "CUST-001")

	result, err := f.service.GetBalances(ctx, query("ACC-1"))
	require.NoError(t, err)
	assert.False(t, result.CacheHit)
	assert.Equal(t, 2, f.reader.balanceCalls)
}
