package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountapp "github.com/openfinance/backend/internal/application/account"
	"github.com/openfinance/backend/internal/domain/account"
	"github.com/openfinance/backend/internal/domain/consent"
	"github.com/openfinance/backend/internal/interfaces/http/middleware"
	"github.com/openfinance/backend/internal/interfaces/http/router"
)

func newAccountEngine(t *testing.T) *gin.Engine {
	t.Helper()

	reader := newFakeReader()
	reader.accounts["ACC-1"] = account.Snapshot{
		AccountID:    "ACC-1",
		SubjectID:    "CUST-001",
		AccountType:  "CURRENT",
		Currency:     "AED",
		Status:       "ACTIVE",
		LastModified: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	reader.balances["ACC-1"] = []account.BalanceSnapshot{
		{AccountID: "ACC-1", Type: "AVAILABLE", Amount: decimal.RequireFromString("2500.00"), Currency: "AED", LastModified: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}

	consents := &fakeConsentRepo{consents: make(map[string]*consent.Context)}
	c, err := consent.NewContext(
		"CONS-1", "TPP-001", "CUST-001",
		[]string{"ReadAccounts", "ReadBalances"},
		[]string{"ACC-1"},
		time.Now().Add(24*time.Hour),
	)
	require.NoError(t, err)
	require.NoError(t, consents.Save(context.Background(), c))

	service := accountapp.NewService(reader, consents, 5*time.Minute, 100)

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.InteractionID(),
		middleware.ParticipantAuthWithConfig(middleware.ParticipantAuthConfig{AllowHeaderFallback: true}),
	)
	router.NewRouter(engine).Register(NewAccountHandler(service)).Setup()
	return engine
}

func accountGet(engine *gin.Engine, path, consentID, ifNoneMatch string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-TPP-ID", "TPP-001")
	req.Header.Set(middleware.HeaderConsentID, consentID)
	if ifNoneMatch != "" {
		req.Header.Set("If-None-Match", ifNoneMatch)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAccountEndpoints(t *testing.T) {
	t.Run("list serves linked accounts with etag", func(t *testing.T) {
		engine := newAccountEngine(t)

		w := accountGet(engine, "/api/v1/accounts", "CONS-1", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "MISS", w.Header().Get(HeaderCache))
		assert.NotEmpty(t, w.Header().Get("ETag"))
		assert.Contains(t, w.Body.String(), "ACC-1")
	})

	t.Run("repeat read is a cache hit", func(t *testing.T) {
		engine := newAccountEngine(t)

		accountGet(engine, "/api/v1/accounts/ACC-1", "CONS-1", "")
		w := accountGet(engine, "/api/v1/accounts/ACC-1", "CONS-1", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "HIT", w.Header().Get(HeaderCache))
	})

	t.Run("matching If-None-Match returns 304 with no body", func(t *testing.T) {
		engine := newAccountEngine(t)

		first := accountGet(engine, "/api/v1/accounts/ACC-1", "CONS-1", "")
		require.Equal(t, http.StatusOK, first.Code)
		etag := first.Header().Get("ETag")
		require.NotEmpty(t, etag)

		second := accountGet(engine, "/api/v1/accounts/ACC-1", "CONS-1", etag)
		require.Equal(t, http.StatusNotModified, second.Code)
		assert.Empty(t, second.Body.String())
		assert.Equal(t, etag, second.Header().Get("ETag"))
	})

	t.Run("balances read", func(t *testing.T) {
		engine := newAccountEngine(t)

		w := accountGet(engine, "/api/v1/accounts/ACC-1/balances", "CONS-1", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "AVAILABLE")
	})

	t.Run("missing consent header is forbidden", func(t *testing.T) {
		engine := newAccountEngine(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
		req.Header.Set("X-TPP-ID", "TPP-001")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unlinked account is forbidden", func(t *testing.T) {
		engine := newAccountEngine(t)

		w := accountGet(engine, "/api/v1/accounts/ACC-2", "CONS-1", "")
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}
