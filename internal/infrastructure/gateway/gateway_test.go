package gateway

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openfinance/backend/internal/domain/payment"
)

func TestHMACSignatureValidator(t *testing.T) {
	ctx := context.Background()
	v := NewHMACSignatureValidator("test-secret")

	t.Run("accepts its own signature", func(t *testing.T) {
		sig := v.Sign(`{"amount":"150.00"}`)
		ok, err := v.Validate(ctx, `{"amount":"150.00"}`, sig)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects signature over different payload", func(t *testing.T) {
		sig := v.Sign(`{"amount":"150.00"}`)
		ok, err := v.Validate(ctx, `{"amount":"151.00"}`, sig)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rejects empty and malformed signatures", func(t *testing.T) {
		ok, err := v.Validate(ctx, "payload", "")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = v.Validate(ctx, "payload", "not-hex!")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rejects signature from different secret", func(t *testing.T) {
		other := NewHMACSignatureValidator("other-secret")
		ok, err := v.Validate(ctx, "payload", other.Sign("payload"))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestThresholdRiskAssessor(t *testing.T) {
	ctx := context.Background()
	assessor := NewThresholdRiskAssessor(decimal.RequireFromString("10000.00"), zap.NewNop())

	t.Run("passes at threshold", func(t *testing.T) {
		decision, err := assessor.Assess(ctx, payment.Initiation{Amount: decimal.RequireFromString("10000.00")}, "TPP-001")
		require.NoError(t, err)
		assert.Equal(t, payment.RiskPass, decision)
	})

	t.Run("rejects above threshold", func(t *testing.T) {
		decision, err := assessor.Assess(ctx, payment.Initiation{Amount: decimal.RequireFromString("10000.01")}, "TPP-001")
		require.NoError(t, err)
		assert.Equal(t, payment.RiskReject, decision)
	})
}

func TestInMemoryFundsReserver(t *testing.T) {
	ctx := context.Background()

	t.Run("reserves within balance", func(t *testing.T) {
		r := NewInMemoryFundsReserver(decimal.Zero)
		r.SetBalance("ACC-1", decimal.RequireFromString("100.00"))

		ok, err := r.Reserve(ctx, "ACC-1", decimal.RequireFromString("60.00"), "AED", "REF-1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = r.Reserve(ctx, "ACC-1", decimal.RequireFromString("60.00"), "AED", "REF-2")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("repeat reference does not double-hold", func(t *testing.T) {
		r := NewInMemoryFundsReserver(decimal.Zero)
		r.SetBalance("ACC-1", decimal.RequireFromString("100.00"))

		for i := 0; i < 3; i++ {
			ok, err := r.Reserve(ctx, "ACC-1", decimal.RequireFromString("80.00"), "AED", "REF-1")
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})

	t.Run("unseeded accounts use the default limit", func(t *testing.T) {
		r := NewInMemoryFundsReserver(decimal.RequireFromString("50.00"))

		ok, err := r.Reserve(ctx, "ACC-unknown", decimal.RequireFromString("40.00"), "AED", "REF-1")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestStaticRateLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("serves configured pairs case-insensitively", func(t *testing.T) {
		lookup, err := NewStaticRateLookup(map[string]string{"aed/usd": "0.27229"})
		require.NoError(t, err)

		rate, ok, err := lookup.Rate(ctx, "AED", "usd")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, rate.Equal(decimal.RequireFromString("0.27229")))

		_, ok, err = lookup.Rate(ctx, "AED", "JPY")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rejects malformed tables", func(t *testing.T) {
		_, err := NewStaticRateLookup(map[string]string{"AED/USD": "not-a-rate"})
		require.Error(t, err)

		_, err = NewStaticRateLookup(map[string]string{"AED/USD": "-1"})
		require.Error(t, err)
	})
}

func TestAESGCMDecrypter(t *testing.T) {
	ctx := context.Background()
	key := "0000000000000000000000000000000000000000000000000000000000000001"

	d, err := NewAESGCMDecrypter(key)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		sealed, err := d.Encrypt([]byte(`{"full_name":"Fatima"}`))
		require.NoError(t, err)

		plaintext, err := d.Decrypt(ctx, sealed)
		require.NoError(t, err)
		assert.Equal(t, `{"full_name":"Fatima"}`, string(plaintext))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := d.Decrypt(ctx, "not-base64!")
		require.Error(t, err)

		_, err = d.Decrypt(ctx, "AAAA")
		require.Error(t, err)
	})

	t.Run("rejects wrong key", func(t *testing.T) {
		other, err := NewAESGCMDecrypter("0000000000000000000000000000000000000000000000000000000000000002")
		require.NoError(t, err)

		sealed, err := d.Encrypt([]byte("secret"))
		require.NoError(t, err)

		_, err = other.Decrypt(ctx, sealed)
		require.Error(t, err)
	})

	t.Run("rejects short keys", func(t *testing.T) {
		_, err := NewAESGCMDecrypter("abcd")
		require.Error(t, err)
	})
}

func TestDenylistScreening(t *testing.T) {
	ctx := context.Background()
	s := NewDenylistScreening([]string{"John   Doe", "784-0000-0000000-0"})

	t.Run("clears unlisted applicants", func(t *testing.T) {
		result, err := s.Screen(ctx, "Fatima Al Mansouri", "784-1990-1234567-1")
		require.NoError(t, err)
		assert.True(t, result.Clear)
	})

	t.Run("matches names ignoring case and spacing", func(t *testing.T) {
		result, err := s.Screen(ctx, "john doe", "784-1990-1234567-1")
		require.NoError(t, err)
		assert.False(t, result.Clear)
		assert.Equal(t, "Name matches screening list", result.Reason)
	})

	t.Run("matches national ids", func(t *testing.T) {
		result, err := s.Screen(ctx, "Someone Else", "784-0000-0000000-0")
		require.NoError(t, err)
		assert.False(t, result.Clear)
	})
}
