package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Run("creates logger from config", func(t *testing.T) {
		log, err := New(&Config{Level: "debug", Format: "json", Output: "stdout"})
		require.NoError(t, err)
		require.NotNil(t, log)
		assert.True(t, log.Core().Enabled(zap.DebugLevel))
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		log, err := New(&Config{Level: "chatty", Format: "console", Output: "stderr"})
		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(zap.DebugLevel))
		assert.True(t, log.Core().Enabled(zap.InfoLevel))
	})
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"development", "production", ""} {
		log, err := NewForEnvironment(env)
		require.NoError(t, err)
		require.NotNil(t, log)
	}
}

func TestContextHelpers(t *testing.T) {
	base := zap.NewNop()

	t.Run("logger round trips through context", func(t *testing.T) {
		ctx := WithContext(context.Background(), base)
		assert.Equal(t, base, FromContext(ctx))
	})

	t.Run("missing logger yields no-op", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("identifiers round trip", func(t *testing.T) {
		ctx := context.Background()
		ctx, _ = WithRequestID(ctx, base, "req-1")
		ctx, _ = WithInteractionID(ctx, base, "int-1")
		ctx, _ = WithParticipantID(ctx, base, "TPP-001")

		assert.Equal(t, "req-1", GetRequestID(ctx))
		assert.Equal(t, "int-1", GetInteractionID(ctx))
		assert.Equal(t, "TPP-001", GetParticipantID(ctx))
		assert.NotNil(t, L(ctx))
	})

	t.Run("empty context returns empty identifiers", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, GetRequestID(ctx))
		assert.Empty(t, GetInteractionID(ctx))
		assert.Empty(t, GetParticipantID(ctx))
	})
}
