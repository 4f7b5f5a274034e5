package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/openfinance/backend/internal/infrastructure/logger"
)

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": GetRequestID(c)})
	})

	t.Run("generates an id when header missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	})

	t.Run("echoes the caller's id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderRequestID, "req-123")
		engine.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
		assert.Contains(t, w.Body.String(), "req-123")
	})
}

func TestInteractionID(t *testing.T) {
	engine := gin.New()
	engine.Use(InteractionID())
	engine.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"interaction_id": GetInteractionID(c)})
	})

	t.Run("generates an id when header missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(HeaderInteractionID))
	})

	t.Run("echoes the caller's id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderInteractionID, "int-456")
		engine.ServeHTTP(w, req)

		assert.Equal(t, "int-456", w.Header().Get(HeaderInteractionID))
		assert.Contains(t, w.Body.String(), "int-456")
	})
}

func TestRequestCorrelationReachesServiceLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	engine := gin.New()
	engine.Use(RequestID(), logger.GinMiddleware(zap.New(core)), InteractionID())
	engine.GET("/test", func(c *gin.Context) {
		logger.L(c.Request.Context()).Info("from service")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderRequestID, "req-789")
	req.Header.Set(HeaderInteractionID, "int-789")
	engine.ServeHTTP(w, req)

	entries := logs.FilterMessage("from service").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-789", fields["request_id"])
	assert.Equal(t, "int-789", fields["interaction_id"])
}
