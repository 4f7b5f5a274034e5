package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openfinance/backend/internal/infrastructure/logger"
)

// Header names used across the API surface
const (
	HeaderRequestID      = "X-Request-ID"
	HeaderInteractionID  = "X-Interaction-ID"
	HeaderIdempotencyKey = "X-Idempotency-Key"
	HeaderConsentID      = "X-Consent-ID"
)

// RequestID adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = generateRequestID()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set(HeaderRequestID, requestID)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// InteractionID echoes the caller's interaction id on every response so a
// round trip can be correlated end to end. A missing header gets a generated
// id rather than a rejection.
func InteractionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		interactionID := c.GetHeader(HeaderInteractionID)
		if interactionID == "" {
			interactionID = generateRequestID()
		}
		c.Set("interaction_id", interactionID)
		c.Writer.Header().Set(HeaderInteractionID, interactionID)
		ctx := context.WithValue(c.Request.Context(), logger.InteractionIDKey, interactionID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetRequestID extracts the request id set by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}

// GetInteractionID extracts the interaction id set by InteractionID
func GetInteractionID(c *gin.Context) string {
	return c.GetString("interaction_id")
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
