package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openfinance/backend/internal/infrastructure/auth"
	"github.com/openfinance/backend/internal/infrastructure/logger"
	"github.com/openfinance/backend/internal/interfaces/http/dto"
)

const (
	// AuthHeaderKey is the authorization header name
	AuthHeaderKey = "Authorization"
	// BearerPrefix is the expected token prefix
	BearerPrefix = "Bearer "
	// ParticipantHeaderKey is the development fallback header carrying the
	// participant id when no token is presented
	ParticipantHeaderKey = "X-TPP-ID"

	claimsContextKey      = "participant_claims"
	participantContextKey = "participant_id"
)

// ParticipantAuthConfig configures the participant authentication middleware
type ParticipantAuthConfig struct {
	JWTService *auth.JWTService
	// AllowHeaderFallback accepts X-TPP-ID without a token. Development only.
	AllowHeaderFallback bool
	SkipPaths           []string
}

// ParticipantAuth authenticates the calling participant from a bearer token
func ParticipantAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return ParticipantAuthWithConfig(ParticipantAuthConfig{JWTService: jwtService})
}

// ParticipantAuthWithConfig authenticates with custom configuration
func ParticipantAuthWithConfig(cfg ParticipantAuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			if cfg.AllowHeaderFallback {
				if participantID := c.GetHeader(ParticipantHeaderKey); participantID != "" {
					setParticipant(c, participantID)
					c.Next()
					return
				}
			}
			abortUnauthorized(c, "Missing authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			message := "Token validation failed"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "Token has expired"
			}
			abortUnauthorized(c, message)
			return
		}

		c.Set(claimsContextKey, claims)
		setParticipant(c, claims.ParticipantID)
		c.Next()
	}
}

func setParticipant(c *gin.Context, participantID string) {
	c.Set(participantContextKey, participantID)
	ctx := context.WithValue(c.Request.Context(), logger.ParticipantIDKey, participantID)
	c.Request = c.Request.WithContext(ctx)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		"UNAUTHORIZED", message, GetRequestID(c),
	))
}

// GetParticipantID extracts the authenticated participant id
func GetParticipantID(c *gin.Context) string {
	return c.GetString(participantContextKey)
}

// GetParticipantClaims extracts the full token claims, if a token was used
func GetParticipantClaims(c *gin.Context) *auth.Claims {
	if v, exists := c.Get(claimsContextKey); exists {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
