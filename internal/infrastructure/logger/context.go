package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// InteractionIDKey is the context key for the caller's interaction ID
	InteractionIDKey contextKey = "interaction_id"
	// ParticipantIDKey is the context key for the TPP participant ID
	ParticipantIDKey contextKey = "participant_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if
// not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds request ID to context and returns enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithInteractionID adds the caller's interaction ID to context and returns
// an enriched logger
func WithInteractionID(ctx context.Context, logger *zap.Logger, interactionID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, InteractionIDKey, interactionID)
	enriched := logger.With(zap.String("interaction_id", interactionID))
	return WithContext(ctx, enriched), enriched
}

// WithParticipantID adds the TPP participant ID to context and returns an
// enriched logger
func WithParticipantID(ctx context.Context, logger *zap.Logger, participantID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, ParticipantIDKey, participantID)
	enriched := logger.With(zap.String("participant_id", participantID))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetInteractionID retrieves the caller's interaction ID from context
func GetInteractionID(ctx context.Context) string {
	if interactionID, ok := ctx.Value(InteractionIDKey).(string); ok {
		return interactionID
	}
	return ""
}

// GetParticipantID retrieves the TPP participant ID from context
func GetParticipantID(ctx context.Context) string {
	if participantID, ok := ctx.Value(ParticipantIDKey).(string); ok {
		return participantID
	}
	return ""
}

// L returns a logger from the given context enriched with the request,
// interaction and participant identifiers when present.
// Usage: logger.L(ctx).Info("message", zap.String("key", "value"))
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	if requestID := GetRequestID(ctx); requestID != "" {
		l = l.With(zap.String("request_id", requestID))
	}
	if interactionID := GetInteractionID(ctx); interactionID != "" {
		l = l.With(zap.String("interaction_id", interactionID))
	}
	if participantID := GetParticipantID(ctx); participantID != "" {
		l = l.With(zap.String("participant_id", participantID))
	}
	return l
}
