package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/openfinance/backend/internal/domain/shared"
)

// TrailHandler records every published domain event to the structured log,
// forming the audit trail for regulated command flows.
type TrailHandler struct {
	logger *zap.Logger
}

// NewTrailHandler creates a new audit trail handler
func NewTrailHandler(logger *zap.Logger) *TrailHandler {
	return &TrailHandler{
		logger: logger.Named("audit"),
	}
}

// Handle implements shared.EventHandler
func (h *TrailHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.logger.Info("Domain event",
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("participant_id", event.ParticipantID()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes returns an empty list, subscribing the handler to all events
func (h *TrailHandler) EventTypes() []string {
	return nil
}
