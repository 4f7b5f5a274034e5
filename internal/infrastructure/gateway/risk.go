package gateway

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openfinance/backend/internal/domain/payment"
)

// ThresholdRiskAssessor rejects initiations above a fixed amount threshold.
// Stands in for the bank's real-time fraud scoring upstream.
type ThresholdRiskAssessor struct {
	threshold decimal.Decimal
	logger    *zap.Logger
}

// NewThresholdRiskAssessor creates an assessor with the given rejection threshold
func NewThresholdRiskAssessor(threshold decimal.Decimal, logger *zap.Logger) *ThresholdRiskAssessor {
	return &ThresholdRiskAssessor{threshold: threshold, logger: logger}
}

// Assess returns REJECT for amounts above the threshold, PASS otherwise
func (a *ThresholdRiskAssessor) Assess(ctx context.Context, init payment.Initiation, participantID string) (payment.RiskDecision, error) {
	if init.Amount.GreaterThan(a.threshold) {
		a.logger.Warn("payment rejected by risk threshold",
			zap.String("participant_id", participantID),
			zap.String("amount", init.Amount.StringFixed(2)),
			zap.String("threshold", a.threshold.StringFixed(2)),
		)
		return payment.RiskReject, nil
	}
	return payment.RiskPass, nil
}

var _ payment.RiskAssessor = (*ThresholdRiskAssessor)(nil)
