package payment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/openfinance/backend/internal/domain/payment"
	"github.com/openfinance/backend/internal/domain/shared"
	"github.com/openfinance/backend/internal/infrastructure/logger"
)

// SubmitPaymentCommand carries one payment initiation request
type SubmitPaymentCommand struct {
	IdempotencyKey string
	ParticipantID  string
	ConsentID      string
	Payload        string
	Signature      string
	Initiation     payment.Initiation
}

// PaymentResult is the replayable outcome of a submitted payment
type PaymentResult struct {
	PaymentID string         `json:"payment_id"`
	Status    payment.Status `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	Replay    bool           `json:"-"`
}

// Service orchestrates payment initiation: signature check, idempotency,
// consent authorization, risk assessment, funds reservation, persistence and
// event publication, in that order. A per-key lock held across the
// lookup-to-record window makes side effects at-most-once under retries.
type Service struct {
	payments    payment.Repository
	consents    payment.ConsentRepository
	idempotency shared.IdempotencyStore
	idemTTL     time.Duration
	risk        payment.RiskAssessor
	funds       payment.FundsReserver
	signatures  payment.SignatureValidator
	publisher   shared.EventPublisher
	locks       *shared.KeyedMutex
	now         func() time.Time
}

// NewService creates a new payment initiation Service
func NewService(
	payments payment.Repository,
	consents payment.ConsentRepository,
	idempotency shared.IdempotencyStore,
	idemCfg shared.IdempotencyConfig,
	risk payment.RiskAssessor,
	funds payment.FundsReserver,
	signatures payment.SignatureValidator,
	publisher shared.EventPublisher,
) *Service {
	return &Service{
		payments:    payments,
		consents:    consents,
		idempotency: idempotency,
		idemTTL:     idemCfg.TTL,
		risk:        risk,
		funds:       funds,
		signatures:  signatures,
		publisher:   publisher,
		locks:       shared.NewKeyedMutex(),
		now:         time.Now,
	}
}

// requestHash covers the fields a retry must resend unchanged. Correlation
// ids stay out of it so a retried request replays instead of conflicting.
func (c SubmitPaymentCommand) requestHash() string {
	execDate := ""
	if c.Initiation.ExecutionDate != nil {
		execDate = c.Initiation.ExecutionDate.Format(time.RFC3339)
	}
	return shared.HashRequest(
		c.ConsentID,
		c.Initiation.InstructionID,
		c.Initiation.EndToEndID,
		c.Initiation.DebtorAccountID,
		c.Initiation.Amount.StringFixed(2),
		c.Initiation.Currency,
		c.Initiation.CreditorScheme,
		c.Initiation.CreditorAccount,
		c.Initiation.CreditorName,
		execDate,
	)
}

// SubmitPayment executes a payment initiation command exactly once per
// (idempotency key, participant). Replays return the recorded result with
// the Replay flag set; a key reuse with a different payload is rejected.
func (s *Service) SubmitPayment(ctx context.Context, cmd SubmitPaymentCommand) (*PaymentResult, error) {
	if cmd.IdempotencyKey == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Idempotency key cannot be empty")
	}
	if cmd.ParticipantID == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Participant ID cannot be empty")
	}

	valid, err := s.signatures.Validate(ctx, cmd.Payload, cmd.Signature)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeServiceUnavailable, "Signature validation unavailable")
	}
	if !valid {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Signature Invalid")
	}

	lockKey := cmd.IdempotencyKey + "\x00" + cmd.ParticipantID
	s.locks.Lock(lockKey)
	defer s.locks.Unlock(lockKey)

	now := s.now()
	hash := cmd.requestHash()

	rec, err := s.idempotency.Find(ctx, cmd.IdempotencyKey, cmd.ParticipantID, now)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		if !rec.MatchesRequestHash(hash) {
			return nil, shared.NewDomainError(shared.CodeIdempotencyConflict, "Idempotency conflict")
		}
		var result PaymentResult
		if err := json.Unmarshal(rec.Result, &result); err != nil {
			return nil, err
		}
		result.Replay = true
		logger.L(ctx).Info("payment replayed from idempotency record",
			zap.String("payment_id", result.PaymentID),
			zap.String("idempotency_key", cmd.IdempotencyKey),
		)
		return &result, nil
	}

	if err := s.authorize(ctx, cmd, now); err != nil {
		return nil, err
	}
	if err := cmd.Initiation.Validate(); err != nil {
		return nil, err
	}

	decision, err := s.risk.Assess(ctx, cmd.Initiation, cmd.ParticipantID)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeServiceUnavailable, "Risk assessment unavailable")
	}

	status := payment.StatusPolicy{}.Initial(now, cmd.Initiation.ExecutionDate, decision)

	tx, err := payment.NewTransaction(cmd.ParticipantID, cmd.ConsentID, cmd.Initiation, status)
	if err != nil {
		return nil, err
	}

	if status.RequiresFundsReservation() {
		reserved, err := s.funds.Reserve(ctx, cmd.Initiation.DebtorAccountID,
			cmd.Initiation.Amount, cmd.Initiation.Currency, tx.PaymentID)
		if err != nil {
			return nil, shared.NewDomainError(shared.CodeServiceUnavailable, "Funds reservation unavailable")
		}
		if !reserved {
			return nil, shared.NewBusinessRuleViolation("Insufficient funds")
		}
	}

	if err := s.payments.Save(ctx, tx); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, tx.GetDomainEvents()...); err != nil {
		return nil, err
	}
	tx.ClearDomainEvents()

	result := &PaymentResult{
		PaymentID: tx.PaymentID,
		Status:    tx.Status,
		CreatedAt: tx.CreatedAt,
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	if err := s.idempotency.Save(ctx, &shared.IdempotencyRecord{
		Key:           cmd.IdempotencyKey,
		ParticipantID: cmd.ParticipantID,
		RequestHash:   hash,
		Result:        payload,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.idemTTL),
	}); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("payment submitted",
		zap.String("payment_id", tx.PaymentID),
		zap.String("status", tx.Status.String()),
		zap.String("idempotency_key", cmd.IdempotencyKey),
	)
	return result, nil
}

// authorize checks the payment consent: existence, ownership, expiry and the
// amount/currency/payee binding
func (s *Service) authorize(ctx context.Context, cmd SubmitPaymentCommand, now time.Time) error {
	consent, err := s.consents.FindByID(ctx, cmd.ConsentID)
	if err != nil {
		return err
	}
	if consent == nil {
		return shared.NewForbidden("Consent not found")
	}
	if consent.ParticipantID != cmd.ParticipantID {
		return shared.NewForbidden("Consent participant mismatch")
	}
	if !consent.IsActive(now) {
		return shared.NewForbidden("Consent expired")
	}
	return consent.ValidateBinding(cmd.Initiation)
}

// GetPayment loads a payment transaction scoped to the calling participant.
// A payment owned by another TPP is reported as not found.
func (s *Service) GetPayment(ctx context.Context, participantID, paymentID string) (*payment.Transaction, error) {
	tx, err := s.payments.FindByPaymentIDForParticipant(ctx, participantID, paymentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFound("Payment not found")
		}
		return nil, err
	}
	return tx, nil
}
