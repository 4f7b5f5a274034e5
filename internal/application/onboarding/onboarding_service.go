package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/openfinance/backend/internal/domain/onboarding"
	"github.com/openfinance/backend/internal/domain/shared"
	"github.com/openfinance/backend/internal/infrastructure/logger"
)

// OpenAccountCommand carries one encrypted onboarding application
type OpenAccountCommand struct {
	IdempotencyKey   string
	ParticipantID    string
	EncryptedProfile string
}

// AccountResult is the replayable outcome of an onboarding application
type AccountResult struct {
	AccountID string            `json:"account_id"`
	Status    onboarding.Status `json:"status"`
	OpenedAt  time.Time         `json:"opened_at"`
	Replay    bool              `json:"-"`
}

// Service opens accounts from encrypted applicant profiles: decryption,
// sanctions screening, duplicate detection, persistence and events, under
// the idempotent command protocol.
type Service struct {
	accounts    onboarding.Repository
	decrypter   onboarding.Decrypter
	screening   onboarding.ScreeningCheck
	idempotency shared.IdempotencyStore
	idemTTL     time.Duration
	publisher   shared.EventPublisher
	locks       *shared.KeyedMutex
	now         func() time.Time
}

// NewService creates a new onboarding Service
func NewService(
	accounts onboarding.Repository,
	decrypter onboarding.Decrypter,
	screening onboarding.ScreeningCheck,
	idempotency shared.IdempotencyStore,
	idemCfg shared.IdempotencyConfig,
	publisher shared.EventPublisher,
) *Service {
	return &Service{
		accounts:    accounts,
		decrypter:   decrypter,
		screening:   screening,
		idempotency: idempotency,
		idemTTL:     idemCfg.TTL,
		publisher:   publisher,
		locks:       shared.NewKeyedMutex(),
		now:         time.Now,
	}
}

// requestHash covers the fields a retry must resend unchanged. Correlation
// ids stay out of it so a retried request replays instead of conflicting.
func (c OpenAccountCommand) requestHash() string {
	return shared.HashRequest(c.EncryptedProfile)
}

// OpenAccount processes an encrypted application exactly once per
// (idempotency key, participant). A screening hit publishes the rejection
// event before the error surfaces, and rejected applications leave no
// idempotency record.
func (s *Service) OpenAccount(ctx context.Context, cmd OpenAccountCommand) (*AccountResult, error) {
	if cmd.IdempotencyKey == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Idempotency key cannot be empty")
	}
	if cmd.ParticipantID == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Participant ID cannot be empty")
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
		var result AccountResult
		if err := json.Unmarshal(rec.Result, &result); err != nil {
			return nil, err
		}
		result.Replay = true
		return &result, nil
	}

	plaintext, err := s.decrypter.Decrypt(ctx, cmd.EncryptedProfile)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeDecryptionFailed, "Applicant profile cannot be decrypted")
	}

	var profile onboarding.ApplicantProfile
	if err := json.Unmarshal(plaintext, &profile); err != nil {
		return nil, shared.NewDomainError(shared.CodeDecryptionFailed, "Applicant profile is malformed")
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	screening, err := s.screening.Screen(ctx, profile.FullName, profile.NationalID)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeServiceUnavailable, "Sanctions screening unavailable")
	}
	if !screening.Clear {
		hashID := onboarding.HashNationalID(profile.NationalID)
		rejection := onboarding.NewApplicationRejectedEvent(cmd.ParticipantID, hashID, screening.Reason)
		if err := s.publisher.Publish(ctx, rejection); err != nil {
			logger.L(ctx).Error("failed to publish rejection event", zap.Error(err))
		}
		return nil, shared.NewDomainError(shared.CodeComplianceViolation, "Applicant failed sanctions screening")
	}

	existing, err := s.accounts.FindByNationalIDHash(ctx, onboarding.HashNationalID(profile.NationalID))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewBusinessRuleViolation("Account already exists for applicant")
	}

	account, err := onboarding.OpenAccount(cmd.ParticipantID, profile, now)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, account.GetDomainEvents()...); err != nil {
		return nil, err
	}
	account.ClearDomainEvents()

	result := &AccountResult{
		AccountID: account.AccountID,
		Status:    account.Status,
		OpenedAt:  account.OpenedAt,
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

	logger.L(ctx).Info("onboarding account opened",
		zap.String("account_id", account.AccountID),
		zap.String("idempotency_key", cmd.IdempotencyKey),
	)
	return result, nil
}

// GetAccount loads an onboarding account scoped to the calling participant
func (s *Service) GetAccount(ctx context.Context, participantID, accountID string) (*onboarding.Account, error) {
	account, err := s.accounts.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFound("Account not found")
		}
		return nil, err
	}
	if account.ParticipantID != participantID {
		return nil, shared.NewNotFound("Account not found")
	}
	return account, nil
}
