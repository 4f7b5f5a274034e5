package onboarding

import (
	"github.com/google/uuid"

	"github.com/openfinance/backend/internal/domain/shared"
)

// Event types for onboarding
const (
	EventTypeAccountOpened       = "onboarding.account_opened"
	EventTypeApplicationRejected = "onboarding.application_rejected"
)

// AccountOpenedEvent is published when an account is opened
type AccountOpenedEvent struct {
	shared.BaseDomainEvent
	AccountID string `json:"account_id"`
	Currency  string `json:"currency"`
}

// NewAccountOpenedEvent creates a new AccountOpenedEvent
func NewAccountOpenedEvent(acc *Account) *AccountOpenedEvent {
	return &AccountOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountOpened, "OnboardingAccount", acc.ID, acc.ParticipantID),
		AccountID:       acc.AccountID,
		Currency:        acc.Currency,
	}
}

// ApplicationRejectedEvent is published when sanctions screening declines an
// applicant. No account aggregate exists at that point; the event stands on
// its own with the applicant fingerprint.
type ApplicationRejectedEvent struct {
	shared.BaseDomainEvent
	NationalIDHash string `json:"national_id_hash"`
	Reason         string `json:"reason"`
}

// NewApplicationRejectedEvent creates a new ApplicationRejectedEvent
func NewApplicationRejectedEvent(participantID, nationalIDHash, reason string) *ApplicationRejectedEvent {
	return &ApplicationRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApplicationRejected, "OnboardingApplication", uuid.New(), participantID),
		NationalIDHash:  nationalIDHash,
		Reason:          reason,
	}
}
