package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository persists payment transactions
type Repository interface {
	Save(ctx context.Context, tx *Transaction) error
	FindByPaymentID(ctx context.Context, paymentID string) (*Transaction, error)
	FindByPaymentIDForParticipant(ctx context.Context, participantID, paymentID string) (*Transaction, error)
}

// ConsentRepository loads payment consents
type ConsentRepository interface {
	FindByID(ctx context.Context, consentID string) (*Consent, error)
	Save(ctx context.Context, consent *Consent) error
}

// RiskAssessor evaluates a payment initiation before any funds move
type RiskAssessor interface {
	Assess(ctx context.Context, init Initiation, participantID string) (RiskDecision, error)
}

// FundsReserver reserves funds on the debtor account. The reservation
// reference makes the downstream call idempotent in its own right.
type FundsReserver interface {
	Reserve(ctx context.Context, debtorAccountID string, amount decimal.Decimal, currency, reference string) (bool, error)
}

// SignatureValidator verifies the detached payload signature of a signed
// command before any store is touched
type SignatureValidator interface {
	Validate(ctx context.Context, payload, signature string) (bool, error)
}
