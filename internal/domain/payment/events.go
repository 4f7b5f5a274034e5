package payment

import (
	"github.com/openfinance/backend/internal/domain/shared"
)

// Event types for payment transactions
const (
	EventTypeSubmitted = "payment.submitted"
	EventTypeSettled   = "payment.settled"
	EventTypeRejected  = "payment.rejected"
)

// SubmittedEvent is published when a payment transaction is created
type SubmittedEvent struct {
	shared.BaseDomainEvent
	PaymentID string `json:"payment_id"`
	Status    Status `json:"status"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

// NewSubmittedEvent creates a new SubmittedEvent
func NewSubmittedEvent(tx *Transaction) *SubmittedEvent {
	return &SubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubmitted, "PaymentTransaction", tx.ID, tx.ParticipantID),
		PaymentID:       tx.PaymentID,
		Status:          tx.Status,
		Amount:          tx.Amount.StringFixed(2),
		Currency:        tx.Currency,
	}
}

// SettledEvent is published when a payment settles
type SettledEvent struct {
	shared.BaseDomainEvent
	PaymentID string `json:"payment_id"`
}

// NewSettledEvent creates a new SettledEvent
func NewSettledEvent(tx *Transaction) *SettledEvent {
	return &SettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettled, "PaymentTransaction", tx.ID, tx.ParticipantID),
		PaymentID:       tx.PaymentID,
	}
}
