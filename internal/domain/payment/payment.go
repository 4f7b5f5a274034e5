package payment

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/openfinance/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Initiation carries the semantically relevant fields of a payment
// instruction, independent of transport encoding
type Initiation struct {
	InstructionID   string          `json:"instruction_id"`
	EndToEndID      string          `json:"end_to_end_id"`
	DebtorAccountID string          `json:"debtor_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	CreditorScheme  string          `json:"creditor_scheme"`
	CreditorAccount string          `json:"creditor_account"`
	CreditorName    string          `json:"creditor_name"`
	ExecutionDate   *time.Time      `json:"execution_date,omitempty"`
}

// Validate checks structural invariants of the initiation
func (i Initiation) Validate() error {
	if i.InstructionID == "" {
		return shared.NewDomainError(shared.CodeInvalidRequest, "Instruction ID cannot be empty")
	}
	if i.DebtorAccountID == "" {
		return shared.NewDomainError(shared.CodeInvalidRequest, "Debtor account cannot be empty")
	}
	if i.Amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeInvalidRequest, "Amount must be positive")
	}
	if len(i.Currency) != 3 {
		return shared.NewDomainError(shared.CodeInvalidRequest, "Currency must be a 3-letter code")
	}
	if i.CreditorAccount == "" {
		return shared.NewDomainError(shared.CodeInvalidRequest, "Creditor account cannot be empty")
	}
	return nil
}

// Consent is the payment-specific consent view: a single-use authorization
// bound to an amount ceiling, currency and payee
type Consent struct {
	ConsentID     string          `gorm:"type:varchar(64);primaryKey"`
	ParticipantID string          `gorm:"type:varchar(50);not null;index"`
	MaxAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency      string          `gorm:"type:varchar(3);not null"`
	PayeeHash     string          `gorm:"type:varchar(64);not null"`
	ExpiresAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Consent) TableName() string {
	return "payment_consents"
}

// IsActive reports whether the consent is active at now (exclusive expiry)
func (c *Consent) IsActive(now time.Time) bool {
	return c.ExpiresAt.After(now)
}

// HashPayee fingerprints a creditor account for consent binding
func HashPayee(creditorAccount string) string {
	sum := sha256.Sum256([]byte(creditorAccount))
	return hex.EncodeToString(sum[:])
}

// ValidateBinding checks that the initiation stays inside the consent:
// amount ceiling, currency and payee must all match what the PSU authorized
func (c *Consent) ValidateBinding(init Initiation) error {
	if init.Amount.GreaterThan(c.MaxAmount) {
		return shared.NewBusinessRuleViolation("Consent binding validation failed: amount exceeds consented maximum")
	}
	if init.Currency != c.Currency {
		return shared.NewBusinessRuleViolation("Consent binding validation failed: currency mismatch")
	}
	if HashPayee(init.CreditorAccount) != c.PayeeHash {
		return shared.NewBusinessRuleViolation("Consent binding validation failed: payee mismatch")
	}
	return nil
}

// Transaction is the payment transaction aggregate root
type Transaction struct {
	shared.ParticipantAggregateRoot
	PaymentID       string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	ConsentID       string          `gorm:"type:varchar(64);not null;index"`
	InstructionID   string          `gorm:"type:varchar(64);not null"`
	EndToEndID      string          `gorm:"type:varchar(64)"`
	DebtorAccountID string          `gorm:"type:varchar(64);not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	CreditorAccount string          `gorm:"type:varchar(64);not null"`
	CreditorName    string          `gorm:"type:varchar(200)"`
	Status          Status          `gorm:"type:varchar(40);not null;index"`
	ExecutionDate   *time.Time
	SettledAt       *time.Time
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "payment_transactions"
}

// NewTransaction creates a payment transaction in its policy-decided initial
// status
func NewTransaction(participantID, consentID string, init Initiation, status Status) (*Transaction, error) {
	if err := init.Validate(); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, fmt.Sprintf("Invalid payment status %s", status))
	}

	tx := &Transaction{
		ParticipantAggregateRoot: shared.NewParticipantAggregateRoot(participantID),
		PaymentID:                "PAY-" + shared.NewBaseEntity().ID.String(),
		ConsentID:                consentID,
		InstructionID:            init.InstructionID,
		EndToEndID:               init.EndToEndID,
		DebtorAccountID:          init.DebtorAccountID,
		Amount:                   init.Amount,
		Currency:                 init.Currency,
		CreditorAccount:          init.CreditorAccount,
		CreditorName:             init.CreditorName,
		Status:                   status,
		ExecutionDate:            init.ExecutionDate,
	}

	tx.AddDomainEvent(NewSubmittedEvent(tx))
	return tx, nil
}

// Settle marks an in-process payment as settled
func (t *Transaction) Settle(now time.Time) error {
	if t.Status != StatusAcceptedSettlement {
		return shared.NewBusinessRuleViolation(fmt.Sprintf("Cannot settle payment in %s status", t.Status))
	}
	t.Status = StatusSettled
	t.SettledAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()
	t.AddDomainEvent(NewSettledEvent(t))
	return nil
}

// LastModified returns the timestamp participating in the read fingerprint
func (t *Transaction) LastModified() time.Time {
	return t.UpdatedAt
}
