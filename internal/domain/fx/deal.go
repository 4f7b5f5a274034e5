package fx

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/openfinance/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an FX deal
type Status string

const (
	StatusQuoted    Status = "QUOTED"    // Rate locked, awaiting acceptance
	StatusBooked    Status = "BOOKED"    // Quote accepted, deal booked
	StatusExpired   Status = "EXPIRED"   // Quote validity window elapsed
	StatusCancelled Status = "CANCELLED" // Withdrawn before acceptance
)

// IsValid checks if the status is a valid deal Status
func (s Status) IsValid() bool {
	switch s {
	case StatusQuoted, StatusBooked, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if the deal can never transition again
func (s Status) IsTerminal() bool {
	return s == StatusBooked || s == StatusExpired || s == StatusCancelled
}

// QuoteInputs are the facts the quote was priced on. The acceptor must
// present the same facts; any drift is treated as tampering.
type QuoteInputs struct {
	SellCurrency string
	BuyCurrency  string
	SellAmount   decimal.Decimal
	Rate         decimal.Decimal
}

// Fingerprint derives a stable content hash of the quote inputs
func (q QuoteInputs) Fingerprint() string {
	parts := []string{
		strings.ToUpper(q.SellCurrency),
		strings.ToUpper(q.BuyCurrency),
		q.SellAmount.StringFixed(2),
		q.Rate.String(),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

// CounterAmount prices the quote: sell amount times rate, rounded to two
// decimal places
func (q QuoteInputs) CounterAmount() decimal.Decimal {
	return q.SellAmount.Mul(q.Rate).Round(2)
}

// Deal is the FX deal aggregate root. It starts life as a priced quote and
// books through a single re-entrant Accept transition.
type Deal struct {
	shared.ParticipantAggregateRoot
	DealID           string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	SellCurrency     string          `gorm:"type:varchar(3);not null"`
	BuyCurrency      string          `gorm:"type:varchar(3);not null"`
	SellAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Rate             decimal.Decimal `gorm:"type:decimal(18,8);not null"`
	CounterAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuoteFingerprint string          `gorm:"type:varchar(64);not null"`
	QuoteExpiresAt   time.Time       `gorm:"not null"`
	Status           Status          `gorm:"type:varchar(20);not null;index"`
	BookedAt         *time.Time
}

// TableName returns the table name for GORM
func (Deal) TableName() string {
	return "fx_deals"
}

// NewQuote prices and creates a deal in QUOTED status
func NewQuote(participantID string, inputs QuoteInputs, now time.Time, validity time.Duration) (*Deal, error) {
	if len(inputs.SellCurrency) != 3 || len(inputs.BuyCurrency) != 3 {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Currency must be a 3-letter code")
	}
	if strings.EqualFold(inputs.SellCurrency, inputs.BuyCurrency) {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Sell and buy currencies must differ")
	}
	if inputs.SellAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Sell amount must be positive")
	}
	if inputs.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Rate must be positive")
	}
	if validity <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Quote validity must be positive")
	}

	deal := &Deal{
		ParticipantAggregateRoot: shared.NewParticipantAggregateRoot(participantID),
		DealID:                   "FX-" + shared.NewBaseEntity().ID.String(),
		SellCurrency:             strings.ToUpper(inputs.SellCurrency),
		BuyCurrency:              strings.ToUpper(inputs.BuyCurrency),
		SellAmount:               inputs.SellAmount,
		Rate:                     inputs.Rate,
		CounterAmount:            inputs.CounterAmount(),
		QuoteFingerprint:         inputs.Fingerprint(),
		QuoteExpiresAt:           now.Add(validity),
		Status:                   StatusQuoted,
	}

	deal.AddDomainEvent(NewQuotedEvent(deal))
	return deal, nil
}

// QuoteActive reports whether the quote can still be accepted at now
// (exclusive expiry)
func (d *Deal) QuoteActive(now time.Time) bool {
	return d.QuoteExpiresAt.After(now)
}

// Accept books the deal against the inputs the caller believes it is
// accepting. The transition is re-entrant: accepting an already booked deal
// with the same inputs succeeds without effect. Inputs that do not match the
// original quote are rejected as tampering regardless of status.
func (d *Deal) Accept(inputs QuoteInputs, now time.Time) error {
	if inputs.Fingerprint() != d.QuoteFingerprint {
		return shared.NewBusinessRuleViolation("Quote acceptance does not match original quote")
	}

	switch d.Status {
	case StatusBooked:
		return nil
	case StatusExpired, StatusCancelled:
		return shared.NewBusinessRuleViolation(fmt.Sprintf("Cannot accept deal in %s status", d.Status))
	}

	if !d.QuoteActive(now) {
		d.Status = StatusExpired
		d.UpdatedAt = now
		d.IncrementVersion()
		return shared.NewBusinessRuleViolation("Quote has expired")
	}

	d.Status = StatusBooked
	d.BookedAt = &now
	d.UpdatedAt = now
	d.IncrementVersion()
	d.AddDomainEvent(NewBookedEvent(d))
	return nil
}

// Cancel withdraws a quote before acceptance
func (d *Deal) Cancel(now time.Time) error {
	if d.Status != StatusQuoted {
		return shared.NewBusinessRuleViolation(fmt.Sprintf("Cannot cancel deal in %s status", d.Status))
	}
	d.Status = StatusCancelled
	d.UpdatedAt = now
	d.IncrementVersion()
	return nil
}

// LastModified returns the timestamp participating in the read fingerprint
func (d *Deal) LastModified() time.Time {
	return d.UpdatedAt
}
