package onboarding

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/openfinance/backend/internal/domain/shared"
)

// Status represents the outcome of an onboarding application
type Status string

const (
	StatusActive   Status = "ACTIVE"   // Account opened
	StatusRejected Status = "REJECTED" // Declined by sanctions screening
)

// IsValid checks if the status is a valid onboarding Status
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusRejected
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// ApplicantProfile is the decrypted applicant payload an account is opened
// from
type ApplicantProfile struct {
	FullName    string `json:"full_name"`
	NationalID  string `json:"national_id"`
	DateOfBirth string `json:"date_of_birth"`
	Email       string `json:"email"`
	Currency    string `json:"currency"`
}

// Validate checks structural invariants of the profile
func (p ApplicantProfile) Validate() error {
	if strings.TrimSpace(p.FullName) == "" {
		return shared.NewDomainError(shared.CodeInvalidRequest, "Applicant name cannot be empty")
	}
	if strings.TrimSpace(p.NationalID) == "" {
		return shared.NewDomainError(shared.CodeInvalidRequest, "Applicant national ID cannot be empty")
	}
	if len(p.Currency) != 3 {
		return shared.NewDomainError(shared.CodeInvalidRequest, "Currency must be a 3-letter code")
	}
	return nil
}

// Account is the onboarding account aggregate root
type Account struct {
	shared.ParticipantAggregateRoot
	AccountID      string `gorm:"type:varchar(64);not null;uniqueIndex"`
	ApplicantName  string `gorm:"type:varchar(200);not null"`
	NationalIDHash string `gorm:"type:varchar(64);not null;index"`
	Email          string `gorm:"type:varchar(200)"`
	Currency       string `gorm:"type:varchar(3);not null"`
	Status         Status `gorm:"type:varchar(20);not null;index"`
	OpenedAt       time.Time
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "onboarding_accounts"
}

// OpenAccount creates an ACTIVE account from a screened applicant profile.
// The raw national ID is never stored; only its hash survives for duplicate
// detection.
func OpenAccount(participantID string, profile ApplicantProfile, now time.Time) (*Account, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	acc := &Account{
		ParticipantAggregateRoot: shared.NewParticipantAggregateRoot(participantID),
		AccountID:                "ONB-" + shared.NewBaseEntity().ID.String(),
		ApplicantName:            profile.FullName,
		NationalIDHash:           HashNationalID(profile.NationalID),
		Email:                    profile.Email,
		Currency:                 strings.ToUpper(profile.Currency),
		Status:                   StatusActive,
		OpenedAt:                 now,
	}

	acc.AddDomainEvent(NewAccountOpenedEvent(acc))
	return acc, nil
}

// HashNationalID fingerprints a national ID for storage and duplicate checks
func HashNationalID(nationalID string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(nationalID)))
	return hex.EncodeToString(sum[:])
}
