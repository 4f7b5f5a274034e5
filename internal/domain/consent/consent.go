package consent

import (
	"fmt"
	"strings"
	"time"

	"github.com/openfinance/backend/internal/domain/shared"
)

// Context is a time-bound, scope-bound authorization granted by a resource
// owner (PSU) to a third-party provider. Contexts are issued by the consent
// subsystem and consumed read-only here.
type Context struct {
	ConsentID     string    `gorm:"type:varchar(64);primaryKey"`
	ParticipantID string    `gorm:"type:varchar(50);not null;index"`
	SubjectID     string    `gorm:"type:varchar(64);not null"`
	Scopes        StringSet `gorm:"type:text;serializer:json"`
	ResourceIDs   StringSet `gorm:"type:text;serializer:json"`
	ExpiresAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Context) TableName() string {
	return "consent_contexts"
}

// StringSet is a normalized set of non-empty strings
type StringSet map[string]struct{}

// NewStringSet builds a set from values, dropping entries that normalize to
// the empty string
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

// Contains reports membership
func (s StringSet) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Values returns the members in unspecified order
func (s StringSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}

// NormalizeScope upper-cases a scope and strips every non-alphanumeric
// character, so "Read-Policies", "ReadPolicies" and "read_policies" compare
// equal.
func NormalizeScope(scope string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(scope) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NewContext creates a consent context with normalized scopes
func NewContext(consentID, participantID, subjectID string, scopes, resourceIDs []string, expiresAt time.Time) (*Context, error) {
	if consentID == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Consent ID cannot be empty")
	}
	if participantID == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Participant ID cannot be empty")
	}
	normalized := make([]string, 0, len(scopes))
	for _, s := range scopes {
		normalized = append(normalized, NormalizeScope(s))
	}
	ctx := &Context{
		ConsentID:     consentID,
		ParticipantID: participantID,
		SubjectID:     subjectID,
		Scopes:        NewStringSet(normalized...),
		ResourceIDs:   NewStringSet(resourceIDs...),
		ExpiresAt:     expiresAt,
	}
	if len(ctx.Scopes) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Consent must grant at least one scope")
	}
	return ctx, nil
}

// IsActive reports whether the consent is active at now. Expiry is an
// exclusive upper bound: now == ExpiresAt is inactive.
func (c *Context) IsActive(now time.Time) bool {
	return c.ExpiresAt.After(now)
}

// HasScope reports whether the consent grants the scope after normalization
func (c *Context) HasScope(scope string) bool {
	return c.Scopes.Contains(NormalizeScope(scope))
}

// Covers reports whether the resource id is linked to the consent
func (c *Context) Covers(resourceID string) bool {
	return c.ResourceIDs.Contains(resourceID)
}

// Authorize evaluates a requested (scope, resource, participant) against the
// context at now. A nil context means the consent was not found. Any failure
// is a FORBIDDEN classification; the resource-link check runs even when the
// resource exists in the backing store, so an unauthorized caller only ever
// learns "not linked".
func Authorize(c *Context, scope, resourceID, participantID string, now time.Time) error {
	if c == nil {
		return shared.NewForbidden("Consent not found")
	}
	if c.ParticipantID != participantID {
		return shared.NewForbidden("Consent participant mismatch")
	}
	if !c.IsActive(now) {
		return shared.NewForbidden("Consent expired")
	}
	if !c.HasScope(scope) {
		return shared.NewForbidden(fmt.Sprintf("Consent does not grant scope %s", NormalizeScope(scope)))
	}
	if resourceID != "" && !c.Covers(resourceID) {
		return shared.NewForbidden("Resource not linked to consent")
	}
	return nil
}
