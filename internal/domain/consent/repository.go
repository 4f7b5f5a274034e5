package consent

import "context"

// Repository loads consent contexts seeded by the consent-issuance subsystem
type Repository interface {
	// FindByID returns the consent context or nil when absent
	FindByID(ctx context.Context, consentID string) (*Context, error)

	// Save stores a consent context (used by seeding and tests)
	Save(ctx context.Context, consent *Context) error
}
