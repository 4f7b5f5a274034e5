package gateway

import (
	"context"
	"strings"

	"github.com/openfinance/backend/internal/domain/onboarding"
)

// DenylistScreening screens applicants against a configured denylist of
// names and national ids. Matching is case and whitespace insensitive.
// Stands in for the real sanctions screening upstream.
type DenylistScreening struct {
	entries map[string]struct{}
}

// NewDenylistScreening creates a screening check from denylist entries
func NewDenylistScreening(denylist []string) *DenylistScreening {
	entries := make(map[string]struct{}, len(denylist))
	for _, e := range denylist {
		entries[normalizeEntry(e)] = struct{}{}
	}
	return &DenylistScreening{entries: entries}
}

// Screen reports a hit when the applicant's name or national id is denylisted
func (s *DenylistScreening) Screen(ctx context.Context, fullName, nationalID string) (onboarding.ScreeningResult, error) {
	if _, hit := s.entries[normalizeEntry(fullName)]; hit {
		return onboarding.ScreeningResult{Clear: false, Reason: "Name matches screening list"}, nil
	}
	if _, hit := s.entries[normalizeEntry(nationalID)]; hit {
		return onboarding.ScreeningResult{Clear: false, Reason: "National ID matches screening list"}, nil
	}
	return onboarding.ScreeningResult{Clear: true}, nil
}

func normalizeEntry(v string) string {
	return strings.ToUpper(strings.Join(strings.Fields(v), " "))
}

var _ onboarding.ScreeningCheck = (*DenylistScreening)(nil)
