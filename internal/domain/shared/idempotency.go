package shared

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// IdempotencyRecord captures the replayable outcome of a command keyed by
// (idempotency key, participant). Records are written once, never mutated,
// and expire by TTL.
type IdempotencyRecord struct {
	Key           string    `json:"key"`
	ParticipantID string    `json:"participant_id"`
	RequestHash   string    `json:"request_hash"`
	Result        []byte    `json:"result"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// IsExpired reports whether the record is no longer replayable at now.
// The upper bound is exclusive: a record with ExpiresAt == now is expired.
func (r *IdempotencyRecord) IsExpired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// MatchesRequestHash reports whether a retry carries the same payload
// fingerprint as the original request
func (r *IdempotencyRecord) MatchesRequestHash(hash string) bool {
	return r.RequestHash == hash
}

// IdempotencyStore maps (key, participant) to a replayable result with TTL
// semantics. The store is a dumb keyed map: request-hash conflicts are the
// caller's business rule, not the store's.
type IdempotencyStore interface {
	// Find returns the record for (key, participantID) if present and not
	// expired at now. Expired records are evicted as a side effect.
	Find(ctx context.Context, key, participantID string, now time.Time) (*IdempotencyRecord, error)

	// Save stores the record, overwriting any expired occupant of the slot
	Save(ctx context.Context, record *IdempotencyRecord) error

	// Close releases resources held by the store
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL bounds how long a command result stays replayable
	TTL time.Duration

	// MaxEntries bounds the in-memory store; the oldest record is evicted
	// when the store is full
	MaxEntries int
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:        24 * time.Hour,
		MaxEntries: 10000,
	}
}

// HashRequest computes the canonical request fingerprint over the
// semantically relevant fields of a command. Transport encoding and
// correlation identifiers never participate in the hash, so a faithful
// retry always produces the same fingerprint.
func HashRequest(fields ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(fields, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}
