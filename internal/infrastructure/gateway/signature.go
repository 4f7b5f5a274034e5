package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/openfinance/backend/internal/domain/payment"
)

// HMACSignatureValidator verifies detached payload signatures computed as
// hex(HMAC-SHA256(secret, payload))
type HMACSignatureValidator struct {
	secret []byte
}

// NewHMACSignatureValidator creates a validator for the shared secret
func NewHMACSignatureValidator(secret string) *HMACSignatureValidator {
	return &HMACSignatureValidator{secret: []byte(secret)}
}

// Validate recomputes the signature over the payload and compares in
// constant time
func (v *HMACSignatureValidator) Validate(ctx context.Context, payload, signature string) (bool, error) {
	if signature == "" {
		return false, nil
	}
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false, nil
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(payload))
	return hmac.Equal(mac.Sum(nil), expected), nil
}

// Sign produces the signature a caller would attach. Used by tests and
// seeding tools.
func (v *HMACSignatureValidator) Sign(payload string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

var _ payment.SignatureValidator = (*HMACSignatureValidator)(nil)
