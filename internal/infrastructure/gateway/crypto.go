package gateway

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/openfinance/backend/internal/domain/onboarding"
)

// AESGCMDecrypter decrypts applicant profiles sealed with AES-256-GCM. The
// wire format is base64(nonce || ciphertext).
type AESGCMDecrypter struct {
	aead cipher.AEAD
}

// NewAESGCMDecrypter creates a decrypter from a hex-encoded 32-byte key
func NewAESGCMDecrypter(hexKey string) (*AESGCMDecrypter, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("profile key is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("profile key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCMDecrypter{aead: aead}, nil
}

// Decrypt opens a sealed profile
func (d *AESGCMDecrypter) Decrypt(ctx context.Context, ciphertext string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("ciphertext is not valid base64: %w", err)
	}
	nonceSize := d.aead.NonceSize()
	if len(raw) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	plaintext, err := d.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}

// Encrypt seals a profile in the wire format Decrypt expects. Used by tests
// and seeding tools.
func (d *AESGCMDecrypter) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, d.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := d.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

var _ onboarding.Decrypter = (*AESGCMDecrypter)(nil)
