package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the read model for an account served through the account
// information vertical. It is never mutated by this service.
type Snapshot struct {
	AccountID    string    `json:"account_id"`
	SubjectID    string    `json:"subject_id"`
	AccountType  string    `json:"account_type"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	Nickname     string    `json:"nickname,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// BalanceSnapshot is the read model for one balance figure on an account
type BalanceSnapshot struct {
	AccountID    string          `json:"account_id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	LastModified time.Time       `json:"last_modified"`
}

// Fingerprint derives the ETag content hash for a single account
func (s Snapshot) Fingerprint() string {
	return fingerprint(s.AccountID, s.Status, s.LastModified)
}

// FingerprintBalances derives the ETag content hash for a balance listing
func FingerprintBalances(accountID string, balances []BalanceSnapshot) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00", accountID)
	for _, b := range balances {
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d\x00",
			b.Type, b.Amount.String(), b.Currency, b.LastModified.UnixNano())
	}
	return `"` + hex.EncodeToString(h.Sum(nil)) + `"`
}

// FingerprintAccounts derives the ETag content hash for an account listing
func FingerprintAccounts(accounts []Snapshot) string {
	h := sha256.New()
	for _, a := range accounts {
		fmt.Fprintf(h, "%s\x00%s\x00%d\x00", a.AccountID, a.Status, a.LastModified.UnixNano())
	}
	return `"` + hex.EncodeToString(h.Sum(nil)) + `"`
}

func fingerprint(id, status string, lastModified time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%d", id, status, lastModified.UnixNano())))
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// Reader is the upstream source of record for account information. Reads go
// through the cache-aside layer before reaching it.
type Reader interface {
	AccountsForSubject(ctx context.Context, subjectID string) ([]Snapshot, error)
	AccountByID(ctx context.Context, accountID string) (*Snapshot, error)
	BalancesForAccount(ctx context.Context, accountID string) ([]BalanceSnapshot, error)
}
