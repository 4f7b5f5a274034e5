package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/openfinance/backend/internal/domain/fx"
)

// StaticRateLookup serves FX rates from a fixed table keyed "SELL/BUY".
// Stands in for the treasury rate feed.
type StaticRateLookup struct {
	rates map[string]decimal.Decimal
}

// NewStaticRateLookup parses a table of pair to rate strings. Malformed
// entries fail loudly rather than pricing deals wrong.
func NewStaticRateLookup(table map[string]string) (*StaticRateLookup, error) {
	rates := make(map[string]decimal.Decimal, len(table))
	for pair, raw := range table {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid rate %q for pair %s: %w", raw, pair, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate for pair %s must be positive", pair)
		}
		rates[strings.ToUpper(pair)] = rate
	}
	return &StaticRateLookup{rates: rates}, nil
}

// Rate returns the rate for the pair, reporting false when unquoted
func (l *StaticRateLookup) Rate(ctx context.Context, sellCurrency, buyCurrency string) (decimal.Decimal, bool, error) {
	pair := strings.ToUpper(sellCurrency) + "/" + strings.ToUpper(buyCurrency)
	rate, ok := l.rates[pair]
	return rate, ok, nil
}

var _ fx.RateLookup = (*StaticRateLookup)(nil)
