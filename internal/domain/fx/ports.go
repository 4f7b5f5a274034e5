package fx

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository persists FX deals
type Repository interface {
	Save(ctx context.Context, deal *Deal) error
	FindByDealID(ctx context.Context, dealID string) (*Deal, error)
	FindByDealIDForParticipant(ctx context.Context, dealID, participantID string) (*Deal, error)
}

// RateLookup resolves the current exchange rate for a currency pair. The
// second return value is false when no rate is available for the pair.
type RateLookup interface {
	Rate(ctx context.Context, sellCurrency, buyCurrency string) (decimal.Decimal, bool, error)
}
