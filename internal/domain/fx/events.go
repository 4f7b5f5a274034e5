package fx

import (
	"github.com/openfinance/backend/internal/domain/shared"
)

// Event types for FX deals
const (
	EventTypeQuoted = "fx.quoted"
	EventTypeBooked = "fx.booked"
)

// QuotedEvent is published when a quote is priced
type QuotedEvent struct {
	shared.BaseDomainEvent
	DealID        string `json:"deal_id"`
	SellCurrency  string `json:"sell_currency"`
	BuyCurrency   string `json:"buy_currency"`
	SellAmount    string `json:"sell_amount"`
	Rate          string `json:"rate"`
	CounterAmount string `json:"counter_amount"`
}

// NewQuotedEvent creates a new QuotedEvent
func NewQuotedEvent(deal *Deal) *QuotedEvent {
	return &QuotedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoted, "FxDeal", deal.ID, deal.ParticipantID),
		DealID:          deal.DealID,
		SellCurrency:    deal.SellCurrency,
		BuyCurrency:     deal.BuyCurrency,
		SellAmount:      deal.SellAmount.StringFixed(2),
		Rate:            deal.Rate.String(),
		CounterAmount:   deal.CounterAmount.StringFixed(2),
	}
}

// BookedEvent is published when a quote is accepted and the deal books
type BookedEvent struct {
	shared.BaseDomainEvent
	DealID        string `json:"deal_id"`
	CounterAmount string `json:"counter_amount"`
}

// NewBookedEvent creates a new BookedEvent
func NewBookedEvent(deal *Deal) *BookedEvent {
	return &BookedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBooked, "FxDeal", deal.ID, deal.ParticipantID),
		DealID:          deal.DealID,
		CounterAmount:   deal.CounterAmount.StringFixed(2),
	}
}
