package fx

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openfinance/backend/internal/domain/fx"
	"github.com/openfinance/backend/internal/domain/shared"
	"github.com/openfinance/backend/internal/infrastructure/logger"
)

// RequestQuoteCommand asks for a priced quote on a currency pair
type RequestQuoteCommand struct {
	ParticipantID string
	SellCurrency  string
	BuyCurrency   string
	SellAmount    decimal.Decimal
}

// AcceptQuoteCommand books a deal against the inputs the caller saw quoted
type AcceptQuoteCommand struct {
	IdempotencyKey string
	ParticipantID  string
	DealID         string
	SellCurrency   string
	BuyCurrency    string
	SellAmount     decimal.Decimal
	Rate           decimal.Decimal
}

// DealResult is the replayable outcome of a quote or acceptance
type DealResult struct {
	DealID        string          `json:"deal_id"`
	Status        fx.Status       `json:"status"`
	SellCurrency  string          `json:"sell_currency"`
	BuyCurrency   string          `json:"buy_currency"`
	SellAmount    decimal.Decimal `json:"sell_amount"`
	Rate          decimal.Decimal `json:"rate"`
	CounterAmount decimal.Decimal `json:"counter_amount"`
	ExpiresAt     time.Time       `json:"expires_at"`
	Replay        bool            `json:"-"`
}

// Service orchestrates FX quoting and booking. Quote acceptance follows the
// idempotent command protocol; the deal's own fingerprint guards against a
// caller accepting different numbers than were quoted.
type Service struct {
	deals         fx.Repository
	rates         fx.RateLookup
	idempotency   shared.IdempotencyStore
	idemTTL       time.Duration
	quoteValidity time.Duration
	publisher     shared.EventPublisher
	locks         *shared.KeyedMutex
	now           func() time.Time
}

// NewService creates a new FX Service
func NewService(
	deals fx.Repository,
	rates fx.RateLookup,
	idempotency shared.IdempotencyStore,
	idemCfg shared.IdempotencyConfig,
	quoteValidity time.Duration,
	publisher shared.EventPublisher,
) *Service {
	return &Service{
		deals:         deals,
		rates:         rates,
		idempotency:   idempotency,
		idemTTL:       idemCfg.TTL,
		quoteValidity: quoteValidity,
		publisher:     publisher,
		locks:         shared.NewKeyedMutex(),
		now:           time.Now,
	}
}

// RequestQuote prices a currency pair and creates a QUOTED deal
func (s *Service) RequestQuote(ctx context.Context, cmd RequestQuoteCommand) (*DealResult, error) {
	if cmd.ParticipantID == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Participant ID cannot be empty")
	}

	rate, ok, err := s.rates.Rate(ctx, cmd.SellCurrency, cmd.BuyCurrency)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeServiceUnavailable, "Rate lookup unavailable")
	}
	if !ok {
		return nil, shared.NewDomainError(shared.CodeServiceUnavailable,
			"No rate available for "+cmd.SellCurrency+"/"+cmd.BuyCurrency)
	}

	deal, err := fx.NewQuote(cmd.ParticipantID, fx.QuoteInputs{
		SellCurrency: cmd.SellCurrency,
		BuyCurrency:  cmd.BuyCurrency,
		SellAmount:   cmd.SellAmount,
		Rate:         rate,
	}, s.now(), s.quoteValidity)
	if err != nil {
		return nil, err
	}

	if err := s.deals.Save(ctx, deal); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, deal.GetDomainEvents()...); err != nil {
		return nil, err
	}
	deal.ClearDomainEvents()

	logger.L(ctx).Info("fx quote priced",
		zap.String("deal_id", deal.DealID),
		zap.String("pair", deal.SellCurrency+"/"+deal.BuyCurrency),
		zap.String("rate", deal.Rate.String()),
	)
	return dealResult(deal, false), nil
}

// requestHash covers the fields a retry must resend unchanged. Correlation
// ids stay out of it so a retried request replays instead of conflicting.
func (c AcceptQuoteCommand) requestHash() string {
	return shared.HashRequest(
		c.DealID,
		c.SellCurrency,
		c.BuyCurrency,
		c.SellAmount.StringFixed(2),
		c.Rate.String(),
	)
}

// AcceptQuote books a deal exactly once per (idempotency key, participant).
// The presented inputs must match the original quote; drift is rejected as
// tampering before any state changes.
func (s *Service) AcceptQuote(ctx context.Context, cmd AcceptQuoteCommand) (*DealResult, error) {
	if cmd.IdempotencyKey == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Idempotency key cannot be empty")
	}
	if cmd.ParticipantID == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Participant ID cannot be empty")
	}

	lockKey := cmd.IdempotencyKey + "\x00" + cmd.ParticipantID
	s.locks.Lock(lockKey)
	defer s.locks.Unlock(lockKey)

	now := s.now()
	hash := cmd.requestHash()

	rec, err := s.idempotency.Find(ctx, cmd.IdempotencyKey, cmd.ParticipantID, now)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		if !rec.MatchesRequestHash(hash) {
			return nil, shared.NewDomainError(shared.CodeIdempotencyConflict, "Idempotency conflict")
		}
		var result DealResult
		if err := json.Unmarshal(rec.Result, &result); err != nil {
			return nil, err
		}
		result.Replay = true
		logger.L(ctx).Info("fx acceptance replayed from idempotency record",
			zap.String("deal_id", result.DealID),
			zap.String("idempotency_key", cmd.IdempotencyKey),
		)
		return &result, nil
	}

	deal, err := s.deals.FindByDealIDForParticipant(ctx, cmd.DealID, cmd.ParticipantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFound("Deal not found")
		}
		return nil, err
	}

	if err := deal.Accept(fx.QuoteInputs{
		SellCurrency: cmd.SellCurrency,
		BuyCurrency:  cmd.BuyCurrency,
		SellAmount:   cmd.SellAmount,
		Rate:         cmd.Rate,
	}, now); err != nil {
		// an expiry transition still has to be persisted
		if deal.Status == fx.StatusExpired {
			if saveErr := s.deals.Save(ctx, deal); saveErr != nil {
				return nil, saveErr
			}
		}
		return nil, err
	}

	if err := s.deals.Save(ctx, deal); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, deal.GetDomainEvents()...); err != nil {
		return nil, err
	}
	deal.ClearDomainEvents()

	result := dealResult(deal, false)
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	if err := s.idempotency.Save(ctx, &shared.IdempotencyRecord{
		Key:           cmd.IdempotencyKey,
		ParticipantID: cmd.ParticipantID,
		RequestHash:   hash,
		Result:        payload,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.idemTTL),
	}); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("fx deal booked",
		zap.String("deal_id", deal.DealID),
		zap.String("idempotency_key", cmd.IdempotencyKey),
	)
	return result, nil
}

// GetDeal loads a deal scoped to the calling participant
func (s *Service) GetDeal(ctx context.Context, participantID, dealID string) (*fx.Deal, error) {
	deal, err := s.deals.FindByDealIDForParticipant(ctx, dealID, participantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFound("Deal not found")
		}
		return nil, err
	}
	return deal, nil
}

func dealResult(deal *fx.Deal, replay bool) *DealResult {
	return &DealResult{
		DealID:        deal.DealID,
		Status:        deal.Status,
		SellCurrency:  deal.SellCurrency,
		BuyCurrency:   deal.BuyCurrency,
		SellAmount:    deal.SellAmount,
		Rate:          deal.Rate,
		CounterAmount: deal.CounterAmount,
		ExpiresAt:     deal.QuoteExpiresAt,
		Replay:        replay,
	}
}
