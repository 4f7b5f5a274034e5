package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	fxapp "github.com/openfinance/backend/internal/application/fx"
	"github.com/openfinance/backend/internal/domain/fx"
	"github.com/openfinance/backend/internal/interfaces/http/middleware"
)

// FXHandler serves the FX quote and booking vertical
type FXHandler struct {
	BaseHandler
	service *fxapp.Service
}

// NewFXHandler creates a new FXHandler
func NewFXHandler(service *fxapp.Service) *FXHandler {
	return &FXHandler{service: service}
}

// RegisterRoutes registers FX routes on the given router group
func (h *FXHandler) RegisterRoutes(rg *gin.RouterGroup) {
	deals := rg.Group("/fx")
	{
		deals.POST("/quotes", h.RequestQuote)
		deals.POST("/deals/:id/accept", h.AcceptQuote)
		deals.GET("/deals/:id", h.Get)
	}
}

type quoteRequest struct {
	SellCurrency string          `json:"sell_currency" binding:"required,ccy"`
	BuyCurrency  string          `json:"buy_currency" binding:"required,ccy"`
	SellAmount   decimal.Decimal `json:"sell_amount" binding:"required"`
}

// RequestQuote handles POST /fx/quotes
func (h *FXHandler) RequestQuote(c *gin.Context) {
	participantID, ok := getParticipantID(c)
	if !ok {
		h.Unauthorized(c, "Participant not authenticated")
		return
	}

	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid quote request: "+err.Error())
		return
	}

	result, err := h.service.RequestQuote(c.Request.Context(), fxapp.RequestQuoteCommand{
		ParticipantID: participantID,
		SellCurrency:  req.SellCurrency,
		BuyCurrency:   req.BuyCurrency,
		SellAmount:    req.SellAmount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

type acceptRequest struct {
	SellCurrency string          `json:"sell_currency" binding:"required,ccy"`
	BuyCurrency  string          `json:"buy_currency" binding:"required,ccy"`
	SellAmount   decimal.Decimal `json:"sell_amount" binding:"required"`
	Rate         decimal.Decimal `json:"rate" binding:"required"`
}

// AcceptQuote handles POST /fx/deals/:id/accept. The body restates the
// quoted inputs so tampering between quote and acceptance is detectable.
func (h *FXHandler) AcceptQuote(c *gin.Context) {
	participantID, ok := getParticipantID(c)
	if !ok {
		h.Unauthorized(c, "Participant not authenticated")
		return
	}

	var req acceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid acceptance request: "+err.Error())
		return
	}

	result, err := h.service.AcceptQuote(c.Request.Context(), fxapp.AcceptQuoteCommand{
		IdempotencyKey: c.GetHeader(middleware.HeaderIdempotencyKey),
		ParticipantID:  participantID,
		DealID:         c.Param("id"),
		SellCurrency:   req.SellCurrency,
		BuyCurrency:    req.BuyCurrency,
		SellAmount:     req.SellAmount,
		Rate:           req.Rate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	setIdempotencyOutcome(c, result.Replay)
	h.Success(c, result)
}

// Get handles GET /fx/deals/:id
func (h *FXHandler) Get(c *gin.Context) {
	participantID, ok := getParticipantID(c)
	if !ok {
		h.Unauthorized(c, "Participant not authenticated")
		return
	}

	deal, err := h.service.GetDeal(c.Request.Context(), participantID, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dealResponse(deal))
}

type dealView struct {
	DealID        string  `json:"deal_id"`
	Status        string  `json:"status"`
	SellCurrency  string  `json:"sell_currency"`
	BuyCurrency   string  `json:"buy_currency"`
	SellAmount    string  `json:"sell_amount"`
	Rate          string  `json:"rate"`
	CounterAmount string  `json:"counter_amount"`
	QuoteExpires  string  `json:"quote_expires_at"`
	BookedAt      *string `json:"booked_at,omitempty"`
}

func dealResponse(deal *fx.Deal) gin.H {
	view := dealView{
		DealID:        deal.DealID,
		Status:        deal.Status.String(),
		SellCurrency:  deal.SellCurrency,
		BuyCurrency:   deal.BuyCurrency,
		SellAmount:    deal.SellAmount.StringFixed(2),
		Rate:          deal.Rate.String(),
		CounterAmount: deal.CounterAmount.StringFixed(2),
		QuoteExpires:  deal.QuoteExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if deal.BookedAt != nil {
		booked := deal.BookedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		view.BookedAt = &booked
	}
	return gin.H{"success": true, "data": view}
}
