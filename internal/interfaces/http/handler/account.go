package handler

import (
	"github.com/gin-gonic/gin"

	accountapp "github.com/openfinance/backend/internal/application/account"
	"github.com/openfinance/backend/internal/interfaces/http/middleware"
)

// AccountHandler serves the account information vertical. All reads are
// consent-gated and conditional: responses carry an ETag and a matching
// If-None-Match returns 304 without a body.
type AccountHandler struct {
	BaseHandler
	service *accountapp.Service
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(service *accountapp.Service) *AccountHandler {
	return &AccountHandler{service: service}
}

// RegisterRoutes registers account information routes on the given router group
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.List)
		accounts.GET("/:id", h.Get)
		accounts.GET("/:id/balances", h.Balances)
	}
}

func (h *AccountHandler) readQuery(c *gin.Context) (accountapp.ReadQuery, bool) {
	participantID, ok := getParticipantID(c)
	if !ok {
		h.Unauthorized(c, "Participant not authenticated")
		return accountapp.ReadQuery{}, false
	}
	return accountapp.ReadQuery{
		ConsentID:     c.GetHeader(middleware.HeaderConsentID),
		ParticipantID: participantID,
		AccountID:     c.Param("id"),
		IfNoneMatch:   c.GetHeader("If-None-Match"),
	}, true
}

// List handles GET /accounts
func (h *AccountHandler) List(c *gin.Context) {
	q, ok := h.readQuery(c)
	if !ok {
		return
	}

	result, err := h.service.ListAccounts(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	setCacheOutcome(c, result.CacheHit)
	c.Header("ETag", result.ETag)
	if result.NotModified {
		h.NotModified(c)
		return
	}
	h.Success(c, result)
}

// Get handles GET /accounts/:id
func (h *AccountHandler) Get(c *gin.Context) {
	q, ok := h.readQuery(c)
	if !ok {
		return
	}

	result, err := h.service.GetAccount(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	setCacheOutcome(c, result.CacheHit)
	c.Header("ETag", result.ETag)
	if result.NotModified {
		h.NotModified(c)
		return
	}
	h.Success(c, result)
}

// Balances handles GET /accounts/:id/balances
func (h *AccountHandler) Balances(c *gin.Context) {
	q, ok := h.readQuery(c)
	if !ok {
		return
	}

	result, err := h.service.GetBalances(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	setCacheOutcome(c, result.CacheHit)
	c.Header("ETag", result.ETag)
	if result.NotModified {
		h.NotModified(c)
		return
	}
	h.Success(c, result)
}
