package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	onboardingapp "github.com/openfinance/backend/internal/application/onboarding"
	"github.com/openfinance/backend/internal/domain/onboarding"
	"github.com/openfinance/backend/internal/interfaces/http/middleware"
)

// OnboardingHandler serves the account opening vertical
type OnboardingHandler struct {
	BaseHandler
	service *onboardingapp.Service
}

// NewOnboardingHandler creates a new OnboardingHandler
func NewOnboardingHandler(service *onboardingapp.Service) *OnboardingHandler {
	return &OnboardingHandler{service: service}
}

// RegisterRoutes registers onboarding routes on the given router group
func (h *OnboardingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/onboarding/accounts")
	{
		accounts.POST("", h.Open)
		accounts.GET("/:id", h.Get)
	}
}

type openAccountRequest struct {
	EncryptedProfile string `json:"encrypted_profile" binding:"required"`
}

// Open handles POST /onboarding/accounts
func (h *OnboardingHandler) Open(c *gin.Context) {
	participantID, ok := getParticipantID(c)
	if !ok {
		h.Unauthorized(c, "Participant not authenticated")
		return
	}

	var req openAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid onboarding request: "+err.Error())
		return
	}

	result, err := h.service.OpenAccount(c.Request.Context(), onboardingapp.OpenAccountCommand{
		IdempotencyKey:   c.GetHeader(middleware.HeaderIdempotencyKey),
		ParticipantID:    participantID,
		EncryptedProfile: req.EncryptedProfile,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	setIdempotencyOutcome(c, result.Replay)
	if result.Replay {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// Get handles GET /onboarding/accounts/:id
func (h *OnboardingHandler) Get(c *gin.Context) {
	participantID, ok := getParticipantID(c)
	if !ok {
		h.Unauthorized(c, "Participant not authenticated")
		return
	}

	account, err := h.service.GetAccount(c.Request.Context(), participantID, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, onboardingResponse(account))
}

type onboardingView struct {
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
	FullName  string `json:"full_name"`
	Currency  string `json:"currency"`
	OpenedAt  string `json:"opened_at"`
}

func onboardingResponse(account *onboarding.Account) gin.H {
	return gin.H{"success": true, "data": onboardingView{
		AccountID: account.AccountID,
		Status:    account.Status.String(),
		FullName:  account.ApplicantName,
		Currency:  account.Currency,
		OpenedAt:  account.OpenedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}}
}
