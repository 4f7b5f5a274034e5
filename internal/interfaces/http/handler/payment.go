package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	paymentapp "github.com/openfinance/backend/internal/application/payment"
	"github.com/openfinance/backend/internal/domain/payment"
	"github.com/openfinance/backend/internal/interfaces/http/middleware"
)

// PaymentHandler serves the payment initiation vertical
type PaymentHandler struct {
	BaseHandler
	service *paymentapp.Service
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *paymentapp.Service) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers payment routes on the given router group
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.Submit)
		payments.GET("/:id", h.Get)
	}
}

// Submit handles POST /payments
func (h *PaymentHandler) Submit(c *gin.Context) {
	participantID, ok := getParticipantID(c)
	if !ok {
		h.Unauthorized(c, "Participant not authenticated")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Request body cannot be read")
		return
	}

	var initiation payment.Initiation
	if err := json.Unmarshal(body, &initiation); err != nil {
		h.BadRequest(c, "Request body is not valid JSON")
		return
	}

	result, err := h.service.SubmitPayment(c.Request.Context(), paymentapp.SubmitPaymentCommand{
		IdempotencyKey: c.GetHeader(middleware.HeaderIdempotencyKey),
		ParticipantID:  participantID,
		ConsentID:      c.GetHeader(middleware.HeaderConsentID),
		Payload:        string(body),
		Signature:      c.GetHeader(HeaderSignature),
		Initiation:     initiation,
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

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	participantID, ok := getParticipantID(c)
	if !ok {
		h.Unauthorized(c, "Participant not authenticated")
		return
	}

	tx, err := h.service.GetPayment(c.Request.Context(), participantID, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, paymentResponse(tx))
}

type paymentView struct {
	PaymentID       string  `json:"payment_id"`
	Status          string  `json:"status"`
	ConsentID       string  `json:"consent_id"`
	Amount          string  `json:"amount"`
	Currency        string  `json:"currency"`
	CreditorAccount string  `json:"creditor_account"`
	CreditorName    string  `json:"creditor_name"`
	ExecutionDate   *string `json:"execution_date,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

func paymentResponse(tx *payment.Transaction) gin.H {
	view := paymentView{
		PaymentID:       tx.PaymentID,
		Status:          tx.Status.String(),
		ConsentID:       tx.ConsentID,
		Amount:          tx.Amount.StringFixed(2),
		Currency:        tx.Currency,
		CreditorAccount: tx.CreditorAccount,
		CreditorName:    tx.CreditorName,
		CreatedAt:       tx.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if tx.ExecutionDate != nil {
		date := tx.ExecutionDate.UTC().Format("2006-01-02")
		view.ExecutionDate = &date
	}
	return gin.H{"success": true, "data": view}
}
