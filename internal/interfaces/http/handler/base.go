package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openfinance/backend/internal/domain/shared"
	"github.com/openfinance/backend/internal/interfaces/http/dto"
	"github.com/openfinance/backend/internal/interfaces/http/middleware"
)

// Headers specific to the command and read protocols
const (
	HeaderIdempotencyOutcome = "X-Idempotency-Outcome"
	HeaderCache              = "X-Cache"
	HeaderSignature          = "X-JWS-Signature"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// getParticipantID extracts the authenticated participant or fails the
// request; handlers behind ParticipantAuth always find one.
func getParticipantID(c *gin.Context) (string, bool) {
	if id := middleware.GetParticipantID(c); id != "" {
		return id, true
	}
	return "", false
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NotModified sends a 304 with no body
func (h *BaseHandler) NotModified(c *gin.Context) {
	c.Status(http.StatusNotModified)
}

// Error sends an error response with an explicit status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, shared.CodeInvalidRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// HandleError converts domain errors to HTTP responses, deriving the status
// code from the error code. Unclassified errors surface as 500 without
// leaking internals.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		statusCode := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(statusCode, dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, getRequestID(c)))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		shared.CodeInternalError,
		"An unexpected error occurred",
		getRequestID(c),
	))
}

// setIdempotencyOutcome marks whether the response was served from a stored
// idempotency record
func setIdempotencyOutcome(c *gin.Context, replay bool) {
	if replay {
		c.Header(HeaderIdempotencyOutcome, "HIT")
	} else {
		c.Header(HeaderIdempotencyOutcome, "MISS")
	}
}

// setCacheOutcome marks whether a read was served from the cache layer
func setCacheOutcome(c *gin.Context, hit bool) {
	if hit {
		c.Header(HeaderCache, "HIT")
	} else {
		c.Header(HeaderCache, "MISS")
	}
}
