// Package handler holds the gin handlers of the inventory API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(logger.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// ErrorWithCode sends an error response, deriving the status from the code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithDetails sends an error response carrying structured details
func (h *BaseHandler) ErrorWithDetails(c *gin.Context, code, message string, details any) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithDetails(code, message, getRequestID(c), details))
}

// BadRequest sends a 400 INVALID_INPUT response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeInvalidInput, message)
}

// HandleError writes err as an error envelope. Domain errors keep their code
// and details; anything else is a SYSTEM_ERROR whose cause is logged but not
// returned to the caller.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		if dto.GetHTTPStatus(domainErr.Code) >= http.StatusInternalServerError {
			logger.GetGinLogger(c).Error("Request failed", zap.String("code", domainErr.Code), zap.Error(err))
		}
		h.ErrorWithDetails(c, domainErr.Code, domainErr.Message, domainErr.Details)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		logger.GetGinLogger(c).Warn("Request deadline exceeded", zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodeTimeout, "Request timed out")
		return
	}

	logger.GetGinLogger(c).Error("Unexpected error", zap.Error(err))
	h.ErrorWithCode(c, dto.ErrCodeSystem, "An unexpected error occurred")
}
