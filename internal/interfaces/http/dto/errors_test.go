package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeAlreadyProcessed, http.StatusConflict},
		{ErrCodeTransientConflict, http.StatusServiceUnavailable},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeSystem, http.StatusInternalServerError},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestDomainCodesPassThrough(t *testing.T) {
	assert.Equal(t, "INSUFFICIENT_STOCK", ErrCodeInsufficientStock)
	assert.Equal(t, "ALREADY_PROCESSED", ErrCodeAlreadyProcessed)
	assert.Equal(t, "TRANSIENT_CONFLICT", ErrCodeTransientConflict)
	assert.Equal(t, "SYSTEM_ERROR", ErrCodeSystem)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithDetails(ErrCodeInsufficientStock, "Insufficient stock available", "req-1",
		[]map[string]any{{"sku_id": "a", "requested": 1, "available": 0}})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")

	errInfo := decoded["error"].(map[string]any)
	assert.Equal(t, "INSUFFICIENT_STOCK", errInfo["code"])
	assert.Equal(t, "req-1", errInfo["request_id"])
	assert.Len(t, errInfo["details"], 1)
}

func TestSuccessResponseOmitsError(t *testing.T) {
	raw, err := json.Marshal(NewSuccessResponse(map[string]int{"cleaned_count": 3}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"cleaned_count":3}}`, string(raw))
}

func TestValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "", []ValidationDetail{
		{Field: "quantity", Message: "Must be greater than 0"},
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidInput, resp.Error.Code)
	assert.Empty(t, resp.Error.RequestID)
	assert.Equal(t, []ValidationDetail{{Field: "quantity", Message: "Must be greater than 0"}}, resp.Error.Details)
}
