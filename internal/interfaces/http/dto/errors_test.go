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
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeRequestInProgress, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeRequestCanceled, http.StatusRequestTimeout},
		{ErrCodeUnavailable, http.StatusServiceUnavailable},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"REQUEST_IN_PROGRESS", ErrCodeRequestInProgress},
		{"INSUFFICIENT_STOCK", ErrCodeInsufficientStock},
		{"INVALID_REASON", ErrCodeInvalidInput},
		{"INVALID_QUANTITY", ErrCodeInvalidInput},
		{"LOT_LOCKED", ErrCodeBusinessRule},
		{ErrCodeNotFound, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "quantity", Message: "Must be at least 1"},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])

	errInfo := decoded["error"].(map[string]any)
	assert.Equal(t, ErrCodeValidation, errInfo["code"])
	assert.Equal(t, "req-1", errInfo["request_id"])
	assert.Len(t, errInfo["details"], 1)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 5, 1, 2)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta(nil, 5, 1, 0)
	assert.Equal(t, 0, resp.Meta.TotalPages)
}
