package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/edi/backend/internal/domain/shared"
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
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeDuplicateInvoice, http.StatusConflict},
		{ErrCodeInvalidTransition, http.StatusConflict},
		{ErrCodeCustomerInUse, http.StatusConflict},
		{ErrCodeSequenceExhausted, http.StatusServiceUnavailable},
		{ErrCodeRenderFailure, http.StatusBadGateway},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
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
		{shared.CodeNotFound, ErrCodeNotFound},
		{shared.CodeUnknownReference, ErrCodeNotFound},
		{shared.CodeInvalidInput, ErrCodeInvalidInput},
		{shared.CodeConcurrencyConflict, ErrCodeConcurrencyConflict},
		{shared.CodeDuplicateInvoice, ErrCodeDuplicateInvoice},
		{shared.CodeSequenceExhausted, ErrCodeSequenceExhausted},
		{shared.CodeRenderFailure, ErrCodeRenderFailure},
		{ErrCodeNotFound, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestEveryDomainCodeHasAStatus(t *testing.T) {
	codes := []string{
		shared.CodeNotFound,
		shared.CodeInvalidInput,
		shared.CodeConcurrencyConflict,
		shared.CodeSequenceExhausted,
		shared.CodeDuplicateInvoice,
		shared.CodeInvalidTransition,
		shared.CodeRenderFailure,
		shared.CodeUnknownReference,
		shared.CodeExternalSignatureFailure,
		shared.CodeCustomerInUse,
	}
	for _, code := range codes {
		_, ok := ErrorCodeHTTPStatus[NormalizeErrorCode(code)]
		assert.True(t, ok, code)
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	empty := NewSuccessResponseWithMeta(nil, 0, 1, 0)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestRetryableErrorResponse_JSON(t *testing.T) {
	resp := NewRetryableErrorResponse(ErrCodeRenderFailure, "render failed", "req-1")
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	errBody := decoded["error"].(map[string]any)
	assert.Equal(t, "RENDER_FAILURE", errBody["code"])
	assert.Equal(t, "req-1", errBody["request_id"])
	assert.Equal(t, true, errBody["retryable"])
	assert.NotContains(t, decoded, "data")
}

func TestNewErrorResponse_OmitsRetryable(t *testing.T) {
	raw, err := json.Marshal(NewErrorResponse(ErrCodeNotFound, "missing", ""))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "retryable")
	assert.NotContains(t, string(raw), "request_id")
}
