package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>, except domain codes that clients
// branch on, which pass through unchanged.

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Domain error codes, kept verbatim from the domain layer
const (
	ErrCodeDuplicateInvoice         = "DUPLICATE_INVOICE"
	ErrCodeInvalidTransition        = "INVALID_TRANSITION"
	ErrCodeCustomerInUse            = "CUSTOMER_IN_USE"
	ErrCodeSequenceExhausted        = "SEQUENCE_EXHAUSTED"
	ErrCodeRenderFailure            = "RENDER_FAILURE"
	ErrCodeExternalSignatureFailure = "EXTERNAL_SIGNATURE_FAILURE"
	// ErrCodeDigestMismatch means a frozen document no longer matches its hash
	ErrCodeDigestMismatch = "DIGEST_MISMATCH"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeDuplicateInvoice:         http.StatusConflict,
	ErrCodeInvalidTransition:        http.StatusConflict,
	ErrCodeCustomerInUse:            http.StatusConflict,
	ErrCodeSequenceExhausted:        http.StatusServiceUnavailable,
	ErrCodeRenderFailure:            http.StatusBadGateway,
	ErrCodeExternalSignatureFailure: http.StatusBadGateway,
	ErrCodeDigestMismatch:           http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to their API form.
// Codes absent from the map are returned unchanged.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"UNKNOWN_REFERENCE":       ErrCodeNotFound,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"CONCURRENT_MODIFICATION": ErrCodeConcurrencyConflict,
}

// NormalizeErrorCode converts a domain error code to the API format
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
