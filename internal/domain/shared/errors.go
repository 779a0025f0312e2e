package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Retryable marks failures that are safe to retry without side effects
	Retryable bool  `json:"retryable,omitempty"`
	cause     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, ErrNotFound) holds for any NOT_FOUND error.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a domain error with the code of base and a formatted message
func (e *DomainError) Newf(format string, args ...any) *DomainError {
	return &DomainError{
		Code:      e.Code,
		Message:   fmt.Sprintf(format, args...),
		Retryable: e.Retryable,
	}
}

// Wrap creates a domain error with the code of base, wrapping cause
func (e *DomainError) Wrap(cause error, message string) *DomainError {
	return &DomainError{
		Code:      e.Code,
		Message:   message,
		Retryable: e.Retryable,
		cause:     cause,
	}
}

// Error codes shared across the order, invoice and sequence domains
const (
	CodeNotFound                 = "NOT_FOUND"
	CodeInvalidInput             = "INVALID_INPUT"
	CodeConcurrencyConflict      = "CONCURRENT_MODIFICATION"
	CodeSequenceExhausted        = "SEQUENCE_EXHAUSTED"
	CodeDuplicateInvoice         = "DUPLICATE_INVOICE"
	CodeInvalidTransition        = "INVALID_TRANSITION"
	CodeRenderFailure            = "RENDER_FAILURE"
	CodeUnknownReference         = "UNKNOWN_REFERENCE"
	CodeExternalSignatureFailure = "EXTERNAL_SIGNATURE_FAILURE"
	CodeCustomerInUse            = "CUSTOMER_IN_USE"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")

	ErrSequenceExhausted        = NewDomainError(CodeSequenceExhausted, "Identifier sequence exhausted")
	ErrDuplicateInvoice         = NewDomainError(CodeDuplicateInvoice, "Order already has an invoice")
	ErrInvalidTransition        = NewDomainError(CodeInvalidTransition, "Status transition not allowed")
	ErrRenderFailure            = &DomainError{Code: CodeRenderFailure, Message: "Document rendering failed", Retryable: true}
	ErrUnknownReference         = NewDomainError(CodeUnknownReference, "No order matches the signature reference")
	ErrExternalSignatureFailure = NewDomainError(CodeExternalSignatureFailure, "Signature request failed")
	ErrCustomerInUse            = NewDomainError(CodeCustomerInUse, "Customer is referenced by orders")
)
