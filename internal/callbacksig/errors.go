package callbacksig

// errors.go defines the structured errors returned by the decoding helpers
// in this package.
//
// Note the verification pipeline itself never returns errors - every
// cryptographic or parsing failure inside Verify collapses to a
// VerificationOutcome reason code (see pipeline.go). The error types here
// are only produced at the decoding boundary (DecodeEnvelope and the
// canonical encoder).

import "fmt"

type ErrorCode string

const (
	// ErrCodeValidation is used for structurally invalid input: missing
	// required fields, bad base64, or invalid JSON.
	ErrCodeValidation ErrorCode = "validation"

	// ErrCodeEncoding is used when canonical byte-string construction fails
	// (a segment exceeding the 32-bit length range).
	ErrCodeEncoding ErrorCode = "encoding"
)

// SigError represents a structured error from the callbacksig package.
type SigError struct {

	// code is the error code
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error
}

func (e *SigError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *SigError) Code() ErrorCode { return e.code }
func (e *SigError) Unwrap() error   { return e.wrapped }

// NewValidationError creates a validation error for invalid input.
// Use this for missing required fields, bad encoding, or invalid JSON.
func NewValidationError(msg string) error {
	return &SigError{code: ErrCodeValidation, message: msg}
}

// WrapValidationError wraps an existing error as a validation error.
func WrapValidationError(err error, msg string) error {
	return &SigError{code: ErrCodeValidation, message: msg, wrapped: err}
}

// NewEncodingError creates a canonical-encoding error.
func NewEncodingError(msg string) error {
	return &SigError{code: ErrCodeEncoding, message: msg}
}
