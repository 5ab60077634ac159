package callbackapi

// errors.go defines the error codes used by the callback API

import "fmt"

// ApiError represents a structured error from the callbackapi package.
type ApiError struct {
	// code is the callback API error code
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error
}

func (e *ApiError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *ApiError) Code() ErrorCode { return e.code }
func (e *ApiError) Unwrap() error   { return e.wrapped }

// ErrorCode is used in errors returned by the callback API.
//
// Codes follow the convention of splitting the range:
//
//   - 7000-7999 for technical errors - the request could not be processed
//     because of a problem with the supplied data or the server.
//   - 8000-8999 for functional errors - the request was technically valid
//     but a business rule prevented processing it.
type ErrorCode int

const (

	// ErrCodeMalformedRequest is used when the request body is not valid
	// JSON or is structurally incomplete.
	ErrCodeMalformedRequest ErrorCode = 7001

	// ErrCodeInternalError is used when an internal server error occurs.
	ErrCodeInternalError ErrorCode = 7002

	// ErrCodeRateLimitExceeded is used when the rate limit is exceeded
	// - only used in the middleware.
	ErrCodeRateLimitExceeded ErrorCode = 7003

	// ErrCodeRequestTooLarge is used when the request body is too large
	// - only used in the middleware.
	ErrCodeRequestTooLarge ErrorCode = 7004

	// ErrCodeAnchorFetch is used when the trust-anchor endpoint cannot be
	// reached or its response cannot be parsed.
	ErrCodeAnchorFetch ErrorCode = 7005

	// ErrCodeVerificationFailed is used when a structurally valid callback
	// payload fails signature, expiry or recipient checks. The reason tag
	// in the response body identifies which check failed.
	ErrCodeVerificationFailed ErrorCode = 8001
)

// NewMalformedRequestError creates an error for malformed requests.
func NewMalformedRequestError(msg string) error {
	return &ApiError{code: ErrCodeMalformedRequest, message: msg}
}

// WrapMalformedRequestError wraps an existing error as a malformed request error.
func WrapMalformedRequestError(err error, msg string) error {
	return &ApiError{code: ErrCodeMalformedRequest, message: msg, wrapped: err}
}

// NewInternalError creates an internal error for unexpected failures.
func NewInternalError(msg string) error {
	return &ApiError{code: ErrCodeInternalError, message: msg}
}

// WrapInternalError wraps an existing error as an internal error.
func WrapInternalError(err error, msg string) error {
	return &ApiError{code: ErrCodeInternalError, message: msg, wrapped: err}
}

// NewRateLimitError creates a rate limit exceeded error.
func NewRateLimitError(msg string) error {
	return &ApiError{code: ErrCodeRateLimitExceeded, message: msg}
}

// NewRequestTooLargeError creates a request too large error.
func NewRequestTooLargeError(msg string) error {
	return &ApiError{code: ErrCodeRequestTooLarge, message: msg}
}

// WrapAnchorFetchError wraps a trust-anchor retrieval failure.
func WrapAnchorFetchError(err error, msg string) error {
	return &ApiError{code: ErrCodeAnchorFetch, message: msg, wrapped: err}
}
