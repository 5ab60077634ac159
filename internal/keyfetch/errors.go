package keyfetch

import "fmt"

const (
	// ErrCodeFetch indicates a transport-level failure talking to the
	// trust-anchor endpoint.
	ErrCodeFetch = "FETCH_ERROR"

	// ErrCodeParse indicates the endpoint responded but the body could not
	// be parsed into a trust-anchor set.
	ErrCodeParse = "PARSE_ERROR"

	// ErrCodeConfig indicates the source was constructed with invalid
	// configuration.
	ErrCodeConfig = "CONFIG_ERROR"
)

// FetchError is a structured error for trust-anchor retrieval failures.
type FetchError struct {
	code    string
	message string
	wrapped error
}

func (e *FetchError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *FetchError) Unwrap() error {
	return e.wrapped
}

// Code returns the machine-readable error code.
func (e *FetchError) Code() string {
	return e.code
}

// NewFetchError creates a transport-level fetch error.
func NewFetchError(message string) *FetchError {
	return &FetchError{code: ErrCodeFetch, message: message}
}

// WrapFetchError wraps an underlying transport error.
func WrapFetchError(err error, message string) *FetchError {
	return &FetchError{code: ErrCodeFetch, message: message, wrapped: err}
}

// NewParseError creates a response-parsing error.
func NewParseError(message string) *FetchError {
	return &FetchError{code: ErrCodeParse, message: message}
}

// WrapParseError wraps an underlying parse error.
func WrapParseError(err error, message string) *FetchError {
	return &FetchError{code: ErrCodeParse, message: message, wrapped: err}
}

// NewConfigError creates a configuration error.
func NewConfigError(message string) *FetchError {
	return &FetchError{code: ErrCodeConfig, message: message}
}
