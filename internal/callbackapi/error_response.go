package callbackapi

// error_response.go maps lower level errors to the structured error
// response format returned to API clients.

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/issuer-networks/wallet-callback/internal/keyfetch"
	"github.com/issuer-networks/wallet-callback/internal/logger"
)

// ErrorResponse is the structured error body returned by the callback API.
type ErrorResponse struct {

	// The HTTP method used to make the request e.g. GET, POST, etc
	HTTPMethod string `json:"httpMethod"`

	// The URI that was requested
	RequestURI string `json:"requestUri"`

	// The HTTP status code returned
	StatusCode int `json:"statusCode"`

	// A standard short description corresponding to the HTTP status code
	StatusCodeText string `json:"statusCodeText"`

	// A long description corresponding to the HTTP status code with additional information
	StatusCodeMessage string `json:"statusCodeMessage,omitempty"`

	// A unique identifier for the HTTP request within the scope of the API provider
	ProviderCorrelationReference string `json:"providerCorrelationReference,omitempty"`

	// The DateTime corresponding to the error occurring
	ErrorDateTime string `json:"errorDateTime"`

	// An array of errors providing more detail about the root cause
	Errors []DetailedError `json:"errors"`
}

// DetailedError represents a detailed error in the error response.
type DetailedError struct {
	// error code used by the API: 7000-7999 technical, 8000-8999 functional
	ErrorCode        ErrorCode `json:"errorCode"`
	ErrorCodeText    string    `json:"errorCodeText"`
	ErrorCodeMessage string    `json:"errorCodeMessage"`
}

// MapErrorToResponse maps callbackapi.ApiError, keyfetch.FetchError, or
// generic errors to a structured error response.
//
// The error code text is sanitized for the response; the full error
// message is logged server-side by RespondWithErrorResponse. The mapping
// also establishes the appropriate HTTP status code for the error type.
func MapErrorToResponse(err error, r *http.Request) *ErrorResponse {
	requestID := middleware.GetReqID(r.Context())

	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return errorResponseFromApi(apiErr, r, requestID)
	}

	var fetchErr *keyfetch.FetchError
	if errors.As(err, &fetchErr) {
		return errorResponseFromKeyfetch(fetchErr, r, requestID)
	}

	// fallback - not expected; return an internal error response and log
	// the unmapped error
	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Error("BUG: Unmapped error type in MapErrorToResponse",
		slog.String("error_type", fmt.Sprintf("%T", err)),
		slog.String("error", err.Error()),
		slog.String("request_id", requestID),
	)
	return &ErrorResponse{
		HTTPMethod:                   r.Method,
		RequestURI:                   r.RequestURI,
		StatusCode:                   http.StatusInternalServerError,
		StatusCodeText:               http.StatusText(http.StatusInternalServerError),
		StatusCodeMessage:            "Internal Error",
		ProviderCorrelationReference: requestID,
		ErrorDateTime:                time.Now().UTC().Format(time.RFC3339),
		Errors: []DetailedError{
			{
				ErrorCode:        ErrCodeInternalError,
				ErrorCodeText:    "Internal Error",
				ErrorCodeMessage: "An internal error occurred",
			},
		},
	}
}

// errorResponseFromApi maps callbackapi.ApiError to API error responses.
// The error code text is sanitized for the response.
func errorResponseFromApi(err *ApiError, r *http.Request, requestID string) *ErrorResponse {
	var statusCode int
	var errorCodeText string

	switch err.Code() {
	case ErrCodeMalformedRequest:
		statusCode = http.StatusBadRequest
		errorCodeText = "Malformed request"
	case ErrCodeRateLimitExceeded:
		statusCode = http.StatusTooManyRequests
		errorCodeText = "Rate limit exceeded"
	case ErrCodeRequestTooLarge:
		statusCode = http.StatusRequestEntityTooLarge
		errorCodeText = "Request too large"
	case ErrCodeAnchorFetch:
		statusCode = http.StatusServiceUnavailable
		errorCodeText = "Trust anchors unavailable"
	case ErrCodeVerificationFailed:
		statusCode = http.StatusBadRequest
		errorCodeText = "Verification failed"
	default:
		statusCode = http.StatusInternalServerError
		errorCodeText = "Internal Error"
	}

	return &ErrorResponse{
		HTTPMethod:                   r.Method,
		RequestURI:                   r.RequestURI,
		StatusCode:                   statusCode,
		StatusCodeText:               http.StatusText(statusCode),
		StatusCodeMessage:            errorCodeText,
		ProviderCorrelationReference: requestID,
		ErrorDateTime:                time.Now().UTC().Format(time.RFC3339),
		Errors: []DetailedError{
			{
				ErrorCode:        err.Code(),
				ErrorCodeText:    errorCodeText,
				ErrorCodeMessage: err.Error(),
			},
		},
	}
}

// errorResponseFromKeyfetch maps keyfetch.FetchError to API error
// responses. Anchor retrieval problems are never the callback sender's
// fault, so they map to 503 rather than a 4xx.
func errorResponseFromKeyfetch(err *keyfetch.FetchError, r *http.Request, requestID string) *ErrorResponse {
	return &ErrorResponse{
		HTTPMethod:                   r.Method,
		RequestURI:                   r.RequestURI,
		StatusCode:                   http.StatusServiceUnavailable,
		StatusCodeText:               http.StatusText(http.StatusServiceUnavailable),
		StatusCodeMessage:            "Trust anchors unavailable",
		ProviderCorrelationReference: requestID,
		ErrorDateTime:                time.Now().UTC().Format(time.RFC3339),
		Errors: []DetailedError{
			{
				ErrorCode:        ErrCodeAnchorFetch,
				ErrorCodeText:    "Trust anchors unavailable",
				ErrorCodeMessage: err.Error(),
			},
		},
	}
}
