package fetcher

import "fmt"

// ErrorType classifies why a Yahoo request failed.
type ErrorType string

const (
	// Yahoo was never reached.
	ErrorTypeNetwork ErrorType = "network"
	// Yahoo throttled the session with a 429.
	ErrorTypeRateLimit ErrorType = "rate_limit"
	ErrorTypeServer    ErrorType = "server"
	// A 4xx other than 429, usually an unknown symbol or a stale crumb.
	ErrorTypeClient ErrorType = "client"
	// The response arrived but its envelope could not be decoded.
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// FetchError is a failed Yahoo request. Retryable failures are retried by the
// HTTP client before they surface.
type FetchError struct {
	Type       ErrorType
	Retryable  bool
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewNetworkError wraps a transport failure such as a refused connection.
func NewNetworkError(cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeNetwork,
		Retryable: true,
		Message:   fmt.Sprintf("network request failed: %v", cause),
		Cause:     cause,
	}
}

// NewRateLimitError reports that Yahoo is throttling the session.
func NewRateLimitError(statusCode int) *FetchError {
	return &FetchError{
		Type:       ErrorTypeRateLimit,
		Retryable:  true,
		StatusCode: statusCode,
		Message:    "rate limit exceeded",
	}
}

// NewServerError reports a 5xx from Yahoo.
func NewServerError(statusCode int) *FetchError {
	return &FetchError{
		Type:       ErrorTypeServer,
		Retryable:  true,
		StatusCode: statusCode,
		Message:    "server returned an error",
	}
}

// NewClientError reports a rejected request with Yahoo's reason.
func NewClientError(statusCode int, message string) *FetchError {
	return &FetchError{
		Type:       ErrorTypeClient,
		Retryable:  false,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewValidationError reports a response body that does not have the expected
// shape.
func NewValidationError(message string) *FetchError {
	return &FetchError{
		Type:      ErrorTypeValidation,
		Retryable: false,
		Message:   message,
	}
}

// NewTimeoutError reports a request that exceeded the configured timeout.
func NewTimeoutError(cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeTimeout,
		Retryable: true,
		Message:   "request timed out",
		Cause:     cause,
	}
}

// ClassifyHTTPError classifies an HTTP status code into an appropriate FetchError.
// Message, when not empty, carries the source's own description of the failure.
func ClassifyHTTPError(statusCode int, message string) *FetchError {
	var e *FetchError
	switch {
	case statusCode == 429:
		e = NewRateLimitError(statusCode)
	case statusCode >= 500:
		e = NewServerError(statusCode)
	case statusCode >= 400:
		e = NewClientError(statusCode, fmt.Sprintf("client error: HTTP %d", statusCode))
	default:
		e = &FetchError{
			Type:       ErrorTypeUnknown,
			Retryable:  false,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		}
	}
	if message != "" {
		e.Message = message
	}
	return e
}
