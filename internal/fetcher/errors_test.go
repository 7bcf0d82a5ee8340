package fetcher

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		message   string
		wantType  ErrorType
		retryable bool
		wantError string
	}{
		{429, "", ErrorTypeRateLimit, true, "rate_limit error (status 429): rate limit exceeded"},
		{500, "", ErrorTypeServer, true, "server error (status 500): server returned an error"},
		{503, "", ErrorTypeServer, true, "server error (status 503): server returned an error"},
		{404, "", ErrorTypeClient, false, "client error (status 404): client error: HTTP 404"},
		{404, "Quote not found for symbol: ZZZZ", ErrorTypeClient, false, "client error (status 404): Quote not found for symbol: ZZZZ"},
		{302, "", ErrorTypeUnknown, false, "unknown error (status 302): unexpected status code: 302"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			err := ClassifyHTTPError(tt.status, tt.message)
			if err.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", err.Type, tt.wantType)
			}
			if err.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", err.Retryable, tt.retryable)
			}
			if err.Error() != tt.wantError {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantError)
			}
		})
	}
}

func TestClassifyTransportError(t *testing.T) {
	t.Run("deadline", func(t *testing.T) {
		err := ClassifyTransportError(fmt.Errorf("get: %w", context.DeadlineExceeded))
		if err.Type != ErrorTypeTimeout {
			t.Errorf("Type = %q, want %q", err.Type, ErrorTypeTimeout)
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Error("classified error does not unwrap to context.DeadlineExceeded")
		}
	})

	t.Run("network", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ClassifyTransportError(cause)
		if err.Type != ErrorTypeNetwork {
			t.Errorf("Type = %q, want %q", err.Type, ErrorTypeNetwork)
		}
		if err.Error() != "network error: network request failed: connection refused" {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("already classified", func(t *testing.T) {
		orig := NewValidationError("empty payload")
		if got := ClassifyTransportError(fmt.Errorf("wrap: %w", orig)); got != orig {
			t.Errorf("ClassifyTransportError() = %v, want the original error", got)
		}
	})
}
