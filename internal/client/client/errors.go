package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrRateLimited           = errors.New("too many requests")
	ErrNoSession             = errors.New("no active session")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)

// maxErrorBody caps how much of an error response is retained.
const maxErrorBody = 1 << 20

// APIError is a non-2xx response from the product API. Body holds the raw
// (possibly empty or non-JSON) response body.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

// Is lets errors.Is match status-derived sentinels.
func (e *APIError) Is(target error) bool {
	return statusIs(e.StatusCode, target)
}

// AuthError is a failure reported by the auth provider.
type AuthError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Is(target error) bool {
	return statusIs(e.StatusCode, target)
}

func statusIs(status int, target error) bool {
	switch target {
	case ErrUnauthorized:
		return status == http.StatusUnauthorized || status == http.StatusForbidden
	case ErrRateLimited:
		return status == http.StatusTooManyRequests
	default:
		return false
	}
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{StatusCode: resp.StatusCode, Body: body}
}

// mapTransportError classifies a failure to obtain any response. Context
// cancellation is passed through untouched.
func mapTransportError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
