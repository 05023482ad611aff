package integrations

import (
	"errors"
	"net/http"
)

var (
	// ErrNetwork is returned for connection failures and 5xx responses.
	ErrNetwork = errors.New("network error")

	// ErrTimeout is returned when a request outlives its deadline.
	ErrTimeout = errors.New("request timed out")

	// ErrBadResponse is returned when a response body cannot be decoded.
	ErrBadResponse = errors.New("malformed response")
)

// NewHTTPClient creates an HTTP client for upstream calls. It sets no
// timeout of its own; callers bound each attempt with a context deadline.
func NewHTTPClient() *http.Client {
	return &http.Client{}
}
