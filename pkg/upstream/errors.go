package upstream

import "errors"

var (
	// ErrEmptyToken is returned before any network call when a token-bearing
	// operation receives an empty token.
	ErrEmptyToken = errors.New("upstream.empty_token")

	// ErrUnauthorized is returned when the platform rejects the credential
	// or token (HTTP 401/403).
	ErrUnauthorized = errors.New("upstream.unauthorized")

	// ErrUnexpectedStatus is returned for any other non-2xx response.
	ErrUnexpectedStatus = errors.New("upstream.unexpected_status")

	// ErrRequestFailed wraps transport-level failures (timeouts, refused
	// connections).
	ErrRequestFailed = errors.New("upstream.request_failed")
)
