package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials means the upstream client id or secret is not
	// configured. Fatal; surfaced to the operator.
	ErrMissingCredentials = errors.New("missing_upstream_credentials")

	// ErrMissingRefreshToken means no refresh token exists in the store,
	// in memory, or in the environment.
	ErrMissingRefreshToken = errors.New("missing_refresh_token")

	// ErrRefreshRejected means the upstream token endpoint rejected the
	// refresh token. The credential must be rotated out-of-band; retrying
	// with a known-bad token risks upstream lockout.
	ErrRefreshRejected = errors.New("refresh_token_rejected")
)

// UpstreamError carries the HTTP status and body of a failed upstream call
// that is fatal to the run (first orders page, token exchange transport).
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Body)
}
