package twitch

import (
	"fmt"

	"vodgrep/internal/httputil"
)

// AuthError means no bearer token could be obtained: the identity endpoint
// is unreachable, refused the credentials, or answered without a token.
// Nothing else can run without one.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error { return e.Err }

// NotFoundError means a channel name did not resolve to an account.
type NotFoundError struct {
	Channel string
	Err     error // Set when the name was rejected before any lookup
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("channel %q could not be found: %v", e.Channel, e.Err)
	}
	return fmt.Sprintf("channel %q could not be found", e.Channel)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// InvalidIDError means a video id did not resolve to a broadcast.
type InvalidIDError struct {
	ID  int64
	Err error // Underlying request failure, nil when the video simply does not exist
}

func (e *InvalidIDError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("video ID %d is invalid: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("video ID %d is invalid", e.ID)
}

func (e *InvalidIDError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx answer from the API.
type HTTPError = httputil.StatusError
