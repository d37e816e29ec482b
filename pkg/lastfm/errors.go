package lastfm

import (
	"errors"
	"fmt"
)

// Error represents a Last.fm API error.
//
// The Error type provides structured error information including
// the Last.fm error code and message. It implements error, and
// provides additional methods for retry logic.
type Error struct {
	Code    int    // Last.fm error code
	Message string // Error message from Last.fm
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("lastfm: error %d: %s", e.Code, e.Message)
}

// Is checks if the target error is a Last.fm error with the same code.
//
// This allows errors.Is() to work with *Error types.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Temporary returns true if the error is temporary and the request
// should be retried.
//
// The following Last.fm error codes are considered temporary:
//   - 11: Service Offline - temporarily unavailable
//   - 16: Service Temporarily Unavailable
//   - 29: Rate Limit Exceeded
func (e *Error) Temporary() bool {
	switch e.Code {
	case ErrCodeServiceOffline, ErrCodeTempUnavailable, ErrCodeRateLimitExceeded:
		return true
	default:
		return false
	}
}

// Common Last.fm error codes.
const (
	ErrCodeInvalidService       = 2
	ErrCodeInvalidMethod        = 3
	ErrCodeAuthenticationFailed = 4
	ErrCodeInvalidFormat        = 5
	ErrCodeInvalidParameters    = 6
	ErrCodeInvalidResourceSpec  = 7
	ErrCodeOperationFailed      = 8
	ErrCodeInvalidSessionKey    = 9
	ErrCodeInvalidAPIKey        = 10
	ErrCodeServiceOffline       = 11
	ErrCodeSubscribersOnly      = 12
	ErrCodeInvalidSignature     = 13
	ErrCodeUnauthorizedToken    = 14
	ErrCodeExpiredToken         = 15
	ErrCodeTempUnavailable      = 16
	ErrCodeRateLimitExceeded    = 29
)

// Predefined errors for common cases.
var (
	// ErrNoSessionKey is returned when an operation requires authentication
	// but no session key has been set.
	ErrNoSessionKey = errors.New("lastfm: session key required")

	// ErrNoAPISecret is returned when a signed call is made by a client
	// configured without an API secret.
	ErrNoAPISecret = errors.New("lastfm: api secret required for signed calls")

	// ErrInvalidConfig is returned when client configuration is invalid.
	ErrInvalidConfig = errors.New("lastfm: invalid configuration")

	// ErrInvalidArgument is returned when a call is given unusable input,
	// such as an empty tag list or an oversized scrobble batch.
	ErrInvalidArgument = errors.New("lastfm: invalid argument")

	// ErrInvalidIdentity matches every *IdentityError.
	ErrInvalidIdentity = errors.New("lastfm: invalid identity")

	// ErrNotFound is returned when a response lacks the element a
	// lookup asked for, such as a user with nothing playing.
	ErrNotFound = errors.New("lastfm: not found")
)

// IdentityError is returned when an entity cannot be registered because an
// identity-determining field is missing.
type IdentityError struct {
	Kind  string // Entity kind name, e.g. "album"
	Field string // The missing field
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("lastfm: cannot identify %s: missing %s", e.Kind, e.Field)
}

// Is makes errors.Is(err, ErrInvalidIdentity) hold for any IdentityError.
func (e *IdentityError) Is(target error) bool {
	return target == ErrInvalidIdentity
}

// isRetryableError determines if an API error should trigger a retry.
func isRetryableError(err error) bool {
	var lastfmErr *Error
	if errors.As(err, &lastfmErr) {
		return lastfmErr.Temporary()
	}
	return false
}
