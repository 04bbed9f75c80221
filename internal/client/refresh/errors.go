package refresh

import (
	"errors"
	"fmt"
)

var (
	// ErrRefreshFailed matches every error returned by Coordinator.Refresh.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrNoRefreshToken is the cause when nothing can be refreshed.
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrIncompleteResponse is the cause when the refresh endpoint answered
	// 2xx without an access token.
	ErrIncompleteResponse = errors.New("refresh response has no access token")
)

// Error is the failure shared by all callers of one refresh. It matches
// ErrRefreshFailed and unwraps to its cause.
type Error struct {
	Cause error
	// SessionCleared is set when the failure cleared the token store.
	SessionCleared bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", ErrRefreshFailed, e.Cause)
}

func (e *Error) Unwrap() []error {
	return []error{ErrRefreshFailed, e.Cause}
}

// statusCoder is implemented by transport errors that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// isRejection reports whether the server refused the refresh token itself,
// as opposed to being unreachable or failing internally. It only selects
// the metrics outcome; both kinds end the session.
func isRejection(err error) bool {
	if errors.Is(err, ErrNoRefreshToken) || errors.Is(err, ErrIncompleteResponse) {
		return true
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		code := sc.StatusCode()
		return code >= 400 && code < 500
	}
	return false
}
