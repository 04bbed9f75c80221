package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/edachat/internal/client/refresh"
	"github.com/dmitrijs2005/edachat/internal/common"
)

var (
	ErrNoToken            = errors.New("no access token available")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = common.ErrNotFound
	ErrUnreachable        = errors.New("server unreachable")

	// ErrIncompleteLogin is returned when /login succeeded without handing
	// out both tokens. Nothing is stored in that case.
	ErrIncompleteLogin = errors.New("login response has no token pair")

	// ErrRefreshFailed matches every *RefreshError.
	ErrRefreshFailed = refresh.ErrRefreshFailed
)

// RefreshError is returned when a request needed a new token and the
// refresh failed. All requests waiting on that refresh get the same value.
type RefreshError = refresh.Error

// RequestError is any non-2xx response. It unwraps to ErrServiceUnavailable,
// ErrUnauthorized or ErrNotFound for the matching statuses.
type RequestError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *RequestError) StatusCode() int {
	return e.Status
}

func (e *RequestError) Unwrap() error {
	switch e.Status {
	case http.StatusServiceUnavailable:
		return ErrServiceUnavailable
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// ServerMessage returns the message the backend attached to err, if err is
// a *RequestError.
func ServerMessage(err error) (string, bool) {
	var re *RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message, true
	}
	return "", false
}
