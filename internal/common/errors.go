package common

import "errors"

var (
	// ErrNotFound is returned by repositories when a key or row is absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidToken reports a token whose payload cannot be decoded.
	ErrInvalidToken = errors.New("invalid token")
)
