package state

import "errors"

var (
	// ErrRoomNotFound is returned when the backend answers without a room.
	ErrRoomNotFound = errors.New("room not found")

	// ErrSessionChanged is returned when the session ended while the
	// request was in flight and its result was discarded.
	ErrSessionChanged = errors.New("session changed while request was in flight")
)
