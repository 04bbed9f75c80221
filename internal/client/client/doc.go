// Package client contains the HTTP client of the EDA chat backend and the
// local database bootstrap.
//
// # Overview
//
// HTTPClient maps every backend endpoint to one method. Each request carries
// "Authorization: Bearer <access token>" when a token is stored. The token
// pipeline works as follows:
//
//  1. A stored token that is already expired is never sent. The request
//     first obtains a fresh token from the refresh coordinator.
//  2. A 401 answer to a request that has not been retried yet is handed to
//     the coordinator. Once the refresh settles the request is sent again,
//     exactly once, with the new token.
//  3. A 503 answer never triggers a refresh. It is published on the event
//     bus as a server:error event and returned to the caller.
//
// The auth endpoints (/login, /register, /refresh, /logout) and /health are
// outside the refresh protocol.
//
// # Error Handling
//
// Non-2xx responses are returned as *RequestError, which also matches
// ErrServiceUnavailable, ErrUnauthorized or ErrNotFound with errors.Is.
// Refresh failures are returned as *RefreshError and match ErrRefreshFailed.
// EnsureValidToken without any stored token fails with ErrNoToken. A request
// that never got a response matches ErrUnreachable.
//
// # Local Storage
//
// InitDatabase opens the SQLite file that holds the token pair and applies
// the embedded goose migrations.
package client
