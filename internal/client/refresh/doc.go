// Package refresh serializes access-token refreshes.
//
// A Coordinator is a two-state machine. In Idle, the first caller that needs
// a new token moves it to Refreshing and starts exactly one refresh call.
// Every caller that arrives while Refreshing is appended to a typed pending
// list instead of starting another call. When the call settles the pending
// list is taken and the state returns to Idle in one critical section, and
// every waiter receives the same outcome: the same new access token, or the
// same *Error.
//
// A failed refresh tears the session down, whether no refresh token was
// stored, the server rejected it, or the call never completed: the token
// store is cleared and, if a token existed beforehand, an auth:logout event
// with reason token_expired is published after the waiters are released.
package refresh
