// Package cli provides the interactive edachat terminal client.
//
// It wires configuration, the local session database, the API client and
// the state store into a REPL. Typical flow: restore the stored session,
// start a background health watcher, then read commands until the user
// exits.
//
// Key features:
//   - Register / Login / Logout
//   - Rooms: list, create, open, rename, delete, clear
//   - Chat: send a message to the open room, show its history
//   - Analytics: EDA summary, breakdowns, time series, anomalies, charts
//
// Server-error and session-expiry signals are printed as notices while the
// REPL runs. The REPL is started via App.Run(ctx), which blocks until the
// user exits. See App, StartOnlineStatusWatcher and runREPL for details.
package cli
