package state

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/edachat/internal/client/client"
	"github.com/dmitrijs2005/edachat/internal/client/events"
)

const (
	loginFailed        = "Login failed"
	registrationFailed = "Registration failed"
)

// Bootstrap restores the session found in storage. A non-expired token
// marks the store authenticated, then the room list is loaded and the last
// selected room restored side by side. An expired token is purged without
// any signal.
func (s *Store) Bootstrap(ctx context.Context) error {
	if !s.api.IsAuthenticated(ctx) {
		has, err := s.creds.HasAny(ctx)
		if err != nil {
			return err
		}
		if has {
			s.log.Debug(ctx, "discarding expired session")
			return s.creds.Clear(ctx)
		}
		return nil
	}

	s.apply(s.generation(), func(st *State) { st.Authenticated = true })

	var g errgroup.Group
	g.Go(func() error {
		if _, err := s.LoadRooms(ctx); err != nil {
			s.log.Warn(ctx, "load rooms on startup", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		return s.InitializeFromStorage(ctx)
	})
	return g.Wait()
}

// Login authenticates and marks the store authenticated. On failure the
// server's message, or a generic one, is kept in State.Error.
func (s *Store) Login(ctx context.Context, username, password string) error {
	gen := s.generation()
	s.apply(gen, func(st *State) {
		st.Loading = true
		st.Error = ""
	})

	_, err := s.api.Login(ctx, username, password)
	if err == nil && !s.api.IsAuthenticated(ctx) {
		// The flag follows the stored credentials, never the status code.
		err = client.ErrIncompleteLogin
	}

	s.apply(gen, func(st *State) {
		st.Loading = false
		if err != nil {
			st.Error = failureMessage(err, loginFailed)
			return
		}
		st.Authenticated = true
		st.Username = username
	})
	return err
}

func (s *Store) Register(ctx context.Context, username, password string) error {
	gen := s.generation()
	s.apply(gen, func(st *State) {
		st.Loading = true
		st.Error = ""
	})

	_, err := s.api.Register(ctx, username, password)

	s.apply(gen, func(st *State) {
		st.Loading = false
		if err != nil {
			st.Error = failureMessage(err, registrationFailed)
		}
	})
	return err
}

// Logout ends the session: the backend is told on a best-effort basis and
// every piece of state and storage is cleared regardless.
func (s *Store) Logout(ctx context.Context) error {
	s.reset()
	s.forgetRoomID(ctx)
	return s.api.Logout(ctx)
}

// onSessionExpired handles auth:logout. The tokens are already gone, so
// only local state is torn down, and only if a session is showing.
func (s *Store) onSessionExpired(e events.Event) {
	if !s.Snapshot().Authenticated {
		return
	}
	ctx := context.Background()
	s.log.Info(ctx, "session expired", "reason", e.Reason)
	s.reset()
	s.forgetRoomID(ctx)
	if err := s.creds.Clear(ctx); err != nil {
		s.log.Warn(ctx, "clear credentials after expiry", "error", err)
	}
}

func failureMessage(err error, fallback string) string {
	if msg, ok := client.ServerMessage(err); ok {
		return msg
	}
	return fallback
}
