package tokens

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/edachat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/edachat/internal/common"
)

// sessionKeys are removed together with the tokens so nothing from a
// finished session is left behind in storage.
var sessionKeys = []string{
	common.AccessTokenKey,
	common.RefreshTokenKey,
	common.CurrentRoomIDKey,
	common.ChatHistoryKey,
}

// Store reads and writes the token pair. Every method is a single atomic
// operation with respect to the others.
type Store struct {
	mu   sync.Mutex
	repo metadata.Repository
}

func NewStore(repo metadata.Repository) *Store {
	return &Store{repo: repo}
}

// Get returns the stored pair. Missing keys yield empty strings.
func (s *Store) Get(ctx context.Context) (Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(ctx)
}

func (s *Store) get(ctx context.Context) (Pair, error) {
	access, err := s.repo.Get(ctx, common.AccessTokenKey)
	if err != nil {
		return Pair{}, fmt.Errorf("read access token: %w", err)
	}
	refresh, err := s.repo.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		return Pair{}, fmt.Errorf("read refresh token: %w", err)
	}
	return Pair{AccessToken: string(access), RefreshToken: string(refresh)}, nil
}

// AccessToken is a shorthand for Get().AccessToken.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	p, err := s.Get(ctx)
	return p.AccessToken, err
}

// Set writes both tokens in one transaction.
func (s *Store) Set(ctx context.Context, p Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.repo.SetMany(ctx, map[string][]byte{
		common.AccessTokenKey:  []byte(p.AccessToken),
		common.RefreshTokenKey: []byte(p.RefreshToken),
	})
	if err != nil {
		return fmt.Errorf("store token pair: %w", err)
	}
	return nil
}

// Clear removes the tokens and the cached session keys.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.DeleteMany(ctx, sessionKeys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// ClearIfAny clears like Clear and reports whether any token was stored
// right before. The check and the removal happen under one lock.
func (s *Store) ClearIfAny(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.get(ctx)
	if err != nil {
		return false, err
	}
	if err := s.repo.DeleteMany(ctx, sessionKeys...); err != nil {
		return false, fmt.Errorf("clear session: %w", err)
	}
	return !p.Empty(), nil
}

// HasAny reports whether at least one of the tokens is stored.
func (s *Store) HasAny(ctx context.Context) (bool, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return !p.Empty(), nil
}
