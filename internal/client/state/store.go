package state

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/edachat/internal/client/client"
	"github.com/dmitrijs2005/edachat/internal/client/events"
	"github.com/dmitrijs2005/edachat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/edachat/internal/common"
	"github.com/dmitrijs2005/edachat/internal/logging"
)

// Credentials is the part of the token store the state store touches
// directly: a silent purge of a dead session.
type Credentials interface {
	HasAny(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error
}

type Store struct {
	api   client.Client
	creds Credentials
	prefs metadata.Repository
	log   logging.Logger
	now   func() time.Time

	mu     sync.Mutex
	st     State
	gen    uint64
	subs   map[int]func(State)
	nextID int

	unsubscribeBus func()
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithBus makes the store tear the session down when an auth:logout event
// arrives while it is authenticated.
func WithBus(b *events.Bus) Option {
	return func(s *Store) {
		s.unsubscribeBus = b.Subscribe(events.TopicAuthLogout, s.onSessionExpired)
	}
}

func New(api client.Client, creds Credentials, prefs metadata.Repository, opts ...Option) *Store {
	s := &Store{
		api:   api,
		creds: creds,
		prefs: prefs,
		log:   logging.Nop(),
		now:   time.Now,
		st:    initialState(),
		subs:  make(map[int]func(State)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Close detaches the store from the event bus.
func (s *Store) Close() {
	if s.unsubscribeBus != nil {
		s.unsubscribeBus()
	}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.clone()
}

// Subscribe registers fn to receive a snapshot after every change. fn runs
// on the goroutine that made the change.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// generation identifies the session an operation started in.
func (s *Store) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// apply runs fn on the state if the session is still gen, then notifies
// subscribers. It reports whether fn ran.
func (s *Store) apply(gen uint64, fn func(*State)) bool {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return false
	}
	fn(&s.st)
	snap := s.st.clone()
	subs := make([]func(State), 0, len(s.subs))
	for _, f := range s.subs {
		subs = append(subs, f)
	}
	s.mu.Unlock()

	for _, f := range subs {
		f(snap)
	}
	return true
}

// reset ends the current session: it bumps the generation and restores the
// initial state, keeping the selected tab.
func (s *Store) reset() {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.apply(gen, func(st *State) {
		tab := st.CurrentTab
		*st = initialState()
		st.CurrentTab = tab
	})
}

func (s *Store) persistRoomID(ctx context.Context, id string) {
	if err := s.prefs.Set(ctx, common.CurrentRoomIDKey, []byte(id)); err != nil {
		s.log.Warn(ctx, "persist current room", "room_id", id, "error", err)
	}
}

func (s *Store) forgetRoomID(ctx context.Context) {
	if err := s.prefs.Delete(ctx, common.CurrentRoomIDKey); err != nil {
		s.log.Warn(ctx, "forget current room", "error", err)
	}
}
