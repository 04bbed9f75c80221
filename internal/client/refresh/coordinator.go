package refresh

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/edachat/internal/client/events"
	"github.com/dmitrijs2005/edachat/internal/client/metrics"
	"github.com/dmitrijs2005/edachat/internal/client/tokens"
	"github.com/dmitrijs2005/edachat/internal/logging"
)

type State int

const (
	Idle State = iota
	Refreshing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Refreshing:
		return "refreshing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Func exchanges a refresh token for a new pair. It is the only network
// call the coordinator makes.
type Func func(ctx context.Context, refreshToken string) (tokens.Pair, error)

// TokenStore is the part of tokens.Store the coordinator needs.
type TokenStore interface {
	Get(ctx context.Context) (tokens.Pair, error)
	Set(ctx context.Context, p tokens.Pair) error
	ClearIfAny(ctx context.Context) (bool, error)
}

type Publisher interface {
	Publish(e events.Event)
}

type result struct {
	token string
	err   error
}

// waiter is a caller blocked on the current refresh. The channel is
// buffered so settling never blocks on a caller that gave up.
type waiter struct {
	ch chan result
}

type Coordinator struct {
	store   TokenStore
	refresh Func
	bus     Publisher
	log     logging.Logger
	metrics *metrics.Recorder

	mu      sync.Mutex
	state   State
	pending []*waiter
}

type Option func(*Coordinator)

func WithPublisher(p Publisher) Option {
	return func(c *Coordinator) { c.bus = p }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Coordinator) { c.metrics = m }
}

func NewCoordinator(store TokenStore, fn Func, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:   store,
		refresh: fn,
		log:     logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Refresh returns a fresh access token, joining the refresh in flight if
// there is one. ctx only bounds how long this caller waits; the refresh
// call itself runs to completion for the benefit of the other waiters.
func (c *Coordinator) Refresh(ctx context.Context) (string, error) {
	w := &waiter{ch: make(chan result, 1)}

	c.mu.Lock()
	c.pending = append(c.pending, w)
	if c.state == Idle {
		c.state = Refreshing
		go c.run(context.WithoutCancel(ctx))
	} else {
		c.metrics.ObserveRefreshWaiter()
	}
	c.mu.Unlock()

	select {
	case r := <-w.ch:
		return r.token, r.err
	case <-ctx.Done():
		c.abandon(w)
		return "", ctx.Err()
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending is the number of callers waiting on the refresh in flight.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Coordinator) abandon(w *waiter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.pending {
		if p == w {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

func (c *Coordinator) run(ctx context.Context) {
	res, hadSession := c.exchange(ctx)

	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.state = Idle
	c.mu.Unlock()

	for _, w := range pending {
		w.ch <- res
	}

	if hadSession && c.bus != nil {
		c.bus.Publish(events.Event{Topic: events.TopicAuthLogout, Reason: events.ReasonTokenExpired})
	}
}

// exchange performs the refresh and persists the outcome. hadSession is
// true when a failure cleared a store that still held a token.
func (c *Coordinator) exchange(ctx context.Context) (res result, hadSession bool) {
	pair, err := c.store.Get(ctx)
	if err != nil {
		c.metrics.ObserveRefresh(metrics.RefreshFailed)
		return result{err: &Error{Cause: err}}, false
	}

	var next tokens.Pair
	if pair.RefreshToken == "" {
		err = ErrNoRefreshToken
	} else {
		next, err = c.refresh(ctx, pair.RefreshToken)
		if err == nil && next.AccessToken == "" {
			err = ErrIncompleteResponse
		}
	}

	if err != nil {
		// A session that cannot be refreshed is over, whatever the cause.
		outcome := metrics.RefreshFailed
		if isRejection(err) {
			outcome = metrics.RefreshRejected
		}
		c.metrics.ObserveRefresh(outcome)
		c.log.Warn(ctx, "token refresh failed, clearing session", "error", err, "outcome", outcome)
		had, cerr := c.store.ClearIfAny(ctx)
		if cerr != nil {
			c.log.Error(ctx, "clear session after failed refresh", "error", cerr)
		}
		return result{err: &Error{Cause: err, SessionCleared: cerr == nil}}, had
	}

	if next.RefreshToken == "" {
		next.RefreshToken = pair.RefreshToken
	}
	if err := c.store.Set(ctx, next); err != nil {
		c.metrics.ObserveRefresh(metrics.RefreshFailed)
		return result{err: &Error{Cause: err}}, false
	}

	c.metrics.ObserveRefresh(metrics.RefreshSuccess)
	c.log.Debug(ctx, "token refreshed")
	return result{token: next.AccessToken}, false
}
