package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/edachat/internal/client/events"
	"github.com/dmitrijs2005/edachat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/edachat/internal/client/tokens"
	"github.com/dmitrijs2005/edachat/internal/client/tokens/tokentest"
)

type harness struct {
	client *HTTPClient
	store  *tokens.Store
	bus    *events.Bus
	srv    *httptest.Server

	mu     sync.Mutex
	events []events.Event
}

func newHarness(t *testing.T, h http.Handler) *harness {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	hs := &harness{
		store: tokens.NewStore(metadata.NewMemoryRepository()),
		bus:   events.NewBus(),
		srv:   srv,
	}
	record := func(e events.Event) {
		hs.mu.Lock()
		defer hs.mu.Unlock()
		hs.events = append(hs.events, e)
	}
	hs.bus.Subscribe(events.TopicServerError, record)
	hs.bus.Subscribe(events.TopicAuthLogout, record)

	c, err := New(srv.URL, hs.store, WithBus(hs.bus), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	hs.client = c
	return hs
}

func (h *harness) seen() []events.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]events.Event(nil), h.events...)
}

func (h *harness) login(t *testing.T, p tokens.Pair) {
	t.Helper()
	require.NoError(t, h.store.Set(context.Background(), p))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type refreshCounter struct {
	calls atomic.Int32
	body  atomic.Value
}

func (rc *refreshCounter) handler(status int, resp any, before func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc.calls.Add(1)
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		rc.body.Store(in["refresh_token"])
		if before != nil {
			before()
		}
		writeJSON(w, status, resp)
	}
}

func TestConcurrent401sShareOneRefreshAndReplayWithNewToken(t *testing.T) {
	a1 := tokentest.Issue(t, "a1", time.Now().Add(time.Hour))
	a2 := tokentest.Issue(t, "a2", time.Now().Add(time.Hour))

	var hs *harness
	rc := &refreshCounter{}
	var arrived sync.WaitGroup
	arrived.Add(2)
	var withA2 atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer " + a2:
			withA2.Add(1)
			writeJSON(w, http.StatusOK, map[string]any{"rooms": []any{}})
		case "Bearer " + a1:
			arrived.Done()
			arrived.Wait()
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token has been revoked"})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "unexpected token"})
		}
	})
	mux.HandleFunc("POST /refresh", rc.handler(http.StatusOK,
		map[string]string{"access_token": a2, "refresh_token": "R2"},
		func() {
			deadline := time.Now().Add(2 * time.Second)
			for hs.client.Coordinator().Pending() < 2 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
		}))
	hs = newHarness(t, mux)
	hs.login(t, tokens.Pair{AccessToken: a1, RefreshToken: "R1"})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = hs.client.Rooms(context.Background())
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), rc.calls.Load())
	assert.Equal(t, "R1", rc.body.Load())
	assert.Equal(t, int32(2), withA2.Load(), "both requests replayed with Bearer A2")

	p, err := hs.store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tokens.Pair{AccessToken: a2, RefreshToken: "R2"}, p)
	assert.Empty(t, hs.seen())
}

func TestLate401AfterRefreshReplaysWithStoredToken(t *testing.T) {
	a1 := tokentest.Issue(t, "a1", time.Now().Add(time.Hour))
	a2 := tokentest.Issue(t, "a2", time.Now().Add(time.Hour))

	var hs *harness
	rc := &refreshCounter{}
	var staleCalls, withA2 atomic.Int32
	secondSent := make(chan struct{})

	rotated := func() bool {
		tok, err := hs.store.AccessToken(context.Background())
		return err == nil && tok == a2
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer " + a2:
			withA2.Add(1)
			writeJSON(w, http.StatusOK, map[string]any{"rooms": []any{}})
		case "Bearer " + a1:
			if staleCalls.Add(1) == 1 {
				<-secondSent
			} else {
				close(secondSent)
				// Answer only once the other request has rotated the pair.
				deadline := time.Now().Add(2 * time.Second)
				for !rotated() && time.Now().Before(deadline) {
					time.Sleep(5 * time.Millisecond)
				}
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token has been revoked"})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "unexpected token"})
		}
	})
	mux.HandleFunc("POST /refresh", rc.handler(http.StatusOK,
		map[string]string{"access_token": a2, "refresh_token": "R2"}, nil))
	hs = newHarness(t, mux)
	hs.login(t, tokens.Pair{AccessToken: a1, RefreshToken: "R1"})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = hs.client.Rooms(context.Background())
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(2), staleCalls.Load())
	assert.Equal(t, int32(1), rc.calls.Load(), "late 401 reuses the rotated pair")
	assert.Equal(t, int32(2), withA2.Load())

	p, err := hs.store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tokens.Pair{AccessToken: a2, RefreshToken: "R2"}, p)
	assert.Empty(t, hs.seen())
}

func TestServiceUnavailable_PublishesAndDoesNotRefresh(t *testing.T) {
	rc := &refreshCounter{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "Database connection failed",
			"message": "Cannot connect to the database. Please try again later.",
		})
	})
	mux.HandleFunc("POST /refresh", rc.handler(http.StatusOK, nil, nil))
	hs := newHarness(t, mux)
	hs.login(t, tokens.Pair{AccessToken: tokentest.Valid(t), RefreshToken: "R1"})

	_, err := hs.client.Rooms(context.Background())

	require.ErrorIs(t, err, ErrServiceUnavailable)
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusServiceUnavailable, re.Status)
	assert.Equal(t, "Database connection failed", re.Message)
	assert.Zero(t, rc.calls.Load())

	require.Equal(t, []events.Event{{
		Topic:   events.TopicServerError,
		Message: "Cannot connect to the database. Please try again later.",
		Kind:    events.KindDatabaseError,
	}}, hs.seen())
}

func TestServiceUnavailable_DefaultMessage(t *testing.T) {
	hs := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := hs.client.Health(context.Background())

	require.ErrorIs(t, err, ErrServiceUnavailable)
	require.Len(t, hs.seen(), 1)
	assert.Equal(t, "Server is temporarily unavailable", hs.seen()[0].Message)
}

func TestUnauthorizedAfterRetryIsReturned(t *testing.T) {
	a2 := tokentest.Issue(t, "a2", time.Now().Add(time.Hour))
	rc := &refreshCounter{}
	var roomCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms", func(w http.ResponseWriter, r *http.Request) {
		roomCalls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "nope"})
	})
	mux.HandleFunc("POST /refresh", rc.handler(http.StatusOK, map[string]string{"access_token": a2, "refresh_token": "R2"}, nil))
	hs := newHarness(t, mux)
	hs.login(t, tokens.Pair{AccessToken: tokentest.Valid(t), RefreshToken: "R1"})

	_, err := hs.client.Rooms(context.Background())

	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), rc.calls.Load())
	assert.Equal(t, int32(2), roomCalls.Load(), "original plus exactly one replay")
}

func TestRefreshRejected_ClearsSessionAndSignalsLogout(t *testing.T) {
	rc := &refreshCounter{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token has expired"})
	})
	mux.HandleFunc("POST /refresh", rc.handler(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired refresh token"}, nil))
	hs := newHarness(t, mux)
	hs.login(t, tokens.Pair{AccessToken: tokentest.Valid(t), RefreshToken: "R1"})

	_, err := hs.client.Rooms(context.Background())

	require.ErrorIs(t, err, ErrRefreshFailed)
	var rerr *RefreshError
	require.ErrorAs(t, err, &rerr)
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "/refresh", re.Path)
	assert.Equal(t, "Invalid or expired refresh token", re.Message)

	has, err := hs.store.HasAny(context.Background())
	require.NoError(t, err)
	assert.False(t, has)

	require.Eventually(t, func() bool { return len(hs.seen()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, events.Event{Topic: events.TopicAuthLogout, Reason: events.ReasonTokenExpired}, hs.seen()[0])
}

func TestExpiredTokenIsNeverSent(t *testing.T) {
	expired := tokentest.Expired(t)
	fresh := tokentest.Valid(t)
	rc := &refreshCounter{}
	var gotAuth atomic.Value

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"room":     map[string]any{"id": r.PathValue("id"), "title": "Q3"},
			"messages": []any{},
		})
	})
	mux.HandleFunc("POST /refresh", rc.handler(http.StatusOK, map[string]string{"access_token": fresh, "refresh_token": "R2"}, nil))
	hs := newHarness(t, mux)
	hs.login(t, tokens.Pair{AccessToken: expired, RefreshToken: "R1"})

	d, err := hs.client.Room(context.Background(), "r1")

	require.NoError(t, err)
	assert.Equal(t, "r1", d.Room.ID)
	assert.Equal(t, "Bearer "+fresh, gotAuth.Load())
	assert.Equal(t, int32(1), rc.calls.Load())
}

func TestNoTokenSendsNoHeader(t *testing.T) {
	var gotAuth atomic.Value
	hs := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "timestamp": "2025-03-01T12:00:00.123456"})
	}))

	h, err := hs.client.Health(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "", gotAuth.Load())
}

func TestEnsureValidToken(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		hs := newHarness(t, http.NotFoundHandler())
		_, err := hs.client.EnsureValidToken(context.Background())
		require.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("expired ten seconds ago triggers refresh", func(t *testing.T) {
		fresh := tokentest.Valid(t)
		rc := &refreshCounter{}
		hs := newHarness(t, rc.handler(http.StatusOK, map[string]string{"access_token": fresh, "refresh_token": "R2"}, nil))
		hs.login(t, tokens.Pair{AccessToken: tokentest.Expired(t), RefreshToken: "R1"})

		tok, err := hs.client.EnsureValidToken(context.Background())

		require.NoError(t, err)
		assert.Equal(t, fresh, tok)
		assert.Equal(t, int32(1), rc.calls.Load())
	})

	t.Run("expired and refresh fails", func(t *testing.T) {
		rc := &refreshCounter{}
		hs := newHarness(t, rc.handler(http.StatusUnauthorized, map[string]string{"error": "expired"}, nil))
		hs.login(t, tokens.Pair{AccessToken: tokentest.Expired(t), RefreshToken: "R1"})

		_, err := hs.client.EnsureValidToken(context.Background())
		require.ErrorIs(t, err, ErrRefreshFailed)
	})

	t.Run("near expiry falls back when proactive refresh fails", func(t *testing.T) {
		current := tokentest.Issue(t, "u", time.Now().Add(60*time.Second))
		rc := &refreshCounter{}
		hs := newHarness(t, rc.handler(http.StatusInternalServerError, map[string]string{"error": "Internal server error"}, nil))
		hs.login(t, tokens.Pair{AccessToken: current, RefreshToken: "R1"})

		tok, err := hs.client.EnsureValidToken(context.Background())

		require.NoError(t, err)
		assert.Equal(t, current, tok)
		assert.Equal(t, int32(1), rc.calls.Load())

		has, err := hs.store.HasAny(context.Background())
		require.NoError(t, err)
		assert.False(t, has, "the failed refresh still ends the session")
	})

	t.Run("near expiry refreshes proactively", func(t *testing.T) {
		fresh := tokentest.Issue(t, "fresh", time.Now().Add(time.Hour))
		rc := &refreshCounter{}
		hs := newHarness(t, rc.handler(http.StatusOK, map[string]string{"access_token": fresh, "refresh_token": "R2"}, nil))
		hs.login(t, tokens.Pair{AccessToken: tokentest.Issue(t, "u", time.Now().Add(30*time.Second)), RefreshToken: "R1"})

		tok, err := hs.client.EnsureValidToken(context.Background())

		require.NoError(t, err)
		assert.Equal(t, fresh, tok)
	})

	t.Run("valid token is returned as is", func(t *testing.T) {
		rc := &refreshCounter{}
		hs := newHarness(t, rc.handler(http.StatusOK, nil, nil))
		current := tokentest.Valid(t)
		hs.login(t, tokens.Pair{AccessToken: current, RefreshToken: "R1"})

		tok, err := hs.client.EnsureValidToken(context.Background())

		require.NoError(t, err)
		assert.Equal(t, current, tok)
		assert.Zero(t, rc.calls.Load())
	})
}

func TestTransportFailureIsUnreachable(t *testing.T) {
	hs := newHarness(t, http.NotFoundHandler())
	hs.srv.Close()

	_, err := hs.client.Rooms(context.Background())
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	store := tokens.NewStore(metadata.NewMemoryRepository())

	_, err := New("::not a url", store)
	require.Error(t, err)
	_, err = New("ftp://example.com", store)
	require.Error(t, err)

	c, err := New("http://example.com/api/", store)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api", c.baseURL)
}
