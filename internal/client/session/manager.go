// Package session wires the client components into one explicitly
// constructed object per application run.
//
// A Manager owns the token store, the event bus, the API client with its
// refresh coordinator, and the state store. Nothing is global: tests build
// as many managers as they need, each over its own repository and HTTP
// client.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/edachat/internal/client/client"
	"github.com/dmitrijs2005/edachat/internal/client/config"
	"github.com/dmitrijs2005/edachat/internal/client/events"
	"github.com/dmitrijs2005/edachat/internal/client/metrics"
	"github.com/dmitrijs2005/edachat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/edachat/internal/client/state"
	"github.com/dmitrijs2005/edachat/internal/client/tokens"
	"github.com/dmitrijs2005/edachat/internal/logging"

	_ "modernc.org/sqlite"
)

// Deps are the injectable collaborators of a Manager. Repo and BaseURL are
// required; the rest fall back to defaults.
type Deps struct {
	Repo          metadata.Repository
	BaseURL       string
	HTTPClient    *http.Client
	RefreshWindow time.Duration
	Logger        logging.Logger
	Metrics       *metrics.Recorder
	Now           func() time.Time
}

type Manager struct {
	Tokens  *tokens.Store
	Policy  *tokens.Policy
	Bus     *events.Bus
	API     *client.HTTPClient
	State   *state.Store
	Metrics *metrics.Recorder

	log     logging.Logger
	closeDB func() error
}

// New composes a Manager from deps.
func New(d Deps) (*Manager, error) {
	if d.Repo == nil {
		return nil, errors.New("session: repository is required")
	}
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.RefreshWindow <= 0 {
		d.RefreshWindow = tokens.DefaultRefreshWindow
	}

	m := &Manager{
		Tokens:  tokens.NewStore(d.Repo),
		Policy:  &tokens.Policy{Now: d.Now, RefreshWindow: d.RefreshWindow},
		Bus:     events.NewBus(),
		Metrics: d.Metrics,
		log:     d.Logger,
	}

	opts := []client.Option{
		client.WithLogger(d.Logger.With("component", "api")),
		client.WithBus(m.Bus),
		client.WithPolicy(m.Policy),
		client.WithMetrics(d.Metrics),
	}
	if d.HTTPClient != nil {
		opts = append(opts, client.WithHTTPClient(d.HTTPClient))
	}

	api, err := client.New(d.BaseURL, m.Tokens, opts...)
	if err != nil {
		return nil, err
	}
	m.API = api

	m.State = state.New(api, m.Tokens, d.Repo,
		state.WithLogger(d.Logger.With("component", "state")),
		state.WithClock(d.Now),
		state.WithBus(m.Bus),
	)
	return m, nil
}

// Open opens the local database at cfg.DatabasePath, applies migrations and
// builds a Manager over it. Close releases the database.
func Open(ctx context.Context, cfg *config.Config, l logging.Logger) (*Manager, error) {
	repos, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	m, err := New(Deps{
		Repo:          repos.Metadata,
		BaseURL:       cfg.ServerBaseURL,
		HTTPClient:    &http.Client{Timeout: cfg.RequestTimeout},
		RefreshWindow: cfg.RefreshWindow,
		Logger:        l,
		Metrics:       metrics.New(),
	})
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	m.closeDB = repos.Close
	return m, nil
}

// Close detaches the state store from the bus and closes the database
// opened by Open.
func (m *Manager) Close() error {
	m.State.Close()
	if m.closeDB != nil {
		return m.closeDB()
	}
	return nil
}
