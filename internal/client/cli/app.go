package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/edachat/internal/client/client"
	"github.com/dmitrijs2005/edachat/internal/client/config"
	"github.com/dmitrijs2005/edachat/internal/client/events"
	"github.com/dmitrijs2005/edachat/internal/client/session"
	"github.com/dmitrijs2005/edachat/internal/client/state"
	"github.com/dmitrijs2005/edachat/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const healthTimeout = 3 * time.Second

type App struct {
	config *config.Config
	mgr    *session.Manager
	state  *state.Store
	api    client.Client
	log    logging.Logger
	reader *bufio.Reader

	outMu      sync.Mutex
	out        io.Writer
	mode       Mode
	lastNotice string
}

// NewApp opens the local session database and builds the application.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	mgr, err := session.Open(ctx, c, l)
	if err != nil {
		return nil, err
	}
	return newApp(c, mgr, l, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, mgr *session.Manager, l logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		mgr:    mgr,
		state:  mgr.State,
		api:    mgr.API,
		log:    l,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run restores the stored session and serves the REPL until the user exits
// or ctx is done. The session database is closed on return.
func (a *App) Run(ctx context.Context) error {
	defer a.mgr.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := a.watchSignals()
	defer unsubscribe()

	if a.config.MetricsAddr != "" {
		a.mgr.Metrics.Serve(ctx, a.config.MetricsAddr, a.log)
	}

	if err := a.state.Bootstrap(ctx); err != nil {
		a.log.Warn(ctx, "restore session", "error", err)
	}
	a.checkHealth(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.HealthCheckInterval)

	a.println("Welcome to edachat (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.state.Snapshot().Authenticated
}

func (a *App) getStatus() string {
	snap := a.state.Snapshot()

	var parts []string
	if snap.Username != "" {
		parts = append(parts, snap.Username)
	}
	if snap.CurrentRoom != nil {
		parts = append(parts, "#"+snap.CurrentRoom.Title)
	}

	a.outMu.Lock()
	if a.mode != "" {
		parts = append(parts, string(a.mode))
	}
	a.outMu.Unlock()

	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (a *App) setMode(mode Mode) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	if a.mode == mode {
		return
	}
	a.mode = mode
	if mode == ModeOnline {
		a.lastNotice = ""
	}
	fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
}

// watchSignals prints the backend's out-of-band signals. A server error is
// shown once per outage.
func (a *App) watchSignals() func() {
	offServer := a.mgr.Bus.Subscribe(events.TopicServerError, func(e events.Event) {
		a.outMu.Lock()
		defer a.outMu.Unlock()
		if e.Message == a.lastNotice {
			return
		}
		a.lastNotice = e.Message
		fmt.Fprintf(a.out, "! server: %s\n", e.Message)
	})
	offLogout := a.mgr.Bus.Subscribe(events.TopicAuthLogout, func(events.Event) {
		a.println("! Your session has expired, please login again.")
	})
	return func() {
		offServer()
		offLogout()
	}
}

func (a *App) checkHealth(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if _, err := a.api.Health(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher probes the backend every interval and switches
// between online and offline mode until ctx is done. A non-positive interval
// disables the watcher.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		a.log.Warn(ctx, "health check disabled", "interval", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkHealth(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}
