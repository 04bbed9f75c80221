package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/edachat/internal/client/events"
	"github.com/dmitrijs2005/edachat/internal/client/metrics"
	"github.com/dmitrijs2005/edachat/internal/client/models"
	"github.com/dmitrijs2005/edachat/internal/client/refresh"
	"github.com/dmitrijs2005/edachat/internal/client/tokens"
	"github.com/dmitrijs2005/edachat/internal/common"
	"github.com/dmitrijs2005/edachat/internal/logging"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodySize    = 8 << 20

	unavailableMessage = "Server is temporarily unavailable"
)

// authMode says how a request takes part in the token protocol.
type authMode int

const (
	// authRefresh attaches the token and recovers from 401 via refresh.
	authRefresh authMode = iota
	// authAttach attaches a non-expired token but never refreshes.
	authAttach
	// authNone sends no credentials.
	authNone
)

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	out    any
	auth   authMode
}

type HTTPClient struct {
	baseURL     string
	http        *http.Client
	store       *tokens.Store
	policy      *tokens.Policy
	coordinator *refresh.Coordinator
	bus         refresh.Publisher
	log         logging.Logger
	metrics     *metrics.Recorder
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithBus sets where server:error and auth:logout events go.
func WithBus(b refresh.Publisher) Option {
	return func(c *HTTPClient) { c.bus = b }
}

func WithPolicy(p *tokens.Policy) Option {
	return func(c *HTTPClient) { c.policy = p }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

// New builds a client for the backend at baseURL, for example
// "http://127.0.0.1:5000" or "https://host/api".
func New(baseURL string, store *tokens.Store, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		store:   store,
		policy:  tokens.NewPolicy(),
		bus:     events.NewBus(),
		log:     logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}

	c.coordinator = refresh.NewCoordinator(store, c.exchangeRefreshToken,
		refresh.WithPublisher(c.bus),
		refresh.WithLogger(c.log),
		refresh.WithMetrics(c.metrics),
	)
	return c, nil
}

// Coordinator exposes the refresh state machine, mainly for tests.
func (c *HTTPClient) Coordinator() *refresh.Coordinator {
	return c.coordinator
}

func (c *HTTPClient) do(ctx context.Context, cl call) error {
	var payload []byte
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", cl.method, cl.path, err)
		}
		payload = b
	}

	token, retried, err := c.outboundToken(ctx, cl.auth)
	if err != nil {
		return err
	}

	status, body, err := c.send(ctx, cl, payload, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && cl.auth == authRefresh && !retried {
		token, err = c.replacementToken(ctx, token)
		if err != nil {
			return err
		}
		status, body, err = c.send(ctx, cl, payload, token)
		if err != nil {
			return err
		}
	}

	return c.decode(ctx, cl, status, body)
}

// replacementToken returns the credential to replay a request with after
// sent was rejected. When another request already rotated the pair the
// stored token is used as is; otherwise a refresh is started or joined.
func (c *HTTPClient) replacementToken(ctx context.Context, sent string) (string, error) {
	current, err := c.store.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	if current != "" && current != sent && !c.policy.IsExpired(current) {
		c.log.Debug(ctx, "access token already replaced, replaying")
		return current, nil
	}
	c.log.Debug(ctx, "access token rejected, refreshing")
	return c.coordinator.Refresh(ctx)
}

// outboundToken picks the credential for a request. An expired token is
// replaced before it is sent; retried reports that the replacement already
// used up the request's one refresh.
func (c *HTTPClient) outboundToken(ctx context.Context, mode authMode) (token string, retried bool, err error) {
	if mode == authNone {
		return "", false, nil
	}
	token, err = c.store.AccessToken(ctx)
	if err != nil {
		return "", false, err
	}
	if token == "" || !c.policy.IsExpired(token) {
		return token, false, nil
	}
	if mode == authAttach {
		return "", false, nil
	}

	c.log.Debug(ctx, "stored access token expired, refreshing before send")
	token, err = c.coordinator.Refresh(ctx)
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

func (c *HTTPClient) send(ctx context.Context, cl call, payload []byte, token string) (int, []byte, error) {
	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s %s: %w", cl.method, cl.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(cl.method, 0, time.Since(start))
		return 0, nil, fmt.Errorf("%s %s: %w: %w", cl.method, cl.path, ErrUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	c.metrics.ObserveRequest(cl.method, resp.StatusCode, time.Since(start))
	if err != nil {
		return 0, nil, fmt.Errorf("read %s %s: %w: %w", cl.method, cl.path, ErrUnreachable, err)
	}

	c.log.Debug(ctx, "api request", "method", cl.method, "path", cl.path, "status", resp.StatusCode, "duration", time.Since(start))
	return resp.StatusCode, raw, nil
}

func (c *HTTPClient) decode(ctx context.Context, cl call, status int, body []byte) error {
	if status >= 200 && status < 300 {
		if cl.out == nil || len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, cl.out); err != nil {
			return fmt.Errorf("decode %s %s: %w", cl.method, cl.path, err)
		}
		return nil
	}

	reqErr := &RequestError{
		Method:  cl.method,
		Path:    cl.path,
		Status:  status,
		Message: serverMessage(status, body),
	}

	if status == http.StatusServiceUnavailable {
		msg := unavailableMessage
		var eb models.ErrorBody
		if json.Unmarshal(body, &eb) == nil && eb.Message != "" {
			msg = eb.Message
		}
		c.log.Warn(ctx, "service unavailable", "path", cl.path, "message", msg)
		c.bus.Publish(events.Event{Topic: events.TopicServerError, Message: msg, Kind: events.KindDatabaseError})
	}

	return reqErr
}

// serverMessage extracts the human readable error from a response body,
// preferring the "error" field the routes use.
func serverMessage(status int, body []byte) string {
	var eb models.ErrorBody
	if json.Unmarshal(body, &eb) == nil {
		if eb.Error != "" {
			return eb.Error
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	return http.StatusText(status)
}
