// Package metrics instruments the API client with Prometheus collectors
// registered on a dedicated registry.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/edachat/internal/logging"
)

// Refresh outcomes.
const (
	RefreshSuccess  = "success"
	RefreshRejected = "rejected"
	RefreshFailed   = "failed"
)

// Recorder collects client-side request and refresh metrics. A nil
// *Recorder is valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	requests           *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	refreshes          *prometheus.CounterVec
	refreshWaiters     prometheus.Counter
	serviceUnavailable prometheus.Counter
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		reg: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edachat",
			Name:      "client_requests_total",
			Help:      "API requests by method and response status.",
		}, []string{"method", "code"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "edachat",
			Name:      "client_request_duration_seconds",
			Help:      "Round trip time of API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edachat",
			Name:      "token_refresh_total",
			Help:      "Token refresh calls by outcome.",
		}, []string{"outcome"}),
		refreshWaiters: f.NewCounter(prometheus.CounterOpts{
			Namespace: "edachat",
			Name:      "token_refresh_waiters_total",
			Help:      "Requests that waited on an in-flight refresh instead of starting one.",
		}),
		serviceUnavailable: f.NewCounter(prometheus.CounterOpts{
			Namespace: "edachat",
			Name:      "service_unavailable_total",
			Help:      "Responses with status 503.",
		}),
	}
}

// ObserveRequest records one completed round trip. code 0 means the request
// failed before a response arrived.
func (r *Recorder) ObserveRequest(method string, code int, d time.Duration) {
	if r == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	r.requests.WithLabelValues(method, label).Inc()
	r.requestDuration.WithLabelValues(method).Observe(d.Seconds())
	if code == http.StatusServiceUnavailable {
		r.serviceUnavailable.Inc()
	}
}

func (r *Recorder) ObserveRefresh(outcome string) {
	if r == nil {
		return
	}
	r.refreshes.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveRefreshWaiter() {
	if r == nil {
		return
	}
	r.refreshWaiters.Inc()
}

// Registry exposes the underlying registry, for tests and exporters.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string, l logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		l.Info(ctx, "metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error(ctx, "metrics server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	return srv
}
