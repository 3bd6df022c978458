package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/bizdesk/pkg/payment"
	"github.com/dmitrymomot/bizdesk/pkg/reminder"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "bizdesk"

const unmatchedRoute = "unmatched"

// Option configures Metrics.
type Option func(*options)

type options struct {
	namespace      string
	runtimeMetrics bool
}

// WithNamespace replaces DefaultNamespace.
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithRuntimeMetrics also registers the Go runtime and process collectors.
func WithRuntimeMetrics() Option {
	return func(o *options) { o.runtimeMetrics = true }
}

// Metrics holds the application collectors and their registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	paymentDecisions *prometheus.CounterVec
	reminderSent     prometheus.Counter
	reminderFailed   prometheus.Counter
}

// New creates and registers the collectors.
func New(opts ...Option) *Metrics {
	o := options{namespace: DefaultNamespace}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		paymentDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Subsystem: "payments",
			Name:      "decisions_total",
			Help:      "Decided payment requests by resulting status.",
		}, []string{"status"}),
		reminderSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace,
			Subsystem: "reminder",
			Name:      "warnings_sent_total",
			Help:      "Expiry warnings delivered.",
		}),
		reminderFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace,
			Subsystem: "reminder",
			Name:      "warnings_failed_total",
			Help:      "Expiry warnings that could not be listed or delivered.",
		}),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.paymentDecisions,
		m.reminderSent,
		m.reminderFailed,
	)
	if o.runtimeMetrics {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts and times requests. Routes are labelled by their chi pattern
// so path parameters do not explode the label space.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}

// ObserveReminder records the outcome of one reminder run.
func (m *Metrics) ObserveReminder(res reminder.Result) {
	m.reminderSent.Add(float64(res.Sent))
	m.reminderFailed.Add(float64(res.Failed))
}

// PaymentNotifier counts decisions and forwards them to next, which may be nil.
func (m *Metrics) PaymentNotifier(next payment.Notifier) payment.Notifier {
	return paymentNotifier{metrics: m, next: next}
}

type paymentNotifier struct {
	metrics *Metrics
	next    payment.Notifier
}

func (n paymentNotifier) PaymentDecided(ctx context.Context, req payment.Request, state subscription.State, at time.Time) error {
	n.metrics.paymentDecisions.WithLabelValues(string(req.Status)).Inc()
	if n.next == nil {
		return nil
	}
	return n.next.PaymentDecided(ctx, req, state, at)
}
