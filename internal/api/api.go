// Package api exposes the subscription, payment and authorization core over a JSON HTTP API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/bizdesk/pkg/access"
	"github.com/dmitrymomot/bizdesk/pkg/clientip"
	"github.com/dmitrymomot/bizdesk/pkg/httpserver"
	"github.com/dmitrymomot/bizdesk/pkg/jwt"
	"github.com/dmitrymomot/bizdesk/pkg/logger"
	"github.com/dmitrymomot/bizdesk/pkg/media"
	"github.com/dmitrymomot/bizdesk/pkg/metrics"
	"github.com/dmitrymomot/bizdesk/pkg/payment"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
	"github.com/dmitrymomot/bizdesk/pkg/ratelimiter"
	"github.com/dmitrymomot/bizdesk/pkg/requestid"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
)

// Capabilities checked by the API routes.
const (
	CapSubscriptionRead   = "subscription.read"
	CapSubscriptionManage = "subscription.manage"
	CapPaymentsSubmit     = "payments.submit"
	CapPaymentsRead       = "payments.read"
	CapPaymentsDecide     = "payments.decide"
)

const defaultMaxUploadSize = media.DefaultMaxSize

// Authenticator logs principals in and re-derives them from token claims.
// *principal.Resolver satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (principal.Principal, error)
	ResolveKind(ctx context.Context, kind principal.Kind, email string) (principal.Principal, error)
}

// Deps are the collaborators of the API. Fields marked optional may be nil.
type Deps struct {
	Principals    Authenticator
	Tokens        *jwt.Service
	Gate          *access.Gate
	Subscriptions subscription.Service
	Ledger        *payment.Ledger

	LoginLimiter  *ratelimiter.Limiter // optional
	Metrics       *metrics.Metrics     // optional
	HealthChecks  []httpserver.Check
	IPHeaders     []string // trusted proxy headers, none by default
	MaxUploadSize int64    // defaults to media.DefaultMaxSize
	Logger        *slog.Logger

	// ScreenshotURL, when set, adds screenshot_url to payment bodies.
	ScreenshotURL func(ref string) string
}

type api struct {
	Deps
	errs errorResponder
	log  *slog.Logger
}

// NewRouter builds the HTTP handler. Panics when a required dependency is missing.
func NewRouter(d Deps) http.Handler {
	if d.Principals == nil || d.Tokens == nil || d.Gate == nil || d.Subscriptions == nil || d.Ledger == nil {
		panic("api: principals, tokens, gate, subscriptions and ledger are required")
	}
	if d.MaxUploadSize <= 0 {
		d.MaxUploadSize = defaultMaxUploadSize
	}
	log := logger.OrDiscard(d.Logger).With(logger.Component("api"))
	a := &api{Deps: d, errs: errorResponder{logger: log}, log: log}

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware(),
		clientip.New(d.IPHeaders...).Middleware,
		middleware.Recoverer,
		a.logRequests,
	)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.errs.respond(w, r, errNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		a.errs.respond(w, r, errMethodNotAllowed)
	})

	r.Get("/healthz", httpserver.HealthHandler(log, 0, d.HealthChecks...))
	r.Get("/livez", httpserver.LivenessHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if d.LoginLimiter != nil {
				r.Use(ratelimiter.Middleware(d.LoginLimiter, ratelimiter.ByClientIP,
					ratelimiter.WithDeniedHandler(a.rateLimited),
				))
			}
			r.Post("/auth/login", a.login)
		})

		r.Group(func(r chi.Router) {
			r.Use(
				jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{Verifier: d.Tokens, ErrorHandler: a.errs.respond}),
				access.Authenticate(d.Principals, access.WithErrorHandler(a.errs.respond)),
			)

			r.Get("/me", a.me)
			r.Get("/capabilities/{capability}", a.checkCapability)

			r.With(a.require(CapSubscriptionRead)).Get("/subscription", a.getSubscription)
			r.With(a.require(CapSubscriptionManage)).Post("/subscription/finish-trial", a.finishTrial)

			r.With(a.require(CapPaymentsSubmit)).Post("/payments", a.submitPayment)
			r.With(a.require(CapPaymentsRead)).Get("/payments", a.listPayments)
			r.With(a.require(CapPaymentsRead)).Get("/payments/{id}", a.getPayment)

			r.Route("/admin/payments", func(r chi.Router) {
				r.Use(a.require(CapPaymentsDecide))
				r.Get("/", a.listPending)
				r.Post("/{id}/decision", a.decidePayment)
			})
		})
	})
	return r
}

func (a *api) require(capability string) func(http.Handler) http.Handler {
	return a.Gate.Require(capability, access.WithErrorHandler(a.errs.respond))
}

// logRequests writes one record per request once the response is complete.
func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		a.log.DebugContext(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Int("bytes", ww.BytesWritten()),
			slog.String("client_ip", clientip.FromContext(r.Context())),
			logger.Duration(time.Since(start)),
		)
	})
}

func (a *api) rateLimited(w http.ResponseWriter, r *http.Request, _ ratelimiter.Result) {
	a.errs.respond(w, r, errTooManyRequests)
}
