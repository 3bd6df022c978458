// Package app assembles bizdesk from its configuration and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/bizdesk/internal/api"
	"github.com/dmitrymomot/bizdesk/internal/config"
	"github.com/dmitrymomot/bizdesk/internal/store/memory"
	"github.com/dmitrymomot/bizdesk/internal/store/postgres"
	"github.com/dmitrymomot/bizdesk/pkg/access"
	"github.com/dmitrymomot/bizdesk/pkg/email"
	"github.com/dmitrymomot/bizdesk/pkg/httpserver"
	"github.com/dmitrymomot/bizdesk/pkg/jwt"
	"github.com/dmitrymomot/bizdesk/pkg/logger"
	"github.com/dmitrymomot/bizdesk/pkg/media"
	"github.com/dmitrymomot/bizdesk/pkg/metrics"
	"github.com/dmitrymomot/bizdesk/pkg/payment"
	"github.com/dmitrymomot/bizdesk/pkg/pg"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
	"github.com/dmitrymomot/bizdesk/pkg/ratelimiter"
	"github.com/dmitrymomot/bizdesk/pkg/rbac"
	"github.com/dmitrymomot/bizdesk/pkg/redis"
	"github.com/dmitrymomot/bizdesk/pkg/reminder"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
)

// Store is everything the services need from persistence.
// Both the memory and the postgres stores satisfy it.
type Store interface {
	principal.OwnerStore
	principal.EmployeeStore
	subscription.Store
	payment.Store
	reminder.Store
	email.OwnerFinder
}

// App owns the long-lived components of one bizdesk process.
type App struct {
	cfg      config.Config
	log      *slog.Logger
	deps     api.Deps
	limiter  *ratelimiter.Limiter
	reminder *reminder.Job
	hooks    []httpserver.Hook // run on shutdown in order
}

// New connects the configured backends and wires the services.
// Backends opened before a failure are closed again.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *App, err error) {
	log = logger.OrDiscard(log)
	a := &App{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.close(context.WithoutCancel(ctx))
		}
	}()

	store, checks, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	resolverOpts := []principal.ResolverOption{principal.WithLogger(log)}
	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.onStop(func(context.Context) error { return client.Close() })
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
		resolverOpts = append(resolverOpts, principal.WithCache(principal.NewRedisCache(client, cfg.PrincipalCacheTTL)))
		log.InfoContext(ctx, "principal cache enabled", logger.Component("redis"))
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New(metrics.WithRuntimeMetrics())
	}

	notifications := email.NewNotifications(a.emailSender(), store)

	roles, err := a.loadRoles(ctx)
	if err != nil {
		return nil, err
	}
	subs := subscription.NewService(store,
		subscription.WithTrialPeriod(cfg.Subscription.TrialPeriod),
		subscription.WithLogger(log),
	)
	tokens, err := jwt.NewFromConfig(cfg.JWT)
	if err != nil {
		return nil, err
	}

	var paymentNotifier payment.Notifier = notifications
	if m != nil {
		paymentNotifier = m.PaymentNotifier(notifications)
	}
	ledgerOpts := []payment.Option{payment.WithNotifier(paymentNotifier), payment.WithLogger(log)}
	var screenshotURL func(string) string
	if cfg.Media.Enabled() {
		host, err := media.NewS3Host(ctx, cfg.Media)
		if err != nil {
			return nil, err
		}
		ledgerOpts = append(ledgerOpts, payment.WithScreenshots(host))
		screenshotURL = host.URL
	}

	a.limiter, err = ratelimiter.New(cfg.LoginLimit)
	if err != nil {
		return nil, err
	}

	if cfg.Reminder.Enabled {
		reminderOpts := []reminder.Option{
			reminder.WithLogger(log),
			reminder.WithTrialPeriod(cfg.Subscription.TrialPeriod),
		}
		if m != nil {
			reminderOpts = append(reminderOpts, reminder.WithObserver(m.ObserveReminder))
		}
		a.reminder = reminder.NewFromConfig(cfg.Reminder, store, notifications, reminderOpts...)
	}

	a.deps = api.Deps{
		Principals:    principal.NewResolver(store, store, resolverOpts...),
		Tokens:        tokens,
		Gate:          access.NewGate(roles, subs, access.WithLogger(log)),
		Subscriptions: subs,
		Ledger:        payment.NewLedger(store, ledgerOpts...),
		LoginLimiter:  a.limiter,
		Metrics:       m,
		HealthChecks:  checks,
		IPHeaders:     cfg.TrustedIPHeaders,
		MaxUploadSize: cfg.Media.MaxSize,
		Logger:        log,
		ScreenshotURL: screenshotURL,
	}
	return a, nil
}

func (a *App) openStore(ctx context.Context) (Store, []httpserver.Check, error) {
	if !a.cfg.Postgres.Enabled() {
		a.log.WarnContext(ctx, "PG_CONN_URL is not set, using the in-memory store")
		return memory.New(), nil, nil
	}

	pool, err := pg.Connect(ctx, a.cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	a.onStop(func(context.Context) error {
		pool.Close()
		return nil
	})
	if err := pg.Migrate(ctx, pool, postgres.Migrations, postgres.MigrationsDir, a.cfg.Postgres, a.log); err != nil {
		return nil, nil, err
	}
	checks := []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}}
	return postgres.New(pool), checks, nil
}

// loadRoles builds the authorizer from RBAC_ROLES_FILE or the embedded defaults.
// Owners and platform admins are stored with fixed role names, so both must exist.
func (a *App) loadRoles(ctx context.Context) (rbac.Authorizer, error) {
	source := rbac.DefaultRoles()
	if a.cfg.RolesFile != "" {
		var err error
		if source, err = rbac.NewYAMLFileSource(a.cfg.RolesFile); err != nil {
			return nil, err
		}
	}
	roles, err := rbac.NewAuthorizer(ctx, source)
	if err != nil {
		return nil, err
	}
	for _, role := range []string{principal.RoleOwner, principal.RoleAdmin} {
		if err := roles.VerifyRole(role); err != nil {
			return nil, fmt.Errorf("%w: role %q is not defined", err, role)
		}
	}
	a.log.InfoContext(ctx, "roles loaded", slog.Any("roles", roles.Roles()))
	return roles, nil
}

func (a *App) emailSender() email.Sender {
	if a.cfg.Email.Enabled() {
		sender, err := email.NewPostmarkSender(a.cfg.Email)
		if err == nil {
			return sender
		}
		a.log.Error("postmark sender unavailable, logging emails instead", logger.Error(err))
	}
	return email.NewLogSender(email.WithDir(a.cfg.Email.DevDir), email.WithLogger(a.log))
}

// Run serves HTTP and runs the background jobs until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	go a.limiter.Run(ctx, a.cfg.LoginLimit.PruneInterval)

	if a.reminder != nil {
		if err := a.reminder.Start(ctx, a.cfg.Reminder.Spec); err != nil {
			a.close(context.WithoutCancel(ctx))
			return err
		}
		job := a.reminder
		a.hooks = append([]httpserver.Hook{func(ctx context.Context) error {
			job.Stop(ctx)
			return nil
		}}, a.hooks...)
	}

	opts := []httpserver.Option{httpserver.WithLogger(a.log)}
	for _, h := range a.hooks {
		opts = append(opts, httpserver.WithStopHook(h))
	}
	server := httpserver.NewFromConfig(a.cfg.HTTP, opts...)
	err := server.Run(ctx, api.NewRouter(a.deps))
	if errors.Is(err, httpserver.ErrStart) {
		// stop hooks only run after a successful start
		a.close(context.WithoutCancel(ctx))
	}
	return err
}

func (a *App) onStop(h httpserver.Hook) {
	a.hooks = append(a.hooks, h)
}

func (a *App) close(ctx context.Context) {
	var errs []error
	for _, h := range a.hooks {
		errs = append(errs, h(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		a.log.ErrorContext(ctx, "failed to release resources", logger.Error(err))
	}
	a.hooks = nil
}
