// Package httpserver runs an http.Server with graceful shutdown, life-cycle hooks
// and JSON health endpoints.
//
// Run binds the listener first, so address errors surface synchronously and
// Server.Addr reports the real port when the address is ":0". The server stops
// when the context passed to Run is cancelled or Shutdown is called; stop hooks
// then run with the remaining shutdown budget. Signal handling belongs to the
// caller:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithStopHook(func(ctx context.Context) error {
//			job.Stop(ctx)
//			return nil
//		}),
//	)
//	r.Get("/healthz", httpserver.HealthHandler(log, 0,
//		httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
//	))
//	err := srv.Run(ctx, r)
//
// Start failures are joined with ErrStart and shutdown failures with ErrShutdown.
package httpserver
