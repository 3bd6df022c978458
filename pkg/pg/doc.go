// Package pg bootstraps PostgreSQL access on top of pgx/v5 and goose/v3.
//
// Connect opens a *pgxpool.Pool with retries, Migrate applies embedded goose migrations through
// the same pool, WithTx wraps a unit of work in a transaction, and Healthcheck returns a readiness
// probe. Error helpers such as IsDuplicateKeyError classify *pgconn.PgError values.
//
//	var cfg pg.Config
//	if err := env.Parse(&cfg); err != nil {
//		return err
//	}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, ".", cfg, slog.Default()); err != nil {
//		return err
//	}
package pg
