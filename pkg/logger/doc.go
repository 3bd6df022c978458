// Package logger builds the *slog.Logger used across bizdesk and keeps attribute names consistent.
//
// New applies functional options (format, level, output, static attributes, context extractors)
// and wraps the concrete slog handler with a decorator that pulls request-scoped values such as
// the request id or the authenticated principal out of context.Context on every record.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "bizdesk"),
//		logger.WithContextExtractors(requestIDExtractor),
//	)
//	log.InfoContext(ctx, "payment approved",
//		logger.PaymentID(req.ID),
//		logger.AccountID(req.AccountID),
//	)
//
// Services accept a logger through an option and fall back to Discard so that libraries never
// write to stdout unless the application asks them to.
package logger
