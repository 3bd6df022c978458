package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/bizdesk/internal/app"
	"github.com/dmitrymomot/bizdesk/internal/config"
	"github.com/dmitrymomot/bizdesk/pkg/logger"
	"github.com/dmitrymomot/bizdesk/pkg/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", logger.Error(err))
		os.Exit(1)
	}

	log := logger.New(append(cfg.LoggerOptions(),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)...)
	log.Info("starting bizdesk", slog.String("env", cfg.Env), slog.String("addr", cfg.HTTP.Addr))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", logger.Error(err))
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		log.Error("bizdesk stopped with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("bizdesk stopped gracefully")
}
