package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/bizdesk/pkg/logger"
)

type config struct {
	addr              string
	readTimeout       time.Duration
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	shutdownTimeout   time.Duration
	logger            *slog.Logger
	startHooks        []Hook
	stopHooks         []Hook
}

// Server runs one http.Server until its context is cancelled or Shutdown is called.
type Server struct {
	cfg *config

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	once     sync.Once
	stopErr  error
}

// New returns a configured Server.
func New(opts ...Option) *Server {
	cfg := &config{
		addr:            ":8080",
		shutdownTimeout: 10 * time.Second,
		logger:          logger.Discard(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Server{cfg: cfg}
}

// Addr returns the bound address once Run is listening, or "".
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run binds the address, runs the start hooks and serves handler.
// It returns after ctx is cancelled or Shutdown is called and the stop hooks have run.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, ErrAlreadyRunning)
	}
	ln, err := net.Listen("tcp", s.cfg.addr)
	if err != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       s.cfg.readTimeout,
		ReadHeaderTimeout: s.cfg.readHeaderTimeout,
		WriteTimeout:      s.cfg.writeTimeout,
		IdleTimeout:       s.cfg.idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.cfg.logger.Handler(), slog.LevelWarn),
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	s.srv = srv
	s.listener = ln
	s.mu.Unlock()

	for _, h := range s.cfg.startHooks {
		if err := h(ctx); err != nil {
			_ = ln.Close()
			return errors.Join(ErrStart, err)
		}
	}

	s.cfg.logger.InfoContext(ctx, "http server started", slog.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	var serveErr error
	select {
	case <-ctx.Done():
		_ = s.Shutdown(context.Background())
		serveErr = <-errCh
	case serveErr = <-errCh:
		if errors.Is(serveErr, http.ErrServerClosed) {
			// Shutdown was called directly; block until its stop hooks are done.
			_ = s.Shutdown(context.Background())
		}
	}

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, serveErr)
	}
	return s.stopErr
}

// Shutdown drains connections within the shutdown timeout and then runs the stop hooks.
// Repeated calls return the first result. Calling it before Run is a no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	s.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.shutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
		for _, h := range s.cfg.stopHooks {
			if err := h(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			s.stopErr = errors.Join(append([]error{ErrShutdown}, errs...)...)
			s.cfg.logger.ErrorContext(ctx, "http server stopped with errors", logger.Error(s.stopErr))
			return
		}
		s.cfg.logger.InfoContext(ctx, "http server stopped")
	})
	return s.stopErr
}
