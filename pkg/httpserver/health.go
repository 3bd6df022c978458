package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"

	"github.com/dmitrymomot/bizdesk/pkg/logger"
)

const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"

	defaultCheckTimeout = 2 * time.Second
)

// Check is one named readiness dependency, such as postgres or redis.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// HealthReport is the JSON body written by HealthHandler.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LivenessHandler always answers 200 with {"status":"ok"}.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, HealthReport{Status: StatusOK})
	}
}

// HealthHandler runs checks concurrently, each bounded by timeout (2s when zero).
// It answers 200 when all pass and 503 otherwise. Failure details are logged, not exposed.
func HealthHandler(log *slog.Logger, timeout time.Duration, checks ...Check) http.HandlerFunc {
	log = logger.OrDiscard(log)
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		report := HealthReport{Status: StatusOK, Checks: make(map[string]string, len(checks))}
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for _, c := range checks {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := c.Fn(ctx)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					log.WarnContext(ctx, "readiness check failed", slog.String("check", c.Name), logger.Error(err))
					report.Status = StatusUnavailable
					report.Checks[c.Name] = StatusUnavailable
					return
				}
				report.Checks[c.Name] = StatusOK
			}()
		}
		wg.Wait()

		if report.Status != StatusOK {
			render.Status(r, http.StatusServiceUnavailable)
		}
		render.JSON(w, r, report)
	}
}
