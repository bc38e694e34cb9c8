package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/openlims/authsession/core/logger"
)

// Check is a dependency probe such as pg.Healthcheck or session.Manager.Check.
type Check func(context.Context) error

// Readiness verifies all dependencies. It responds "READY" when every check
// passes and 503 on the first failure.
//
// Example:
//
//	r.Get("/health/ready", health.Readiness(log,
//		pg.Healthcheck(pool),
//		manager.Check,
//	))
func Readiness(log *slog.Logger, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "Readiness check failed",
					logger.Component("health"),
					logger.Error(err),
				)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(http.StatusText(http.StatusServiceUnavailable)))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
