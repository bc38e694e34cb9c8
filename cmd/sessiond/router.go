package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/openlims/authsession/core/health"
	"github.com/openlims/authsession/core/sessiontransport"
	"github.com/openlims/authsession/middleware"
	"github.com/openlims/authsession/pkg/clientip"
)

type routerDeps struct {
	log       *slog.Logger
	transport *sessiontransport.Transport
	metrics   http.Handler
	checks    []health.Check
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.LoggingWithConfig(middleware.LoggingConfig{
		Logger: d.log,
		Skip: func(r *http.Request) bool {
			return strings.HasPrefix(r.URL.Path, "/health") || r.URL.Path == "/metrics"
		},
	}))
	r.Use(clientip.Middleware)

	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness(d.log, d.checks...))
	r.Method(http.MethodGet, "/metrics", d.metrics)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BodyLimit(middleware.DefaultBodyLimit))
		d.transport.Routes(r)
	})

	return r
}
