package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openlims/authsession/core/session"
)

const namespace = "authsession"

// Collector counts session events for Prometheus. It implements
// session.AuditLogger and session.SessionLimitAuditor, so it is usually
// combined with other sinks through audit.Fanout.
type Collector struct {
	logins   prometheus.Counter
	failures prometheus.Counter
	closed   *prometheus.CounterVec
}

// NewCollector registers the session metrics with reg. active, when not
// nil, backs the active sessions gauge; pass (*session.Manager).Count.
func NewCollector(reg prometheus.Registerer, active func() int) *Collector {
	c := &Collector{
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Sessions opened.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_failures_total",
			Help:      "Rejected login attempts.",
		}),
		closed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_closed_total",
			Help:      "Sessions closed, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(c.logins, c.failures, c.closed)

	if active != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}, func() float64 { return float64(active()) }))
	}

	return c
}

// LoginSucceeded counts a login.
func (c *Collector) LoginSucceeded(context.Context, session.Session) {
	c.logins.Inc()
}

// LoginFailed counts a rejected login.
func (c *Collector) LoginFailed(context.Context, string, string) {
	c.failures.Inc()
}

// LoggedOut counts a logout.
func (c *Collector) LoggedOut(context.Context, session.Session) {
	c.closed.WithLabelValues(session.CloseReasonLogout.String()).Inc()
}

// SessionExpired counts an expiration.
func (c *Collector) SessionExpired(context.Context, session.Session) {
	c.closed.WithLabelValues(session.CloseReasonExpiration.String()).Inc()
}

// SessionLimitExceeded counts an eviction by the per-user limit.
func (c *Collector) SessionLimitExceeded(context.Context, session.Session) {
	c.closed.WithLabelValues(session.CloseReasonSessionLimit.String()).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
