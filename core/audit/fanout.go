package audit

import (
	"context"
	"log/slog"

	"github.com/openlims/authsession/core/logger"
	"github.com/openlims/authsession/core/session"
)

// Fanout forwards every event to each sink in order. SessionLimitExceeded
// reaches only the sinks implementing session.SessionLimitAuditor. A
// panicking sink does not stop delivery to the rest.
func Fanout(sinks ...session.AuditLogger) *Multi {
	m := &Multi{log: logger.Nop()}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Multi is the AuditLogger returned by Fanout.
type Multi struct {
	sinks []session.AuditLogger
	log   *slog.Logger
}

// WithLogger sets the logger that records sink panics and returns m.
func (m *Multi) WithLogger(log *slog.Logger) *Multi {
	if log != nil {
		m.log = log.With(logger.Component("audit"))
	}
	return m
}

// Len returns the number of sinks.
func (m *Multi) Len() int { return len(m.sinks) }

// LoginSucceeded forwards a successful login to every sink.
func (m *Multi) LoginSucceeded(ctx context.Context, sess session.Session) {
	m.each(ctx, EventLogin, func(s session.AuditLogger) { s.LoginSucceeded(ctx, sess) })
}

// LoginFailed forwards a rejected login to every sink.
func (m *Multi) LoginFailed(ctx context.Context, userID, remoteHost string) {
	m.each(ctx, EventLoginFailed, func(s session.AuditLogger) { s.LoginFailed(ctx, userID, remoteHost) })
}

// LoggedOut forwards a logout to every sink.
func (m *Multi) LoggedOut(ctx context.Context, sess session.Session) {
	m.each(ctx, EventLogout, func(s session.AuditLogger) { s.LoggedOut(ctx, sess) })
}

// SessionExpired forwards an expiration to every sink.
func (m *Multi) SessionExpired(ctx context.Context, sess session.Session) {
	m.each(ctx, EventSessionExpired, func(s session.AuditLogger) { s.SessionExpired(ctx, sess) })
}

// SessionLimitExceeded forwards an eviction to the sinks that record it.
func (m *Multi) SessionLimitExceeded(ctx context.Context, sess session.Session) {
	m.each(ctx, EventSessionLimit, func(s session.AuditLogger) {
		if sla, ok := s.(session.SessionLimitAuditor); ok {
			sla.SessionLimitExceeded(ctx, sess)
		}
	})
}

func (m *Multi) each(ctx context.Context, event string, fn func(session.AuditLogger)) {
	for i, s := range m.sinks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.log.ErrorContext(ctx, "Audit sink panicked",
						logger.Event(event),
						logger.Count("sink", i),
						slog.Any("panic", r),
					)
				}
			}()
			fn(s)
		}()
	}
}
