package session

import (
	"log/slog"
	"time"
)

// Option configures a Manager.
type Option func(*Manager)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.cfg = cfg
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithTokenGenerator overrides the crypto/rand backed token generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(m *Manager) {
		if g != nil {
			m.tokens = g
		}
	}
}

// WithLogger sets the operational logger. Audit events go to the
// AuditLogger, not here.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithListener registers lifecycle listeners.
func WithListener(ls ...Listener) Option {
	return func(m *Manager) {
		for _, l := range ls {
			if l != nil {
				m.listeners = append(m.listeners, l)
			}
		}
	}
}

// WithAttributes sets the function computing Session.Attributes at login.
func WithAttributes(fn AttributesFunc) Option {
	return func(m *Manager) {
		m.attrs = fn
	}
}

// WithNoLoginSwitch replaces the no-login file check.
func WithNoLoginSwitch(on func() bool) Option {
	return func(m *Manager) {
		m.noLogin = on
	}
}
