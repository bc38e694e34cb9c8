package sessionmonitor

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/openlims/authsession/core/logger"
	"github.com/openlims/authsession/core/session"
	"github.com/openlims/authsession/pkg/async"
)

// ErrClosed is returned by Wait when the context ends before in-flight
// reports are sent.
var ErrClosed = errors.New("session monitor: pending reports not delivered")

// SessionSource reports the live sessions. *session.Manager satisfies it.
type SessionSource interface {
	Count() int
	Sessions() []session.Entry
}

// SourceFuncs adapts a pair of functions to SessionSource. It lets a Monitor
// be built before the session.Manager it listens to.
type SourceFuncs struct {
	CountFunc    func() int
	SessionsFunc func() []session.Entry
}

// Count calls CountFunc.
func (f SourceFuncs) Count() int { return f.CountFunc() }

// Sessions calls SessionsFunc.
func (f SourceFuncs) Sessions() []session.Entry { return f.SessionsFunc() }

// Notifier delivers a session report.
type Notifier interface {
	Notify(ctx context.Context, r Report) error
}

// Report is a snapshot of the live sessions taken when the active count
// passed the threshold.
type Report struct {
	Active      int
	Threshold   int
	GeneratedAt time.Time
	Sessions    []Line
}

// Line describes one session in a Report. Token is masked.
type Line struct {
	Token        string
	UserID       string
	RemoteHost   string
	StartedAt    time.Time
	LastActiveAt time.Time
	// ExpiresAt is zero for sessions that never expire.
	ExpiresAt time.Time
}

// Monitor is a session.Listener logging the active session count. Above
// the configured threshold it sends a Report, at most once per NotifyDelay.
type Monitor struct {
	cfg      Config
	source   SessionSource
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time

	mu           sync.Mutex
	lastNotified time.Time
	pending      []*async.ExecFuture
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithConfig replaces the zero Config, which never notifies.
func WithConfig(cfg Config) Option {
	return func(m *Monitor) {
		m.cfg = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// New returns a Monitor reading sessions from source. A nil notifier logs
// reports instead of sending them.
func New(source SessionSource, notifier Notifier, opts ...Option) *Monitor {
	m := &Monitor{
		source:   source,
		notifier: notifier,
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("session_monitor"))
	if m.notifier == nil {
		m.notifier = NewLogNotifier(m.log)
	}
	return m
}

// SessionOpened implements session.Listener. The session list is only
// snapshotted when a report is due; delivery runs in the background.
func (m *Monitor) SessionOpened(ctx context.Context, _ session.Session) {
	active := m.source.Count()
	m.log.InfoContext(ctx, "Session opened", logger.Count("active_sessions", active))

	if !m.due(active) {
		return
	}

	f := async.Exec(context.WithoutCancel(ctx), m.report(m.source.Sessions()), m.deliver)

	m.mu.Lock()
	m.pending = append(slices.DeleteFunc(m.pending, (*async.ExecFuture).IsComplete), f)
	m.mu.Unlock()
}

// SessionClosed implements session.Listener.
func (m *Monitor) SessionClosed(ctx context.Context, _ session.Session, reason session.CloseReason) {
	m.log.DebugContext(ctx, "Session closed",
		logger.Reason(reason.String()),
		logger.Count("active_sessions", m.source.Count()),
	)
}

// Wait blocks until reports already started have been delivered or have
// failed. Failures are logged when they happen, not returned here.
func (m *Monitor) Wait(ctx context.Context) error {
	m.mu.Lock()
	pending := slices.Clone(m.pending)
	m.mu.Unlock()

	for _, f := range pending {
		_ = f.AwaitContext(ctx)
		if !f.IsComplete() {
			return errors.Join(ErrClosed, ctx.Err())
		}
	}

	m.mu.Lock()
	m.pending = slices.DeleteFunc(m.pending, (*async.ExecFuture).IsComplete)
	m.mu.Unlock()
	return nil
}

func (m *Monitor) deliver(ctx context.Context, r Report) error {
	err := m.notifier.Notify(ctx, r)
	if err != nil {
		m.log.ErrorContext(ctx, "Failed to send session report",
			logger.Count("active_sessions", r.Active),
			logger.Error(err),
		)
	}
	return err
}

func (m *Monitor) due(active int) bool {
	if m.cfg.NotifyThreshold <= 0 || active <= m.cfg.NotifyThreshold {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if !m.lastNotified.IsZero() && now.Sub(m.lastNotified) < m.cfg.NotifyDelay {
		return false
	}
	m.lastNotified = now
	return true
}

func (m *Monitor) report(entries []session.Entry) Report {
	r := Report{
		Active:      len(entries),
		Threshold:   m.cfg.NotifyThreshold,
		GeneratedAt: m.now(),
		Sessions:    make([]Line, 0, len(entries)),
	}
	for _, e := range entries {
		l := Line{
			Token:        logger.MaskToken(e.Session.Token),
			UserID:       e.Session.UserID,
			RemoteHost:   e.Session.RemoteHost,
			StartedAt:    e.Session.StartedAt,
			LastActiveAt: e.LastActiveAt,
		}
		if e.Session.ExpirationPeriod > 0 {
			l.ExpiresAt = e.LastActiveAt.Add(e.Session.ExpirationPeriod)
		}
		r.Sessions = append(r.Sessions, l)
	}
	return r
}
