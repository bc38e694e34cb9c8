package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openlims/authsession/core/logger"
	"github.com/openlims/authsession/core/session"
)

// Event names shared by every audit sink.
const (
	EventLogin          = "login"
	EventLoginFailed    = "login_failed"
	EventLogout         = "logout"
	EventSessionExpired = "session_expired"
	EventSessionLimit   = "session_limit"
)

// Logger writes audit events as structured log records under the "auth"
// component. Tokens are masked.
type Logger struct {
	log *slog.Logger
}

// NewLogger returns an audit Logger writing to log. A nil log discards.
func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = logger.Nop()
	}
	return &Logger{log: log.With(logger.Component("auth"))}
}

// LoginSucceeded records a new session.
func (l *Logger) LoginSucceeded(ctx context.Context, sess session.Session) {
	l.session(ctx, slog.LevelInfo, EventLogin, sess)
}

// LoginFailed records a rejected login attempt.
func (l *Logger) LoginFailed(ctx context.Context, userID, remoteHost string) {
	l.log.LogAttrs(ctx, slog.LevelWarn, "Audit event",
		logger.Event(EventLoginFailed),
		logger.ID("event_id", uuid.NewString()),
		logger.UserID(userID),
		logger.RemoteHost(remoteHost),
	)
}

// LoggedOut records a session closed by its owner.
func (l *Logger) LoggedOut(ctx context.Context, sess session.Session) {
	l.session(ctx, slog.LevelInfo, EventLogout, sess)
}

// SessionExpired records a session removed after inactivity.
func (l *Logger) SessionExpired(ctx context.Context, sess session.Session) {
	l.session(ctx, slog.LevelInfo, EventSessionExpired, sess)
}

// SessionLimitExceeded records a session evicted by the per-user limit.
func (l *Logger) SessionLimitExceeded(ctx context.Context, sess session.Session) {
	l.session(ctx, slog.LevelWarn, EventSessionLimit, sess)
}

func (l *Logger) session(ctx context.Context, level slog.Level, event string, sess session.Session) {
	l.log.LogAttrs(ctx, level, "Audit event",
		logger.Event(event),
		logger.ID("event_id", uuid.NewString()),
		logger.UserID(sess.UserID),
		logger.RemoteHost(sess.RemoteHost),
		logger.SessionToken(sess.Token),
	)
}
