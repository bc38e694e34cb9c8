package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/openlims/authsession/core/logger"
	"github.com/openlims/authsession/core/session"
)

// StreamAdder is satisfied by *redis.Client.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// AuditStream publishes session audit events to a Redis stream so that
// other services can consume them. It implements session.AuditLogger and
// session.SessionLimitAuditor.
type AuditStream struct {
	client StreamAdder
	stream string
	maxLen int64
	log    *slog.Logger
	now    func() time.Time
}

// AuditStreamOption configures an AuditStream.
type AuditStreamOption func(*AuditStream)

// WithStreamName overrides the default "sessions:audit" stream.
func WithStreamName(name string) AuditStreamOption {
	return func(s *AuditStream) {
		if name != "" {
			s.stream = name
		}
	}
}

// WithMaxLen caps the stream length approximately. 0 disables trimming.
func WithMaxLen(n int64) AuditStreamOption {
	return func(s *AuditStream) {
		s.maxLen = n
	}
}

// WithStreamLogger sets the logger used for publish failures.
func WithStreamLogger(l *slog.Logger) AuditStreamOption {
	return func(s *AuditStream) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStreamClock overrides time.Now.
func WithStreamClock(now func() time.Time) AuditStreamOption {
	return func(s *AuditStream) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAuditStream returns an AuditStream writing through client.
func NewAuditStream(client StreamAdder, opts ...AuditStreamOption) *AuditStream {
	s := &AuditStream{
		client: client,
		stream: "sessions:audit",
		log:    logger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuditStream) LoginSucceeded(ctx context.Context, sess session.Session) {
	s.publish(ctx, "login", sess.UserID, sess.RemoteHost, sess.Token)
}

func (s *AuditStream) LoginFailed(ctx context.Context, userID, remoteHost string) {
	s.publish(ctx, "login_failed", userID, remoteHost, "")
}

func (s *AuditStream) LoggedOut(ctx context.Context, sess session.Session) {
	s.publish(ctx, "logout", sess.UserID, sess.RemoteHost, sess.Token)
}

func (s *AuditStream) SessionExpired(ctx context.Context, sess session.Session) {
	s.publish(ctx, "session_expired", sess.UserID, sess.RemoteHost, sess.Token)
}

func (s *AuditStream) SessionLimitExceeded(ctx context.Context, sess session.Session) {
	s.publish(ctx, "session_limit", sess.UserID, sess.RemoteHost, sess.Token)
}

func (s *AuditStream) publish(ctx context.Context, event, userID, remoteHost, tok string) {
	values := map[string]any{
		"event_id":    uuid.NewString(),
		"event":       event,
		"user_id":     userID,
		"remote_host": remoteHost,
		"occurred_at": s.now().UTC().Format(time.RFC3339Nano),
	}
	if tok != "" {
		values["session"] = logger.MaskToken(tok)
	}

	args := &redis.XAddArgs{Stream: s.stream, Values: values}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	// Audit must not fail the session operation; publish errors are logged only.
	// A request that ends after a logout still gets its event recorded.
	if err := s.client.XAdd(context.WithoutCancel(ctx), args).Err(); err != nil {
		s.log.WarnContext(ctx, "Failed to publish audit event",
			logger.Component("audit_stream"),
			logger.Event(event),
			logger.UserID(userID),
			logger.Error(err),
		)
	}
}
