package session

import (
	"context"
	"time"
)

// AuthenticationService checks credentials and resolves principals.
// Implementations must be safe for concurrent use; the manager never
// serializes calls to them.
type AuthenticationService interface {
	// Check reports whether the back-end is reachable.
	Check(ctx context.Context) error
	// Authenticate reports whether password is valid for userID. A false
	// result with a nil error is an ordinary rejection.
	Authenticate(ctx context.Context, userID, password string) (bool, error)
	// Principal returns the identity of userID, or ErrInvalidArgument if
	// the user is unknown.
	Principal(ctx context.Context, userID string) (Principal, error)
}

// EmailAuthenticator is implemented by back-ends that can log users in by
// email address.
type EmailAuthenticator interface {
	AuthenticateByEmail(ctx context.Context, email, password string) (Principal, bool, error)
}

// RemoteService is implemented by back-ends living in another process.
// A failing Check on a remote back-end is logged, not fatal, at start-up.
type RemoteService interface {
	Remote() bool
}

// AuditLogger records security-relevant session events. Calls are
// fire-and-forget: the manager recovers from panics and never waits on
// a result.
type AuditLogger interface {
	LoginSucceeded(ctx context.Context, sess Session)
	LoginFailed(ctx context.Context, userID, remoteHost string)
	LoggedOut(ctx context.Context, sess Session)
	SessionExpired(ctx context.Context, sess Session)
}

// SessionLimitAuditor is implemented by audit loggers that record sessions
// closed because their user opened too many.
type SessionLimitAuditor interface {
	SessionLimitExceeded(ctx context.Context, sess Session)
}

// RemoteHostProvider resolves the caller's address. It is consulted once
// per Open.
type RemoteHostProvider interface {
	RemoteHost(ctx context.Context) string
}

// RemoteHostFunc adapts a function to RemoteHostProvider.
type RemoteHostFunc func(ctx context.Context) string

// RemoteHost calls f.
func (f RemoteHostFunc) RemoteHost(ctx context.Context) string { return f(ctx) }

// Listener observes session lifecycle changes. Calls happen after the store
// lock is released.
type Listener interface {
	SessionOpened(ctx context.Context, sess Session)
	SessionClosed(ctx context.Context, sess Session, reason CloseReason)
}

// TokenGenerator mints session tokens. *token.Generator satisfies it.
type TokenGenerator interface {
	New(userID string, now time.Time) (string, error)
}

// AttributesFunc computes the Attributes of a new session.
type AttributesFunc func(ctx context.Context, p Principal) map[string]any
