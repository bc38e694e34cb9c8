package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/openlims/authsession/core/logger"
	"github.com/openlims/authsession/pkg/token"
)

// Manager opens, looks up and closes sessions. All state lives in a single
// in-memory Store; expiration is detected lazily on access.
type Manager struct {
	auth  AuthenticationService
	audit AuditLogger
	hosts RemoteHostProvider

	store     *Store
	tokens    TokenGenerator
	now       func() time.Time
	logger    *slog.Logger
	cfg       Config
	listeners []Listener
	attrs     AttributesFunc
	noLogin   func() bool
}

// NewManager creates a Manager. All three collaborators are required.
func NewManager(auth AuthenticationService, audit AuditLogger, hosts RemoteHostProvider, opts ...Option) (*Manager, error) {
	if auth == nil {
		return nil, ErrNoAuthenticationService
	}
	if audit == nil {
		return nil, ErrNoAuditLogger
	}
	if hosts == nil {
		return nil, ErrNoRemoteHostProvider
	}

	m := &Manager{
		auth:   auth,
		audit:  audit,
		hosts:  hosts,
		store:  NewStore(),
		tokens: token.NewGenerator(),
		now:    time.Now,
		logger: logger.Nop(),
		cfg:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.cfg.Validate(); err != nil {
		return nil, err
	}
	if m.noLogin == nil {
		m.noLogin = m.noLoginFileExists
	}
	m.logger = m.logger.With(logger.Component("session"))

	return m, nil
}

// Open authenticates userID and starts a session, returning its token.
// Errors are *Error values of kind KindInput, KindAuthenticationFailed or
// KindEnvironment.
func (m *Manager) Open(ctx context.Context, userID, password string) (string, error) {
	const op = "open"

	if isBlank(userID) || isBlank(password) {
		return "", inputError(op, "user id and password must not be blank")
	}

	remoteHost := m.hosts.RemoteHost(ctx)

	if err := guard(func() error { return m.auth.Check(ctx) }); err != nil {
		m.logger.ErrorContext(ctx, "Authentication service is not available",
			logger.UserID(userID),
			logger.Error(err),
		)
		return "", environmentError(op, "authentication service is not available", err)
	}

	sessionUser, principal, err := m.authenticate(ctx, op, userID, password)
	if err != nil {
		m.loginFailed(ctx, userID, remoteHost, err)
		return "", err
	}

	sess, evicted, err := m.create(ctx, op, sessionUser, principal, remoteHost)
	if err != nil {
		m.loginFailed(ctx, userID, remoteHost, err)
		return "", err
	}

	for _, e := range evicted {
		m.closed(ctx, e.Session, CloseReasonSessionLimit)
	}

	m.safely(ctx, "login", func() { m.audit.LoginSucceeded(ctx, sess.clone()) })
	m.logger.InfoContext(ctx, "Session opened",
		logger.UserID(sess.UserID),
		logger.RemoteHost(remoteHost),
		logger.SessionToken(sess.Token),
	)
	for _, l := range m.listeners {
		m.safely(ctx, "session_opened", func() { l.SessionOpened(ctx, sess.clone()) })
	}

	return sess.Token, nil
}

// Lookup returns the live session for tok and refreshes its activity time.
// An expired session is removed and reported as KindInvalidSession.
func (m *Manager) Lookup(ctx context.Context, tok string) (Session, error) {
	return m.access(ctx, "lookup", tok, func(tx *Tx, now time.Time) {
		tx.Touch(tok, now)
	})
}

// Close ends the session for tok. The token is validated exactly like
// Lookup and the removal happens in the same critical section.
func (m *Manager) Close(ctx context.Context, tok string) error {
	sess, err := m.access(ctx, "close", tok, func(tx *Tx, _ time.Time) {
		tx.Remove(tok)
	})
	if err != nil {
		return err
	}
	m.closed(ctx, sess, CloseReasonLogout)
	return nil
}

// Expire ends the session for tok as if it had timed out.
func (m *Manager) Expire(ctx context.Context, tok string) error {
	sess, err := m.access(ctx, "expire", tok, func(tx *Tx, _ time.Time) {
		tx.Remove(tok)
	})
	if err != nil {
		return err
	}
	m.closed(ctx, sess, CloseReasonExpiration)
	return nil
}

// TryLookup returns the session for tok without checking expiration or
// refreshing activity.
func (m *Manager) TryLookup(tok string) (Session, bool) {
	if isBlank(tok) {
		return Session{}, false
	}
	e, ok := m.store.Get(tok)
	if !ok {
		return Session{}, false
	}
	return e.Session.clone(), true
}

// IsWellFormed reports whether tok has the syntactic shape of a session
// token. It does not take the store lock.
func (m *Manager) IsWellFormed(tok string) bool {
	return token.IsWellFormed(tok)
}

// Count returns the number of stored sessions, including expired sessions
// that have not been accessed since they timed out.
func (m *Manager) Count() int {
	return m.store.Len()
}

// Sessions returns copies of all stored sessions ordered by start time.
func (m *Manager) Sessions() []Entry {
	entries := m.store.Snapshot()
	for i := range entries {
		entries[i].Session = entries[i].Session.clone()
	}
	return entries
}

// Check verifies the authentication back-end is reachable. Failures of a
// remote back-end are only logged.
func (m *Manager) Check(ctx context.Context) error {
	err := guard(func() error { return m.auth.Check(ctx) })
	if err == nil {
		return nil
	}
	if rs, ok := m.auth.(RemoteService); ok && rs.Remote() {
		m.logger.WarnContext(ctx, "Remote authentication service is not available", logger.Error(err))
		return nil
	}
	return environmentError("check", "authentication service is not available", err)
}

func (m *Manager) authenticate(ctx context.Context, op, userID, password string) (string, Principal, error) {
	var ok bool
	err := guard(func() (err error) {
		ok, err = m.auth.Authenticate(ctx, userID, password)
		return err
	})
	if err != nil {
		return "", Principal{}, environmentError(op, "authentication service failed", err)
	}
	if ok {
		p, err := m.principal(ctx, op, userID)
		return userID, p, err
	}

	if m.cfg.TryEmailAsUserName && strings.Contains(userID, "@") {
		if ea, can := m.auth.(EmailAuthenticator); can {
			var p Principal
			err := guard(func() (err error) {
				p, ok, err = ea.AuthenticateByEmail(ctx, userID, password)
				return err
			})
			if err != nil {
				return "", Principal{}, environmentError(op, "authentication service failed", err)
			}
			if ok {
				if isBlank(p.UserID) {
					return "", Principal{}, environmentError(op, "email login returned no user id", nil)
				}
				return p.UserID, p, nil
			}
		}
	}

	return "", Principal{}, &Error{Kind: KindAuthenticationFailed, Op: op, Reason: "invalid credentials"}
}

func (m *Manager) principal(ctx context.Context, op, userID string) (Principal, error) {
	var p Principal
	err := guard(func() (err error) {
		p, err = m.auth.Principal(ctx, userID)
		return err
	})
	if errors.Is(err, ErrInvalidArgument) {
		return Principal{}, environmentError(op, "authenticated user has no principal", err)
	}
	if err != nil {
		return Principal{}, environmentError(op, "cannot resolve principal", err)
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	return p, nil
}

// create mints a token and inserts the session, evicting the least
// recently active sessions of the user when the per-user limit is reached.
func (m *Manager) create(ctx context.Context, op, userID string, p Principal, remoteHost string) (Session, []Entry, error) {
	now := m.now()
	tok, err := m.tokens.New(userID, now)
	if err != nil {
		return Session{}, nil, environmentError(op, "cannot generate session token", err)
	}

	sess := Session{
		Token:            tok,
		UserID:           userID,
		Principal:        p.clone(),
		RemoteHost:       remoteHost,
		StartedAt:        now,
		ExpirationPeriod: m.cfg.ExpirationPeriod,
	}
	if m.attrs != nil {
		sess.Attributes = maps.Clone(m.attrs(ctx, sess.Principal))
	}

	var evicted []Entry
	err = m.store.Update(func(tx *Tx) error {
		if _, exists := tx.Get(tok); exists {
			return errTokenCollision
		}
		if limit := m.cfg.MaxSessionsPerUser; limit > 0 {
			own := tx.ByUser(userID)
			for len(own) >= limit {
				if e, ok := tx.Remove(own[0].Session.Token); ok {
					evicted = append(evicted, e)
				}
				own = own[1:]
			}
		}
		tx.Insert(sess, now)
		return nil
	})
	if err != nil {
		return Session{}, nil, environmentError(op, "cannot store session", err)
	}

	return sess, evicted, nil
}

// access validates tok and runs act on its live entry. Existence, token
// equality and expiration are checked in the same critical section as act.
func (m *Manager) access(ctx context.Context, op, tok string, act func(tx *Tx, now time.Time)) (Session, error) {
	if isBlank(tok) {
		return Session{}, inputError(op, "session token must not be blank")
	}
	if !token.HasSegments(tok) {
		m.logger.DebugContext(ctx, "Session token rejected",
			logger.Action(op),
			logger.Reason(ReasonMalformed),
		)
		return Session{}, invalidSession(op, ReasonMalformed)
	}

	override := m.expirationOverride()
	now := m.now()

	var (
		sess    Session
		expired bool
	)
	err := m.store.Update(func(tx *Tx) error {
		e, ok := tx.Get(tok)
		if !ok {
			return invalidSession(op, ReasonUnknown)
		}
		if e.Session.Token != tok {
			return invalidSession(op, ReasonMismatch)
		}
		period := e.Session.ExpirationPeriod
		if override > 0 {
			period = override
		}
		if e.ExpiredAfter(now, period) {
			tx.Remove(tok)
			sess, expired = e.Session, true
			return invalidSession(op, ReasonExpired)
		}
		act(tx, now)
		sess = e.Session
		return nil
	})

	if expired {
		m.closed(ctx, sess, CloseReasonExpiration)
	}
	if err != nil {
		m.logger.DebugContext(ctx, "Session token rejected",
			logger.Action(op),
			logger.UserID(token.UserID(tok)),
			logger.SessionToken(tok),
			logger.Reason(reasonOf(err)),
		)
		return Session{}, err
	}

	return sess.clone(), nil
}

// closed audits a removed session and notifies listeners.
func (m *Manager) closed(ctx context.Context, sess Session, reason CloseReason) {
	switch reason {
	case CloseReasonLogout:
		m.safely(ctx, "logout", func() { m.audit.LoggedOut(ctx, sess.clone()) })
	case CloseReasonExpiration:
		m.safely(ctx, "session_expired", func() { m.audit.SessionExpired(ctx, sess.clone()) })
	case CloseReasonSessionLimit:
		if sla, ok := m.audit.(SessionLimitAuditor); ok {
			m.safely(ctx, "session_limit", func() { sla.SessionLimitExceeded(ctx, sess.clone()) })
		}
	}

	m.logger.InfoContext(ctx, "Session closed",
		logger.UserID(sess.UserID),
		logger.SessionToken(sess.Token),
		logger.Reason(reason.String()),
	)

	for _, l := range m.listeners {
		m.safely(ctx, "session_closed", func() { l.SessionClosed(ctx, sess.clone(), reason) })
	}
}

func (m *Manager) loginFailed(ctx context.Context, userID, remoteHost string, err error) {
	m.safely(ctx, "login_failed", func() { m.audit.LoginFailed(ctx, userID, remoteHost) })

	level := slog.LevelWarn
	if KindOf(err) == KindEnvironment {
		level = slog.LevelError
	}
	m.logger.Log(ctx, level, "Login failed",
		logger.UserID(userID),
		logger.RemoteHost(remoteHost),
		logger.Error(err),
	)
}

func (m *Manager) expirationOverride() time.Duration {
	if m.cfg.NoLoginExpirationPeriod <= 0 || m.noLogin == nil || !m.noLogin() {
		return 0
	}
	return m.cfg.NoLoginExpirationPeriod
}

func (m *Manager) noLoginFileExists() bool {
	if m.cfg.NoLoginFile == "" {
		return false
	}
	_, err := os.Stat(m.cfg.NoLoginFile)
	return err == nil
}

// safely runs an observer callback, logging instead of propagating panics.
func (m *Manager) safely(ctx context.Context, event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.ErrorContext(ctx, "Session observer panicked",
				logger.Event(event),
				slog.Any("panic", r),
			)
		}
	}()
	fn()
}

// guard converts a back-end panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("authentication back-end panicked: %v", r)
		}
	}()
	return fn()
}

func reasonOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Reason
	}
	return ""
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
