package session_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/openlims/authsession/core/session"
)

// mockAuth implements session.AuthenticationService for testing.
type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) Check(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockAuth) Authenticate(ctx context.Context, userID, password string) (bool, error) {
	args := m.Called(ctx, userID, password)
	return args.Bool(0), args.Error(1)
}

func (m *mockAuth) Principal(ctx context.Context, userID string) (session.Principal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(session.Principal), args.Error(1)
}

// mockEmailAuth additionally supports login by email.
type mockEmailAuth struct {
	mockAuth
}

func (m *mockEmailAuth) AuthenticateByEmail(ctx context.Context, email, password string) (session.Principal, bool, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(session.Principal), args.Bool(1), args.Error(2)
}

// mockAudit implements session.AuditLogger and session.SessionLimitAuditor.
type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) LoginSucceeded(ctx context.Context, sess session.Session) {
	m.Called(ctx, sess)
}

func (m *mockAudit) LoginFailed(ctx context.Context, userID, remoteHost string) {
	m.Called(ctx, userID, remoteHost)
}

func (m *mockAudit) LoggedOut(ctx context.Context, sess session.Session) {
	m.Called(ctx, sess)
}

func (m *mockAudit) SessionExpired(ctx context.Context, sess session.Session) {
	m.Called(ctx, sess)
}

func (m *mockAudit) SessionLimitExceeded(ctx context.Context, sess session.Session) {
	m.Called(ctx, sess)
}

// recordingAudit counts events without expectations; safe for concurrent use.
type recordingAudit struct {
	mu     sync.Mutex
	events map[string]int
}

func newRecordingAudit() *recordingAudit {
	return &recordingAudit{events: map[string]int{}}
}

func (r *recordingAudit) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event]++
}

func (r *recordingAudit) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[event]
}

func (r *recordingAudit) LoginSucceeded(context.Context, session.Session) { r.add("login") }
func (r *recordingAudit) LoginFailed(context.Context, string, string)     { r.add("login_failed") }
func (r *recordingAudit) LoggedOut(context.Context, session.Session)      { r.add("logout") }
func (r *recordingAudit) SessionExpired(context.Context, session.Session) { r.add("expired") }

// staticAuth accepts password "secret" for every user.
type staticAuth struct{}

func (staticAuth) Check(context.Context) error { return nil }

func (staticAuth) Authenticate(_ context.Context, _, password string) (bool, error) {
	return password == "secret", nil
}

func (staticAuth) Principal(_ context.Context, userID string) (session.Principal, error) {
	return session.NewPrincipal(userID, "", "", userID+"@example.org", nil), nil
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1700000000000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var fixedHost = session.RemoteHostFunc(func(context.Context) string { return "10.0.0.7" })

// recordingListener collects lifecycle notifications.
type recordingListener struct {
	mu      sync.Mutex
	opened  []string
	closed  []string
	reasons []session.CloseReason
}

func (l *recordingListener) SessionOpened(_ context.Context, sess session.Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened = append(l.opened, sess.Token)
}

func (l *recordingListener) SessionClosed(_ context.Context, sess session.Session, reason session.CloseReason) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = append(l.closed, sess.Token)
	l.reasons = append(l.reasons, reason)
}

// panickingListener panics on every call.
type panickingListener struct{}

func (panickingListener) SessionOpened(context.Context, session.Session) { panic("listener boom") }
func (panickingListener) SessionClosed(context.Context, session.Session, session.CloseReason) {
	panic("listener boom")
}
