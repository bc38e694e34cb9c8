package sessionmonitor_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openlims/authsession/core/email"
	"github.com/openlims/authsession/core/session"
	"github.com/openlims/authsession/core/sessionmonitor"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu      sync.Mutex
	reports []sessionmonitor.Report
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, r sessionmonitor.Report) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reports = append(n.reports, r)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.reports)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func entries(n int) []session.Entry {
	out := make([]session.Entry, n)
	for i := range out {
		out[i] = session.Entry{
			Session: session.Session{
				Token:            "alice-1709294400000x0123456789abcdef0123456789abcdef",
				UserID:           "alice",
				RemoteHost:       "10.0.0.7",
				StartedAt:        t0,
				ExpirationPeriod: 30 * time.Minute,
			},
			LastActiveAt: t0,
		}
	}
	return out
}

type countingSource struct {
	active    *int
	snapshots atomic.Int32
}

func (s *countingSource) Count() int { return *s.active }

func (s *countingSource) Sessions() []session.Entry {
	s.snapshots.Add(1)
	return entries(*s.active)
}

func source(n *int) *countingSource {
	return &countingSource{active: n}
}

func TestMonitor_Threshold(t *testing.T) {
	t.Parallel()

	active := 2
	clk := &clock{now: t0}
	notifier := &recordingNotifier{}
	mon := sessionmonitor.New(source(&active), notifier,
		sessionmonitor.WithConfig(sessionmonitor.Config{NotifyThreshold: 2, NotifyDelay: time.Hour}),
		sessionmonitor.WithClock(clk.Now),
	)
	ctx := context.Background()

	mon.SessionOpened(ctx, session.Session{})
	require.NoError(t, mon.Wait(ctx))
	assert.Zero(t, notifier.count(), "at threshold")

	active = 3
	mon.SessionOpened(ctx, session.Session{})
	require.NoError(t, mon.Wait(ctx))
	require.Equal(t, 1, notifier.count())

	r := notifier.reports[0]
	assert.Equal(t, 3, r.Active)
	assert.Equal(t, 2, r.Threshold)
	assert.Equal(t, t0, r.GeneratedAt)
	require.Len(t, r.Sessions, 3)
	assert.Equal(t, "alice-1709294400000x0123****************************", r.Sessions[0].Token)
	assert.Equal(t, t0.Add(30*time.Minute), r.Sessions[0].ExpiresAt)

	clk.Advance(59 * time.Minute)
	mon.SessionOpened(ctx, session.Session{})
	require.NoError(t, mon.Wait(ctx))
	assert.Equal(t, 1, notifier.count(), "within delay")

	clk.Advance(time.Minute)
	mon.SessionOpened(ctx, session.Session{})
	require.NoError(t, mon.Wait(ctx))
	assert.Equal(t, 2, notifier.count())
}

func TestMonitor_Disabled(t *testing.T) {
	t.Parallel()

	active := 100
	notifier := &recordingNotifier{}
	mon := sessionmonitor.New(source(&active), notifier)

	mon.SessionOpened(context.Background(), session.Session{})
	mon.SessionClosed(context.Background(), session.Session{}, session.CloseReasonLogout)
	require.NoError(t, mon.Wait(context.Background()))
	assert.Zero(t, notifier.count())
}

func TestMonitor_NotifierErrorIsLogged(t *testing.T) {
	t.Parallel()

	active := 2
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	mon := sessionmonitor.New(source(&active), notifier,
		sessionmonitor.WithConfig(sessionmonitor.Config{NotifyThreshold: 1}),
	)

	assert.NotPanics(t, func() { mon.SessionOpened(context.Background(), session.Session{}) })
	require.NoError(t, mon.Wait(context.Background()))
	assert.Equal(t, 1, notifier.count())
}

func TestMonitor_SnapshotsOnlyForReports(t *testing.T) {
	t.Parallel()

	active := 3
	src := source(&active)
	mon := sessionmonitor.New(src, &recordingNotifier{},
		sessionmonitor.WithConfig(sessionmonitor.Config{NotifyThreshold: 5, NotifyDelay: time.Hour}),
	)
	ctx := context.Background()

	mon.SessionOpened(ctx, session.Session{})
	mon.SessionClosed(ctx, session.Session{}, session.CloseReasonExpiration)
	assert.Zero(t, src.snapshots.Load())

	active = 6
	mon.SessionOpened(ctx, session.Session{})
	require.NoError(t, mon.Wait(ctx))
	assert.EqualValues(t, 1, src.snapshots.Load())

	mon.SessionOpened(ctx, session.Session{})
	assert.EqualValues(t, 1, src.snapshots.Load(), "within delay")
}

func TestMonitor_SourceFuncs(t *testing.T) {
	t.Parallel()

	src := sessionmonitor.SourceFuncs{
		CountFunc:    func() int { return 2 },
		SessionsFunc: func() []session.Entry { return entries(2) },
	}
	notifier := &recordingNotifier{}
	mon := sessionmonitor.New(src, notifier,
		sessionmonitor.WithConfig(sessionmonitor.Config{NotifyThreshold: 1}),
	)
	mon.SessionOpened(context.Background(), session.Session{})
	require.NoError(t, mon.Wait(context.Background()))
	require.Equal(t, 1, notifier.count())
	assert.Len(t, notifier.reports[0].Sessions, 2)
}

type blockingNotifier struct {
	release chan struct{}
}

func (n blockingNotifier) Notify(ctx context.Context, _ sessionmonitor.Report) error {
	<-n.release
	return nil
}

func TestMonitor_WaitHonoursContext(t *testing.T) {
	t.Parallel()

	active := 2
	n := blockingNotifier{release: make(chan struct{})}
	mon := sessionmonitor.New(source(&active), n,
		sessionmonitor.WithConfig(sessionmonitor.Config{NotifyThreshold: 1}),
	)
	mon.SessionOpened(context.Background(), session.Session{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := mon.Wait(ctx)
	require.ErrorIs(t, err, sessionmonitor.ErrClosed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(n.release)
	assert.NoError(t, mon.Wait(context.Background()))
}

func TestMonitor_DefaultNotifier(t *testing.T) {
	t.Parallel()

	active := 5
	mon := sessionmonitor.New(source(&active), nil,
		sessionmonitor.WithConfig(sessionmonitor.Config{NotifyThreshold: 1}),
	)
	assert.NotPanics(t, func() { mon.SessionOpened(context.Background(), session.Session{}) })
	assert.NoError(t, mon.Wait(context.Background()))
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendEmail(ctx context.Context, p email.SendEmailParams) error {
	return m.Called(ctx, p).Error(0)
}

func TestEmailNotifier(t *testing.T) {
	t.Parallel()

	t.Run("requires recipient", func(t *testing.T) {
		t.Parallel()

		_, err := sessionmonitor.NewEmailNotifier(&mockSender{}, "")
		assert.ErrorIs(t, err, sessionmonitor.ErrNoRecipient)
	})

	t.Run("renders report", func(t *testing.T) {
		t.Parallel()

		sender := &mockSender{}
		sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
			return p.SendTo == "ops@example.com" &&
				p.Subject == "3 active sessions (threshold 2)" &&
				p.Tag == "session_report" &&
				p.Validate() == nil
		})).Return(nil).Once()

		n, err := sessionmonitor.NewEmailNotifier(sender, "ops@example.com")
		require.NoError(t, err)

		r := sessionmonitor.Report{
			Active:      3,
			Threshold:   2,
			GeneratedAt: t0,
			Sessions: []sessionmonitor.Line{
				{Token: "bob-1x0123****", UserID: "<bob>", RemoteHost: "10.0.0.8", StartedAt: t0},
			},
		}
		require.NoError(t, n.Notify(context.Background(), r))
		sender.AssertExpectations(t)

		body := sender.Calls[0].Arguments.Get(1).(email.SendEmailParams).BodyHTML
		assert.Contains(t, body, "&lt;bob&gt;")
		assert.Contains(t, body, "2024-03-01T12:00:00Z")
		assert.Contains(t, body, "<!DOCTYPE html>")
		assert.Contains(t, body, "3 sessions are active, above the threshold of 2.")
		assert.Contains(t, body, ">never</td>")
	})

	t.Run("propagates sender error", func(t *testing.T) {
		t.Parallel()

		sender := &mockSender{}
		sender.On("SendEmail", mock.Anything, mock.Anything).Return(email.ErrFailedToSendEmail)

		n, err := sessionmonitor.NewEmailNotifier(sender, "ops@example.com")
		require.NoError(t, err)
		assert.ErrorIs(t, n.Notify(context.Background(), sessionmonitor.Report{}), email.ErrFailedToSendEmail)
	})
}
