package logger_test

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlims/authsession/core/logger"
)

func TestGroup(t *testing.T) {
	t.Parallel()
	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

// ============================================================================
// Error Handling Tests
// ============================================================================

func TestErrors(t *testing.T) {
	t.Parallel()
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	assert.True(t, logger.Errors(nil).Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestDuration(t *testing.T) {
	t.Parallel()
	attr := logger.Duration(5 * time.Second)
	require.Equal(t, "duration", attr.Key)
	assert.Equal(t, 5*time.Second, attr.Value.Duration())
}

// ============================================================================
// Identifier and Metadata Tests
// ============================================================================

func TestIdentifiers(t *testing.T) {
	t.Parallel()

	attr := logger.ID("event_id", "123")
	require.Equal(t, "event_id", attr.Key)
	assert.Equal(t, "123", attr.Value.Any())
	assert.True(t, logger.ID("key", nil).Equal(slog.Attr{}))

	attr = logger.RequestID("req-123")
	require.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "req-123", attr.Value.String())
	assert.True(t, logger.RequestID("").Equal(slog.Attr{}))

	assert.True(t, logger.Key("key", nil).Equal(slog.Attr{}))
	assert.Equal(t, "value", logger.Key("custom", "value").Value.Any())
}

func TestMetadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attr slog.Attr
		key  string
		want string
	}{
		{logger.Component("auth"), "component", "auth"},
		{logger.Event("login"), "event", "login"},
		{logger.Action("open"), "action", "open"},
		{logger.Result("success"), "result", "success"},
		{logger.Method("GET"), "method", "GET"},
		{logger.Path("/session"), "path", "/session"},
		{logger.ClientIP("10.0.0.1"), "client_ip", "10.0.0.1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.key, tt.attr.Key)
		assert.Equal(t, tt.want, tt.attr.Value.String())
	}

	assert.Equal(t, int64(404), logger.StatusCode(404).Value.Int64())
	assert.Equal(t, int64(3), logger.Count("active_sessions", 3).Value.Int64())
}

// ============================================================================
// Session Tests
// ============================================================================

func TestSessionAttributes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "alice", logger.UserID("alice").Value.String())
	assert.True(t, logger.UserID("").Equal(slog.Attr{}))
	assert.Equal(t, "10.1.2.3", logger.RemoteHost("10.1.2.3").Value.String())
	assert.True(t, logger.RemoteHost("").Equal(slog.Attr{}))
	assert.Equal(t, "unknown token", logger.Reason("unknown token").Value.String())
	assert.True(t, logger.Reason("").Equal(slog.Attr{}))
}

func TestSessionToken(t *testing.T) {
	t.Parallel()

	tok := "alice-1700000000000x" + strings.Repeat("ab", 16)
	attr := logger.SessionToken(tok)
	require.Equal(t, "session_token", attr.Key)

	masked := attr.Value.String()
	assert.Len(t, masked, len(tok))
	assert.True(t, strings.HasPrefix(masked, "alice-1700000000000xabab"))
	assert.NotContains(t, masked, strings.Repeat("ab", 16))
	assert.True(t, strings.HasSuffix(masked, strings.Repeat("*", 28)))

	assert.True(t, logger.SessionToken("").Equal(slog.Attr{}))
	assert.Equal(t, "*****", logger.MaskToken("abcde"))
}
