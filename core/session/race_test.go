package session_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlims/authsession/core/session"
)

// TestConcurrentOpenLookupClose opens sessions for distinct users in parallel,
// then races lookups against closes on the same tokens.
func TestConcurrentOpenLookupClose(t *testing.T) {
	t.Parallel()

	audit := newRecordingAudit()
	m := newManager(t, staticAuth{}, audit)
	ctx := context.Background()

	const users = 100
	tokens := make([]string, users)

	var wg sync.WaitGroup
	wg.Add(users)
	for i := range users {
		go func() {
			defer wg.Done()
			tok, err := m.Open(ctx, fmt.Sprintf("user%03d", i), "secret")
			assert.NoError(t, err)
			tokens[i] = tok
		}()
	}
	wg.Wait()
	require.Equal(t, users, m.Count())

	var closed [users]atomic.Bool
	var staleReads atomic.Int32

	wg.Add(users * 3)
	for i := range users {
		tok := tokens[i]
		go func() {
			defer wg.Done()
			if err := m.Close(ctx, tok); err == nil {
				closed[i].Store(true)
			}
		}()
		for range 2 {
			go func() {
				defer wg.Done()
				sess, err := m.Lookup(ctx, tok)
				if err != nil {
					assert.ErrorIs(t, err, session.ErrInvalidSession)
					return
				}
				assert.Equal(t, tok, sess.Token)
			}()
		}
	}
	wg.Wait()

	for i := range users {
		assert.True(t, closed[i].Load(), "each session is closed exactly once")
		if _, err := m.Lookup(ctx, tokens[i]); err == nil {
			staleReads.Add(1)
		}
	}
	assert.Zero(t, staleReads.Load())
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, users, audit.count("login"))
	assert.Equal(t, users, audit.count("logout"))
}

// TestConcurrentCloseSameToken verifies exactly one of many concurrent closes
// of one token succeeds.
func TestConcurrentCloseSameToken(t *testing.T) {
	t.Parallel()

	audit := newRecordingAudit()
	m := newManager(t, staticAuth{}, audit)
	ctx := context.Background()

	tok, err := m.Open(ctx, "alice", "secret")
	require.NoError(t, err)

	const closers = 50
	var ok atomic.Int32
	var wg sync.WaitGroup
	wg.Add(closers)
	for range closers {
		go func() {
			defer wg.Done()
			if m.Close(ctx, tok) == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, 1, audit.count("logout"))
}
