package token_test

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlims/authsession/pkg/token"
)

var tokenPattern = regexp.MustCompile(`^alice-\d+x[0-9a-f]{32}$`)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerator_New(t *testing.T) {
	t.Parallel()

	t.Run("produces expected format", func(t *testing.T) {
		t.Parallel()

		now := time.UnixMilli(1700000000000)
		tok, err := token.NewGenerator().New("alice", now)
		require.NoError(t, err)

		assert.Regexp(t, tokenPattern, tok)
		assert.True(t, strings.HasPrefix(tok, "alice-1700000000000x"))
		assert.True(t, token.IsWellFormed(tok))
	})

	t.Run("uses injected random source", func(t *testing.T) {
		t.Parallel()

		src := bytes.NewReader(bytes.Repeat([]byte{0xab}, 16))
		tok, err := token.NewGenerator(token.WithRandom(src)).New("bob", time.UnixMilli(42))
		require.NoError(t, err)
		assert.Equal(t, "bob-42x"+strings.Repeat("ab", 16), tok)
	})

	t.Run("propagates random source failure", func(t *testing.T) {
		t.Parallel()

		tok, err := token.NewGenerator(token.WithRandom(failingReader{})).New("bob", time.Now())
		require.Error(t, err)
		assert.ErrorIs(t, err, token.ErrTokenGeneration)
		assert.Empty(t, tok)
	})

	t.Run("tokens are unique for same user and instant", func(t *testing.T) {
		t.Parallel()

		gen := token.NewGenerator()
		now := time.UnixMilli(1700000000000)
		const n = 100_000
		seen := make(map[string]struct{}, n)
		for range n {
			tok, err := gen.New("alice", now)
			require.NoError(t, err)
			_, dup := seen[tok]
			require.False(t, dup, "duplicate token %s", tok)
			seen[tok] = struct{}{}
		}
	})
}

func TestIsWellFormed(t *testing.T) {
	t.Parallel()

	suffix := strings.Repeat("0f", 16)

	tests := []struct {
		name string
		tok  string
		want bool
	}{
		{"valid", "alice-1700000000000x" + suffix, true},
		{"user id containing separator", "jane-doe-1700000000000x" + suffix, true},
		{"repeated separator ignored", "alice--12x" + suffix, true},
		{"empty", "", false},
		{"blank", "   ", false},
		{"no separator", "no_separator_at_all", false},
		{"missing user segment", "-12x" + suffix, false},
		{"no timestamp separator", "alice-12" + suffix, false},
		{"non numeric timestamp", "alice-abcx" + suffix, false},
		{"suffix too short", "alice-12x" + suffix[:31], false},
		{"suffix too long", "alice-12x" + suffix + "0", false},
		{"plain words", "no-separator-at-all", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, token.IsWellFormed(tt.tok))
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("returns parts", func(t *testing.T) {
		t.Parallel()

		suffix := strings.Repeat("a1", 16)
		parts, err := token.Parse("jane-doe-1700000000000x" + suffix)
		require.NoError(t, err)
		assert.Equal(t, "jane-doe", parts.UserID)
		assert.Equal(t, int64(1700000000000), parts.IssuedAt.UnixMilli())
		assert.Equal(t, suffix, parts.Suffix)
	})

	t.Run("rejects malformed", func(t *testing.T) {
		t.Parallel()

		_, err := token.Parse("garbage")
		assert.ErrorIs(t, err, token.ErrMalformed)
	})
}

func TestUserID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "alice", token.UserID("alice-1x2"))
	assert.Equal(t, "jane-doe", token.UserID("jane-doe-1x2"))
	assert.Equal(t, "", token.UserID("alice"))
	assert.True(t, token.HasSegments("alice-1"))
	assert.False(t, token.HasSegments("alice-"))
	assert.False(t, token.HasSegments(""))
}
