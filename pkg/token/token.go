package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	// Separator delimits the user id from the timestamp part.
	Separator = '-'
	// TimestampSeparator delimits the timestamp from the random suffix.
	TimestampSeparator = 'x'
	// SuffixLength is the number of hex characters in the random suffix.
	SuffixLength = 32
)

var (
	// ErrMalformed is returned by Parse for tokens that fail IsWellFormed.
	ErrMalformed = errors.New("malformed session token")
	// ErrTokenGeneration is returned when the random source fails.
	ErrTokenGeneration = errors.New("failed to generate session token")
)

// Generator mints session tokens. It is safe for concurrent use as long as
// the random source is.
type Generator struct {
	random io.Reader
}

// Option configures a Generator.
type Option func(*Generator)

// WithRandom replaces the crypto/rand entropy source.
func WithRandom(r io.Reader) Option {
	return func(g *Generator) {
		if r != nil {
			g.random = r
		}
	}
}

// NewGenerator returns a Generator backed by crypto/rand unless overridden.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{random: rand.Reader}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// New returns a token for userID issued at now.
func (g *Generator) New(userID string, now time.Time) (string, error) {
	buf := make([]byte, SuffixLength/2)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}

	var b strings.Builder
	b.Grow(len(userID) + 1 + 13 + 1 + SuffixLength)
	b.WriteString(userID)
	b.WriteByte(Separator)
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	b.WriteByte(TimestampSeparator)
	b.WriteString(hex.EncodeToString(buf))
	return b.String(), nil
}

// Parts is the decoded form of a well-formed token.
type Parts struct {
	UserID   string
	IssuedAt time.Time
	Suffix   string
}

// IsWellFormed reports whether tok has the syntactic shape of a session token.
func IsWellFormed(tok string) bool {
	_, ok := parse(tok)
	return ok
}

// Parse splits a well-formed token into its parts.
func Parse(tok string) (Parts, error) {
	p, ok := parse(tok)
	if !ok {
		return Parts{}, ErrMalformed
	}
	return p, nil
}

// HasSegments reports whether tok has at least two non-empty
// Separator-delimited segments.
func HasSegments(tok string) bool {
	return len(splitNonEmpty(tok, Separator)) >= 2
}

// UserID returns everything before the last Separator-delimited segment,
// re-joined with Separator. The result is empty when tok has fewer than
// two segments.
func UserID(tok string) string {
	segs := splitNonEmpty(tok, Separator)
	if len(segs) < 2 {
		return ""
	}
	return strings.Join(segs[:len(segs)-1], string(Separator))
}

func parse(tok string) (Parts, bool) {
	if strings.TrimSpace(tok) == "" {
		return Parts{}, false
	}
	segs := splitNonEmpty(tok, Separator)
	if len(segs) < 2 {
		return Parts{}, false
	}
	sub := splitNonEmpty(segs[len(segs)-1], TimestampSeparator)
	if len(sub) < 2 {
		return Parts{}, false
	}
	millis, err := strconv.ParseInt(sub[0], 10, 64)
	if err != nil {
		return Parts{}, false
	}
	if len(sub[1]) != SuffixLength {
		return Parts{}, false
	}
	return Parts{
		UserID:   strings.Join(segs[:len(segs)-1], string(Separator)),
		IssuedAt: time.UnixMilli(millis),
		Suffix:   sub[1],
	}, true
}

// splitNonEmpty splits s on sep and drops empty segments.
func splitNonEmpty(s string, sep rune) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == sep })
}
