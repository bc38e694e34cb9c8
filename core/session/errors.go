package session

import (
	"errors"
	"strings"
)

// Kind classifies a session error. Callers branch on the kind, never on the
// concrete cause.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindInput means the caller passed a blank required argument.
	KindInput
	// KindAuthenticationFailed means credentials were checked and rejected.
	KindAuthenticationFailed
	// KindInvalidSession means the token is malformed, unknown, mismatched
	// or expired. The caller must re-authenticate.
	KindInvalidSession
	// KindEnvironment means the authentication back-end is unreachable or
	// behaved inconsistently.
	KindEnvironment
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "invalid input"
	case KindAuthenticationFailed:
		return "authentication failed"
	case KindInvalidSession:
		return "invalid session"
	case KindEnvironment:
		return "environment failure"
	default:
		return "unknown"
	}
}

// Reasons attached to KindInvalidSession errors. They are informational only.
const (
	ReasonMalformed = "malformed token"
	ReasonUnknown   = "unknown token"
	ReasonMismatch  = "token mismatch"
	ReasonExpired   = "session no longer available"
)

// Error is the error type returned by Manager operations.
type Error struct {
	Kind   Kind
	Op     string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString("session ")
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same kind. A target with a reason only
// matches errors carrying that reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidInput         = &Error{Kind: KindInput}
	ErrAuthenticationFailed = &Error{Kind: KindAuthenticationFailed}
	ErrInvalidSession       = &Error{Kind: KindInvalidSession}
	ErrEnvironment          = &Error{Kind: KindEnvironment}

	// ErrSessionExpired matches only invalid-session errors caused by expiry.
	ErrSessionExpired = &Error{Kind: KindInvalidSession, Reason: ReasonExpired}
)

var (
	// ErrInvalidArgument is returned by an AuthenticationService when asked
	// for the principal of a user it does not know.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidConfig is returned when Config fails validation.
	ErrInvalidConfig = errors.New("invalid session configuration")
	// ErrNoAuthenticationService is returned by NewManager without a back-end.
	ErrNoAuthenticationService = errors.New("authentication service is required")
	// ErrNoAuditLogger is returned by NewManager without an audit logger.
	ErrNoAuditLogger = errors.New("audit logger is required")
	// ErrNoRemoteHostProvider is returned by NewManager without a remote host provider.
	ErrNoRemoteHostProvider = errors.New("remote host provider is required")

	errTokenCollision = errors.New("generated token already in use")
)

// KindOf returns the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func inputError(op, reason string) error {
	return &Error{Kind: KindInput, Op: op, Reason: reason}
}

func invalidSession(op, reason string) error {
	return &Error{Kind: KindInvalidSession, Op: op, Reason: reason}
}

func environmentError(op, reason string, err error) error {
	return &Error{Kind: KindEnvironment, Op: op, Reason: reason, Err: err}
}
