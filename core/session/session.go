package session

import (
	"maps"
	"time"
)

// Session is one active login. Values returned by Manager are copies;
// changing them does not affect the stored session.
type Session struct {
	Token            string
	UserID           string
	Principal        Principal
	RemoteHost       string
	StartedAt        time.Time
	ExpirationPeriod time.Duration
	// Attributes holds embedder-defined data attached at login.
	Attributes map[string]any
}

// Attribute returns the value stored under key.
func (s Session) Attribute(key string) (any, bool) {
	v, ok := s.Attributes[key]
	return v, ok
}

func (s Session) clone() Session {
	s.Principal = s.Principal.clone()
	s.Attributes = maps.Clone(s.Attributes)
	return s
}

// CloseReason tells listeners why a session ended.
type CloseReason uint8

const (
	CloseReasonLogout CloseReason = iota + 1
	CloseReasonExpiration
	CloseReasonSessionLimit
)

func (r CloseReason) String() string {
	switch r {
	case CloseReasonLogout:
		return "logout"
	case CloseReasonExpiration:
		return "expiration"
	case CloseReasonSessionLimit:
		return "session_limit"
	default:
		return "unknown"
	}
}
