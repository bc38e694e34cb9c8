package session

import (
	"maps"
	"strings"
)

// Principal describes an authenticated user. Back-ends build it once per
// successful login; the session owns it afterwards.
type Principal struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	// Extension data supplied by the back-end.
	Properties map[string]any
}

// NewPrincipal returns a Principal with a private copy of props.
func NewPrincipal(userID, firstName, lastName, email string, props map[string]any) Principal {
	return Principal{
		UserID:     userID,
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Properties: maps.Clone(props),
	}
}

// Property returns the extension value stored under key.
func (p Principal) Property(key string) (any, bool) {
	v, ok := p.Properties[key]
	return v, ok
}

// DisplayName returns "First Last", falling back to the user id.
func (p Principal) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.UserID
	}
	return name
}

func (p Principal) clone() Principal {
	p.Properties = maps.Clone(p.Properties)
	return p
}
