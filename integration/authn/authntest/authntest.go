// Package authntest provides in-memory authentication back-ends for tests
// and local development.
package authntest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/openlims/authsession/core/session"
)

// Null knows no users.
type Null struct{}

func (Null) Check(context.Context) error { return nil }

func (Null) Authenticate(context.Context, string, string) (bool, error) { return false, nil }

func (Null) Principal(_ context.Context, userID string) (session.Principal, error) {
	return session.Principal{}, fmt.Errorf("%w: unknown user %q", session.ErrInvalidArgument, userID)
}

// Dummy accepts every user with a non-empty password. Never use it outside
// development.
type Dummy struct{}

func (Dummy) Check(context.Context) error { return nil }

func (Dummy) Authenticate(_ context.Context, userID, password string) (bool, error) {
	return userID != "" && password != "", nil
}

func (Dummy) Principal(_ context.Context, userID string) (session.Principal, error) {
	return session.NewPrincipal(userID, "", userID, "", nil), nil
}

// Static authenticates a fixed set of users. It is safe for concurrent use
// and supports email login.
type Static struct {
	mu       sync.RWMutex
	users    map[string]staticUser
	checkErr error
	remote   bool
}

type staticUser struct {
	password  string
	principal session.Principal
}

// NewStatic returns an empty Static back-end.
func NewStatic() *Static {
	return &Static{users: make(map[string]staticUser)}
}

// Add registers a user. The principal's UserID is used as the login name.
func (s *Static) Add(p session.Principal, password string) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[p.UserID] = staticUser{password: password, principal: p}
	return s
}

// FailCheck makes Check return err.
func (s *Static) FailCheck(err error) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkErr = err
	return s
}

// SetRemote marks the back-end as remote.
func (s *Static) SetRemote(remote bool) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remote = remote
	return s
}

func (s *Static) Remote() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remote
}

func (s *Static) Check(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkErr
}

func (s *Static) Authenticate(_ context.Context, userID, password string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	return ok && u.password == password, nil
}

func (s *Static) Principal(_ context.Context, userID string) (session.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return session.Principal{}, fmt.Errorf("%w: unknown user %q", session.ErrInvalidArgument, userID)
	}
	return u.principal, nil
}

func (s *Static) AuthenticateByEmail(_ context.Context, email, password string) (session.Principal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.principal.Email != "" && strings.EqualFold(u.principal.Email, email) {
			if u.password != password {
				return session.Principal{}, false, nil
			}
			return u.principal, true, nil
		}
	}
	return session.Principal{}, false, nil
}
