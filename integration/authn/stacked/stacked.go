package stacked

import (
	"context"
	"errors"
	"fmt"

	"github.com/openlims/authsession/core/session"
)

// Service chains authentication back-ends. It implements
// session.AuthenticationService, session.EmailAuthenticator and
// session.RemoteService.
type Service struct {
	services []session.AuthenticationService
	remote   bool
}

// New returns a Service consulting services in order.
func New(services ...session.AuthenticationService) *Service {
	s := &Service{}
	for _, svc := range services {
		if svc == nil {
			continue
		}
		s.services = append(s.services, svc)
		if r, ok := svc.(session.RemoteService); ok && r.Remote() {
			s.remote = true
		}
	}
	return s
}

// Remote reports whether any member lives in another process.
func (s *Service) Remote() bool { return s.remote }

// Check requires every back-end to be available.
func (s *Service) Check(ctx context.Context) error {
	var errs []error
	for i, svc := range s.services {
		if err := svc.Check(ctx); err != nil {
			errs = append(errs, fmt.Errorf("back-end %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Authenticate returns true as soon as one back-end accepts the credentials.
func (s *Service) Authenticate(ctx context.Context, userID, password string) (bool, error) {
	var errs []error
	for _, svc := range s.services {
		ok, err := svc.Authenticate(ctx, userID, password)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, errors.Join(errs...)
}

// Principal returns the first principal found for userID.
func (s *Service) Principal(ctx context.Context, userID string) (session.Principal, error) {
	var errs []error
	for _, svc := range s.services {
		p, err := svc.Principal(ctx, userID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, session.ErrInvalidArgument) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return session.Principal{}, errors.Join(errs...)
	}
	return session.Principal{}, fmt.Errorf("%w: unknown user %q", session.ErrInvalidArgument, userID)
}

// AuthenticateByEmail asks every back-end supporting email login in order.
func (s *Service) AuthenticateByEmail(ctx context.Context, email, password string) (session.Principal, bool, error) {
	var errs []error
	for _, svc := range s.services {
		ea, ok := svc.(session.EmailAuthenticator)
		if !ok {
			continue
		}
		p, ok, err := ea.AuthenticateByEmail(ctx, email, password)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			return p, true, nil
		}
	}
	return session.Principal{}, false, errors.Join(errs...)
}
