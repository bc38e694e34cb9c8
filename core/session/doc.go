// Package session turns a successful credential check into a time-bounded
// session token and authenticates every later request against it.
//
// # Core Components
//
//   - Manager: opens, looks up and closes sessions
//   - Store: mutex-guarded in-memory map from token to Entry
//   - Session and Principal: the login record and the identity it carries
//   - AuthenticationService, AuditLogger, RemoteHostProvider: collaborators
//     supplied by the embedding program
//
// # Basic Usage
//
//	manager, err := session.NewManager(backend, auditLog, clientip.Provider{},
//		session.WithConfig(session.NewConfig(
//			session.WithExpirationPeriod(30*time.Minute),
//			session.WithMaxSessionsPerUser(5),
//		)),
//		session.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//
//	tok, err := manager.Open(ctx, "alice", "secret")
//	sess, err := manager.Lookup(ctx, tok)
//	err = manager.Close(ctx, tok)
//
// # Expiration
//
// There is no background reaper. A session whose idle time exceeds its
// expiration period is detected on the next Lookup, Close or Expire for its
// token, removed, audited as expired and reported as an invalid session.
// Count therefore includes sessions that have timed out but were not
// accessed since.
//
// While the no-login switch is on (by default: the configured NoLoginFile
// exists) sessions use NoLoginExpirationPeriod instead.
//
// # Concurrency
//
// Each operation runs its check-and-act sequence in a single critical
// section of the Store, so a session closed concurrently is never returned.
// Back-end, audit and listener calls happen outside the lock.
//
// # Error Handling
//
// Manager returns *Error values classified by Kind:
//
//	tok, err := manager.Open(ctx, user, password)
//	switch {
//	case errors.Is(err, session.ErrAuthenticationFailed):
//		// wrong credentials, ask again
//	case errors.Is(err, session.ErrEnvironment):
//		// back-end outage, retry later
//	case errors.Is(err, session.ErrInvalidInput):
//		// client bug
//	}
//
// Invalid-session errors carry a Reason (malformed, unknown, mismatch or
// expired) for logging. Callers should treat them alike.
//
// Audit calls are fire-and-forget. A panicking audit logger or listener is
// logged and does not affect the operation.
package session
