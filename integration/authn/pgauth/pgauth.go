package pgauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"

	"github.com/openlims/authsession/core/session"
	"github.com/openlims/authsession/integration/database/pg"
)

var (
	ErrUserExists      = errors.New("pgauth: user already exists")
	ErrInvalidUser     = errors.New("pgauth: invalid user")
	ErrPasswordTooWeak = errors.New("pgauth: password too short")
)

// MinPasswordLength is enforced by CreateUser.
const MinPasswordLength = 8

// Querier runs statements. pgx.Tx satisfies it.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// DB is a Querier that can be pinged. *pgxpool.Pool satisfies it.
type DB interface {
	Querier
	Ping(ctx context.Context) error
}

// Service authenticates users stored in the users table. It implements
// session.AuthenticationService and session.EmailAuthenticator.
type Service struct {
	db   DB
	cost int
}

// Option configures a Service.
type Option func(*Service)

// WithCost sets the bcrypt cost used by CreateUser.
func WithCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// New returns a Service over db.
func New(db DB, opts ...Option) *Service {
	s := &Service{db: db, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check pings the database.
func (s *Service) Check(ctx context.Context) error {
	return pg.Healthcheck(s.db)(ctx)
}

// Authenticate verifies password against the stored bcrypt hash. Unknown
// and deactivated users are rejected without error.
func (s *Service) Authenticate(ctx context.Context, userID, password string) (bool, error) {
	var hash string
	err := s.q(ctx).QueryRow(ctx,
		`SELECT password_hash FROM users WHERE user_id = $1 AND active`,
		userID,
	).Scan(&hash)
	if pg.IsNotFoundError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pgauth: load user %q: %w", userID, err)
	}
	return verify(hash, password)
}

// Principal loads the identity of an active user. Unknown users yield
// session.ErrInvalidArgument.
func (s *Service) Principal(ctx context.Context, userID string) (session.Principal, error) {
	p, err := s.principal(ctx, `WHERE user_id = $1 AND active`, userID)
	if pg.IsNotFoundError(err) {
		return session.Principal{}, fmt.Errorf("%w: unknown user %q", session.ErrInvalidArgument, userID)
	}
	return p, err
}

// AuthenticateByEmail looks the user up by case-folded email address and
// verifies password.
func (s *Service) AuthenticateByEmail(ctx context.Context, email, password string) (session.Principal, bool, error) {
	var hash string
	p, err := s.principal(ctx, `WHERE email = $1 AND active`, NormalizeEmail(email), &hash)
	if pg.IsNotFoundError(err) {
		return session.Principal{}, false, nil
	}
	if err != nil {
		return session.Principal{}, false, err
	}
	ok, err := verify(hash, password)
	if !ok || err != nil {
		return session.Principal{}, false, err
	}
	return p, true, nil
}

// NewUser describes an account created by CreateUser.
type NewUser struct {
	UserID     string
	Email      string
	FirstName  string
	LastName   string
	Password   string
	Properties map[string]any
}

// CreateUser stores a new active user with a bcrypt hashed password.
func (s *Service) CreateUser(ctx context.Context, u NewUser) error {
	if strings.TrimSpace(u.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidUser)
	}
	if len(u.Password) < MinPasswordLength {
		return ErrPasswordTooWeak
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.cost)
	if err != nil {
		return fmt.Errorf("pgauth: hash password: %w", err)
	}
	props := u.Properties
	if props == nil {
		props = map[string]any{}
	}

	_, err = s.q(ctx).Exec(ctx,
		`INSERT INTO users (user_id, email, first_name, last_name, password_hash, properties)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.UserID, NormalizeEmail(u.Email), u.FirstName, u.LastName, string(hash), props,
	)
	if pg.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", ErrUserExists, u.UserID)
	}
	if err != nil {
		return fmt.Errorf("pgauth: insert user %q: %w", u.UserID, err)
	}
	return nil
}

// NormalizeEmail trims and case-folds an email address.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// principal runs a user query with the given filter. A non-nil hash also
// receives the password hash.
func (s *Service) principal(ctx context.Context, where, arg string, hash ...*string) (session.Principal, error) {
	var (
		userID, first, last, email, h string
		props                         map[string]any
	)
	err := s.q(ctx).QueryRow(ctx,
		`SELECT user_id, first_name, last_name, email, properties, password_hash FROM users `+where,
		arg,
	).Scan(&userID, &first, &last, &email, &props, &h)
	if err != nil {
		return session.Principal{}, err
	}
	if len(hash) > 0 && hash[0] != nil {
		*hash[0] = h
	}
	return session.NewPrincipal(userID, first, last, email, props), nil
}

// q prefers a transaction stored in ctx by pg.WithTx.
func (s *Service) q(ctx context.Context) Querier {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx
	}
	return s.db
}

func verify(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("pgauth: verify password: %w", err)
	}
}
