package session

import (
	"errors"
	"fmt"
	"time"
)

// Config holds session manager configuration. Field tags allow loading it
// with core/config.
type Config struct {
	// Idle time after which a session expires. 0 disables expiration.
	ExpirationPeriod time.Duration `env:"SESSION_EXPIRATION_PERIOD" envDefault:"30m"`
	// Replaces ExpirationPeriod while the no-login switch is on. 0 keeps the normal period.
	NoLoginExpirationPeriod time.Duration `env:"SESSION_NOLOGIN_EXPIRATION_PERIOD" envDefault:"0s"`
	// Its presence turns the no-login switch on.
	NoLoginFile string `env:"SESSION_NOLOGIN_FILE" envDefault:"./etc/nologin.html"`
	// Max concurrent sessions per user. 0 = unlimited.
	MaxSessionsPerUser int `env:"SESSION_MAX_PER_USER" envDefault:"0"`
	// Retry a failed login by email when the user name looks like one.
	TryEmailAsUserName bool `env:"SESSION_TRY_EMAIL_AS_USERNAME" envDefault:"false"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		ExpirationPeriod: 30 * time.Minute,
		NoLoginFile:      "./etc/nologin.html",
	}
}

// ConfigOption adjusts a Config.
type ConfigOption func(*Config)

// NewConfig returns DefaultConfig with opts applied.
func NewConfig(opts ...ConfigOption) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithExpirationPeriod sets the idle timeout.
func WithExpirationPeriod(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.ExpirationPeriod = d
	}
}

// WithNoLoginExpirationPeriod sets the idle timeout used in no-login mode.
func WithNoLoginExpirationPeriod(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.NoLoginExpirationPeriod = d
	}
}

// WithNoLoginFile sets the file whose existence enables no-login mode.
// An empty path disables the file check.
func WithNoLoginFile(path string) ConfigOption {
	return func(c *Config) {
		c.NoLoginFile = path
	}
}

// WithMaxSessionsPerUser limits concurrent sessions per user.
func WithMaxSessionsPerUser(n int) ConfigOption {
	return func(c *Config) {
		c.MaxSessionsPerUser = n
	}
}

// WithEmailAsUserName enables the email fallback on failed logins.
func WithEmailAsUserName(enabled bool) ConfigOption {
	return func(c *Config) {
		c.TryEmailAsUserName = enabled
	}
}

// Validate reports configuration errors wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	if c.ExpirationPeriod < 0 {
		errs = append(errs, fmt.Errorf("expiration period must not be negative, got %s", c.ExpirationPeriod))
	}
	if c.NoLoginExpirationPeriod < 0 {
		errs = append(errs, fmt.Errorf("no-login expiration period must not be negative, got %s", c.NoLoginExpirationPeriod))
	}
	if c.MaxSessionsPerUser < 0 {
		errs = append(errs, fmt.Errorf("max sessions per user must not be negative, got %d", c.MaxSessionsPerUser))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}
