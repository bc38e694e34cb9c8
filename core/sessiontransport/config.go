package sessiontransport

import (
	"net/http"
	"net/url"
	"time"
)

// Config describes where clients carry their session token.
type Config struct {
	CookieName     string        `env:"SESSION_COOKIE_NAME" envDefault:"openbis_session"`
	CookiePath     string        `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	CookieDomain   string        `env:"SESSION_COOKIE_DOMAIN"`
	CookieSecure   bool          `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
	CookieSameSite string        `env:"SESSION_COOKIE_SAMESITE" envDefault:"lax"`
	CookieMaxAge   time.Duration `env:"SESSION_COOKIE_MAX_AGE" envDefault:"0s"`
	// HeaderName is checked when no cookie is present. Authorization: Bearer
	// is always accepted as a last resort.
	HeaderName string `env:"SESSION_HEADER_NAME" envDefault:"X-Session-Token"`
}

// DefaultConfig returns the defaults of the env tags.
func DefaultConfig() Config {
	return Config{
		CookieName:     "openbis_session",
		CookiePath:     "/",
		CookieSecure:   true,
		CookieSameSite: "lax",
		HeaderName:     "X-Session-Token",
	}
}

func (c Config) sameSite() http.SameSite {
	switch c.CookieSameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// cookie builds the session cookie. An empty value expires it. The token is
// query-escaped because user ids may hold bytes net/http drops from cookie
// values; FromCookie reverses it.
func (c Config) cookie(value string) *http.Cookie {
	ck := &http.Cookie{
		Name:     c.CookieName,
		Value:    url.QueryEscape(value),
		Path:     c.CookiePath,
		Domain:   c.CookieDomain,
		Secure:   c.CookieSecure,
		HttpOnly: true,
		SameSite: c.sameSite(),
	}
	switch {
	case value == "":
		ck.MaxAge = -1
	case c.CookieMaxAge > 0:
		ck.MaxAge = int(c.CookieMaxAge.Seconds())
	}
	return ck
}
