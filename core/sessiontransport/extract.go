package sessiontransport

import (
	"net/http"
	"net/url"
	"strings"
)

// Extractor reads a session token from a request. It returns "" when the
// request carries none.
type Extractor func(r *http.Request) string

// FromCookie reads the named cookie and unescapes it. A value that does not
// unescape counts as no token.
func FromCookie(name string) Extractor {
	return func(r *http.Request) string {
		c, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		tok, err := url.QueryUnescape(c.Value)
		if err != nil {
			return ""
		}
		return tok
	}
}

// FromHeader reads the named header.
func FromHeader(name string) Extractor {
	return func(r *http.Request) string {
		return strings.TrimSpace(r.Header.Get(name))
	}
}

// FromBearer reads an "Authorization: Bearer <token>" header.
func FromBearer() Extractor {
	return func(r *http.Request) string {
		scheme, tok, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(tok)
	}
}

// FirstOf returns the first non-empty result of extractors.
func FirstOf(extractors ...Extractor) Extractor {
	return func(r *http.Request) string {
		for _, ex := range extractors {
			if tok := ex(r); tok != "" {
				return tok
			}
		}
		return ""
	}
}

// Extractor returns the cookie, header, bearer chain described by c.
func (c Config) Extractor() Extractor {
	var exs []Extractor
	if c.CookieName != "" {
		exs = append(exs, FromCookie(c.CookieName))
	}
	if c.HeaderName != "" {
		exs = append(exs, FromHeader(c.HeaderName))
	}
	return FirstOf(append(exs, FromBearer())...)
}
