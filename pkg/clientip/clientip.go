package clientip

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// Headers consulted by GetIP, highest priority first.
var proxyHeaders = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP returns the client address of r. Proxy headers are trusted in the
// order documented on the package; the raw RemoteAddr is the last resort.
func GetIP(r *http.Request) string {
	for _, h := range proxyHeaders {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		if h == "X-Forwarded-For" {
			// Leftmost entry is the original client.
			v, _, _ = strings.Cut(v, ",")
		}
		if ip := normalize(v); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := normalize(host); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func normalize(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}

type contextKey struct{}

// WithIP stores ip in ctx.
func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

// FromContext returns the IP stored by WithIP or Middleware.
func FromContext(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(contextKey{}).(string)
	return ip, ok && ip != ""
}

// Middleware stores the client IP of every request in its context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithIP(r.Context(), GetIP(r))))
	})
}

// Provider resolves the remote host of a session from the request context.
// It satisfies session.RemoteHostProvider.
type Provider struct {
	// Fallback is returned when the context carries no IP, e.g. for logins
	// not made over HTTP. Defaults to "localhost".
	Fallback string
}

// RemoteHost returns the IP stored in ctx or the fallback.
func (p Provider) RemoteHost(ctx context.Context) string {
	if ip, ok := FromContext(ctx); ok {
		return ip
	}
	if p.Fallback != "" {
		return p.Fallback
	}
	return "localhost"
}
