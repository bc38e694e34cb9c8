package middleware

import (
	"net/http"
)

// DefaultBodyLimit bounds request bodies when BodyLimit is given no size.
const DefaultBodyLimit = 64 * 1024

// BodyLimit rejects requests whose declared Content-Length exceeds maxSize
// with 413 and caps the body reader for the rest.
func BodyLimit(maxSize int64) func(http.Handler) http.Handler {
	if maxSize <= 0 {
		maxSize = DefaultBodyLimit
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxSize {
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			}
			next.ServeHTTP(w, r)
		})
	}
}
