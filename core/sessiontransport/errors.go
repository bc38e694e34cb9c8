package sessiontransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openlims/authsession/core/session"
)

var (
	// ErrNoToken is returned when the request carries no session token.
	ErrNoToken = errors.New("sessiontransport: no token")

	// ErrInvalidToken is returned when the token is not well formed.
	ErrInvalidToken = errors.New("sessiontransport: invalid token")

	// ErrInvalidRequest is returned for undecodable login requests.
	ErrInvalidRequest = errors.New("sessiontransport: invalid request body")
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusOf maps an error to its HTTP status and response code.
func StatusOf(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, ErrNoToken):
		return http.StatusUnauthorized, "no_session"
	case errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized, "invalid_session"
	}

	switch session.KindOf(err) {
	case session.KindInput:
		return http.StatusBadRequest, "invalid_input"
	case session.KindAuthenticationFailed:
		return http.StatusUnauthorized, "authentication_failed"
	case session.KindInvalidSession:
		return http.StatusUnauthorized, "invalid_session"
	case session.KindEnvironment:
		return http.StatusServiceUnavailable, "service_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// message is safe to show to clients: back-end causes stay in the logs.
func message(err error, status int) string {
	var se *session.Error
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrNoToken), errors.Is(err, ErrInvalidToken):
		return err.Error()
	case errors.As(err, &se) && se.Kind == session.KindInvalidSession && se.Reason != "":
		return se.Reason
	case errors.As(err, &se) && se.Kind != session.KindEnvironment:
		return se.Kind.String()
	default:
		return http.StatusText(status)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil || status == http.StatusNoContent {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
