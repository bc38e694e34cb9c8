package sessiontransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openlims/authsession/core/logger"
	"github.com/openlims/authsession/core/session"
	"github.com/openlims/authsession/middleware"
)

// Sessions is the part of *session.Manager used over HTTP.
type Sessions interface {
	Open(ctx context.Context, userID, password string) (string, error)
	Lookup(ctx context.Context, tok string) (session.Session, error)
	Close(ctx context.Context, tok string) error
	IsWellFormed(tok string) bool
}

// Transport exposes a session manager over HTTP.
type Transport struct {
	sessions Sessions
	cfg      Config
	extract  Extractor
	log      *slog.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(t *Transport) {
		t.cfg = cfg
	}
}

// WithExtractor overrides the token lookup derived from Config.
func WithExtractor(ex Extractor) Option {
	return func(t *Transport) {
		t.extract = ex
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.log = l
		}
	}
}

// New returns a Transport for sessions.
func New(sessions Sessions, opts ...Option) *Transport {
	t := &Transport{
		sessions: sessions,
		cfg:      DefaultConfig(),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.extract == nil {
		t.extract = t.cfg.Extractor()
	}
	t.log = t.log.With(logger.Component("session_http"))
	return t
}

// Routes registers POST, GET and DELETE /session on r.
func (t *Transport) Routes(r chi.Router) {
	r.Post("/session", t.Login)
	r.With(t.Middleware).Get("/session", t.Current)
	r.With(t.Middleware).Delete("/session", t.Logout)
}

// Middleware rejects requests without a live session and stores the session
// in the request context for FromContext.
func (t *Transport) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := t.extract(r)
		if tok == "" {
			t.fail(w, r, ErrNoToken)
			return
		}
		if !t.sessions.IsWellFormed(tok) {
			t.fail(w, r, ErrInvalidToken)
			return
		}

		sess, err := t.sessions.Lookup(r.Context(), tok)
		if err != nil {
			t.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// LoginRequest is the body of POST /session.
type LoginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// SessionResponse describes a session to clients.
type SessionResponse struct {
	Token             string         `json:"token,omitempty"`
	UserID            string         `json:"user_id"`
	DisplayName       string         `json:"display_name,omitempty"`
	Email             string         `json:"email,omitempty"`
	RemoteHost        string         `json:"remote_host,omitempty"`
	StartedAt         time.Time      `json:"started_at"`
	ExpirationSeconds int64          `json:"expiration_seconds"`
	Attributes        map[string]any `json:"attributes,omitempty"`
}

// Login opens a session from a JSON or form encoded LoginRequest, sets the
// session cookie and returns the token.
func (t *Transport) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLogin(r)
	if err != nil {
		t.fail(w, r, err)
		return
	}

	tok, err := t.sessions.Open(r.Context(), req.User, req.Password)
	if err != nil {
		t.fail(w, r, err)
		return
	}
	sess, err := t.sessions.Lookup(r.Context(), tok)
	if err != nil {
		t.fail(w, r, err)
		return
	}

	if t.cfg.CookieName != "" {
		http.SetCookie(w, t.cfg.cookie(tok))
	}
	resp := toResponse(sess)
	resp.Token = tok
	writeJSON(w, http.StatusOK, resp)
}

// Current returns the session of the request.
func (t *Transport) Current(w http.ResponseWriter, r *http.Request) {
	sess, ok := FromContext(r.Context())
	if !ok {
		t.fail(w, r, ErrNoToken)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(sess))
}

// Logout closes the session of the request and clears the cookie.
func (t *Transport) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := FromContext(r.Context())
	if !ok {
		t.fail(w, r, ErrNoToken)
		return
	}
	if err := t.sessions.Close(r.Context(), sess.Token); err != nil {
		t.fail(w, r, err)
		return
	}
	if t.cfg.CookieName != "" {
		http.SetCookie(w, t.cfg.cookie(""))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (t *Transport) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusOf(err)
	requestID, _ := middleware.GetRequestID(r.Context())

	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	t.log.LogAttrs(r.Context(), level, "Session request rejected",
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.StatusCode(status),
		logger.RequestID(requestID),
		logger.Error(err),
	)

	if status == http.StatusUnauthorized && t.cfg.CookieName != "" && !errors.Is(err, session.ErrAuthenticationFailed) {
		if _, cerr := r.Cookie(t.cfg.CookieName); cerr == nil {
			http.SetCookie(w, t.cfg.cookie(""))
		}
	}
	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   message(err, status),
		RequestID: requestID,
	})
}

func decodeLogin(r *http.Request) (LoginRequest, error) {
	var req LoginRequest
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return req, errors.Join(ErrInvalidRequest, err)
		}
		req.User = r.PostForm.Get("user")
		req.Password = r.PostForm.Get("password")
		return req, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errors.Join(ErrInvalidRequest, err)
	}
	return req, nil
}

func toResponse(s session.Session) SessionResponse {
	return SessionResponse{
		UserID:            s.UserID,
		DisplayName:       s.Principal.DisplayName(),
		Email:             s.Principal.Email,
		RemoteHost:        s.RemoteHost,
		StartedAt:         s.StartedAt,
		ExpirationSeconds: int64(s.ExpirationPeriod / time.Second),
		Attributes:        s.Attributes,
	}
}
