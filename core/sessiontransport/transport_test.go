package sessiontransport_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlims/authsession/core/audit"
	"github.com/openlims/authsession/core/session"
	"github.com/openlims/authsession/core/sessiontransport"
	"github.com/openlims/authsession/integration/authn/authntest"
	"github.com/openlims/authsession/middleware"
	"github.com/openlims/authsession/pkg/clientip"
)

type fixture struct {
	router  http.Handler
	auth    *authntest.Static
	manager *session.Manager
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		auth: authntest.NewStatic().
			Add(session.NewPrincipal("alice", "Alice", "Liddell", "alice@example.com", nil), "wonderland"),
		now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	mgr, err := session.NewManager(f.auth, audit.NewLogger(nil), clientip.Provider{},
		session.WithClock(func() time.Time { return f.now }),
		session.WithNoLoginSwitch(func() bool { return false }),
	)
	require.NoError(t, err)
	f.manager = mgr

	cfg := sessiontransport.DefaultConfig()
	cfg.CookieSecure = false
	tr := sessiontransport.New(mgr, sessiontransport.WithConfig(cfg))

	r := chi.NewRouter()
	r.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: func() string { return "req-1" }}))
	r.Use(clientip.Middleware)
	tr.Routes(r)
	r.With(tr.Middleware).Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sessiontransport.FromContext(r.Context())
		_, _ = w.Write([]byte(sess.UserID))
	})
	f.router = r
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) login(t *testing.T, user, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(sessiontransport.LoginRequest{User: user, Password: password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.7:5555"
	return f.do(req)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) sessiontransport.ErrorResponse {
	t.Helper()
	var resp sessiontransport.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	w := f.login(t, "alice", "wonderland")
	require.Equal(t, http.StatusOK, w.Code)

	var resp sessiontransport.SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, strings.HasPrefix(resp.Token, "alice-"))
	assert.Equal(t, "alice", resp.UserID)
	assert.Equal(t, "Alice Liddell", resp.DisplayName)
	assert.Equal(t, "10.0.0.7", resp.RemoteHost)
	assert.EqualValues(t, 1800, resp.ExpirationSeconds)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "openbis_session", cookies[0].Name)
	assert.Equal(t, resp.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 1, f.manager.Count())
}

func TestLogin_Form(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	form := url.Values{"user": {"alice"}, "password": {"wonderland"}}
	req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	assert.Equal(t, http.StatusOK, f.do(req).Code)
}

func TestLogin_Errors(t *testing.T) {
	t.Parallel()

	t.Run("bad json", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		w := f.do(httptest.NewRequest(http.MethodPost, "/session", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "invalid_request", resp.Code)
		assert.Equal(t, "req-1", resp.RequestID)
	})

	t.Run("blank input", func(t *testing.T) {
		t.Parallel()

		w := newFixture(t).login(t, "alice", " ")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_input", decodeError(t, w).Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		w := newFixture(t).login(t, "alice", "looking-glass")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "authentication_failed", decodeError(t, w).Code)
	})

	t.Run("back-end down", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.auth.FailCheck(errors.New("connection refused"))
		w := f.login(t, "alice", "wonderland")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "service_unavailable", resp.Code)
		assert.NotContains(t, resp.Message, "connection refused")
	})
}

func TestCurrentAndLogout(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	w := f.login(t, "alice", "wonderland")
	require.Equal(t, http.StatusOK, w.Code)
	cookie := w.Result().Cookies()[0]

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/session", nil)
		req.AddCookie(cookie)
		w := f.do(req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp sessiontransport.SessionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "alice", resp.UserID)
		assert.Empty(t, resp.Token)
	})

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+cookie.Value)
		w := f.do(req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", w.Body.String())
	})

	t.Run("header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-Session-Token", cookie.Value)
		assert.Equal(t, http.StatusOK, f.do(req).Code)
	})

	t.Run("logout", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/session", nil)
		req.AddCookie(cookie)
		w := f.do(req)
		require.Equal(t, http.StatusNoContent, w.Code)
		cleared := w.Result().Cookies()
		require.Len(t, cleared, 1)
		assert.Equal(t, -1, cleared[0].MaxAge)
		assert.Zero(t, f.manager.Count())

		req = httptest.NewRequest(http.MethodGet, "/session", nil)
		req.AddCookie(cookie)
		w = f.do(req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid_session", decodeError(t, w).Code)
	})
}

func TestLogin_CookieKeepsUnusualUserIDs(t *testing.T) {
	t.Parallel()

	for _, user := range []string{"müller", "lab;admin", `o"brien`, "lab admin"} {
		t.Run(user, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.auth.Add(session.NewPrincipal(user, "", "", "", nil), "secret")

			w := f.login(t, user, "secret")
			require.Equal(t, http.StatusOK, w.Code)
			var opened sessiontransport.SessionResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&opened))
			require.True(t, strings.HasPrefix(opened.Token, user+"-"))

			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			unescaped, err := url.QueryUnescape(cookies[0].Value)
			require.NoError(t, err)
			assert.Equal(t, opened.Token, unescaped)

			req := httptest.NewRequest(http.MethodGet, "/session", nil)
			req.AddCookie(cookies[0])
			w = f.do(req)
			require.Equal(t, http.StatusOK, w.Code)

			var current sessiontransport.SessionResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&current))
			assert.Equal(t, user, current.UserID)
		})
	}
}

func TestFromCookie_UndecodableValue(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "openbis_session", Value: "alice-1%zz"})
	assert.Empty(t, sessiontransport.FromCookie("openbis_session")(req))
}

func TestMiddleware_Rejections(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "no_session", decodeError(t, w).Code)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Session-Token", "garbage")
	w = f.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_session", decodeError(t, w).Code)
}

func TestMiddleware_ExpiredSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	w := f.login(t, "alice", "wonderland")
	require.Equal(t, http.StatusOK, w.Code)
	cookie := w.Result().Cookies()[0]

	f.now = f.now.Add(31 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	w = f.do(req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "invalid_session", resp.Code)
	assert.Equal(t, session.ReasonExpired, resp.Message)
	assert.Zero(t, f.manager.Count())
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{session.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{session.ErrAuthenticationFailed, http.StatusUnauthorized, "authentication_failed"},
		{session.ErrInvalidSession, http.StatusUnauthorized, "invalid_session"},
		{session.ErrEnvironment, http.StatusServiceUnavailable, "service_unavailable"},
		{sessiontransport.ErrNoToken, http.StatusUnauthorized, "no_session"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		status, code := sessiontransport.StatusOf(tt.err)
		assert.Equal(t, tt.status, status, tt.code)
		assert.Equal(t, tt.code, code)
	}
}
