// Package sessiontransport exposes the session manager over HTTP using chi.
//
// Routes registers the login resource:
//
//	POST   /session   open a session from {"user": ..., "password": ...}
//	GET    /session   describe the caller's session
//	DELETE /session   log out
//
// Clients present the token through the session cookie, the configured
// header or "Authorization: Bearer". Middleware rejects requests without a
// live session and makes it available through FromContext:
//
//	t := sessiontransport.New(mgr, sessiontransport.WithConfig(cfg), sessiontransport.WithLogger(log))
//	r := chi.NewRouter()
//	t.Routes(r)
//	r.With(t.Middleware).Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
//		sess, _ := sessiontransport.FromContext(r.Context())
//		fmt.Fprintln(w, sess.UserID)
//	})
//
// Errors are JSON ErrorResponse bodies. Invalid input maps to 400, failed
// authentication and invalid sessions to 401, back-end failures to 503.
package sessiontransport
