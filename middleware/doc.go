// Package middleware provides net/http middleware shared by the service's
// routes: request IDs, request logging and request body limits.
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID())
//	r.Use(middleware.Logging(log))
//	r.Use(middleware.BodyLimit(middleware.DefaultBodyLimit))
package middleware
