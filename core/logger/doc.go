// Package logger builds slog loggers and provides attribute helpers shared by
// the session service.
//
// # Construction
//
//	log := logger.New(
//		logger.WithProduction("sessiond"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	logger.SetAsDefault(log)
//
// Development loggers write debug-level text, staging and production loggers
// write info-level JSON. Every preset tags records with the app name and
// environment. WithOutput redirects output, which is how tests capture it:
//
//	var buf bytes.Buffer
//	log := logger.New(logger.WithJSONFormatter(), logger.WithOutput(&buf))
//
// Library packages never log by default; they accept a *slog.Logger option
// and fall back to Nop.
//
// # Attributes
//
// Helpers return an empty slog.Attr for empty input, so they can be passed
// unconditionally:
//
//	log.Warn("login failed",
//		logger.Component("auth"),
//		logger.UserID(userID),
//		logger.RemoteHost(host),
//		logger.Error(err), // dropped when err is nil
//	)
//
// SessionToken masks the random part of a token. Session tokens grant access
// and must never be logged in full.
package logger
