// Package audit provides session.AuditLogger implementations.
//
// Logger writes one structured record per event through slog under the
// "auth" component, the equivalent of a dedicated authentication log.
// Fanout combines several sinks, for example the slog Logger, the Redis
// stream publisher and the Prometheus collector:
//
//	auditLog := audit.Fanout(
//		audit.NewLogger(log),
//		redis.NewAuditStream(rdb),
//	)
//	mgr, err := session.NewManager(auth, auditLog, clientip.Provider{})
package audit
