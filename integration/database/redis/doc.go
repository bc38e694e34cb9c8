// Package redis connects to Redis with go-redis and publishes session audit
// events to a Redis stream.
//
// # Configuration
//
//	type Config struct {
//		ConnectionURL     string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts     int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval     time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout    time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//		AuditStream       string        `env:"REDIS_AUDIT_STREAM" envDefault:"sessions:audit"`
//		AuditStreamMaxLen int64         `env:"REDIS_AUDIT_STREAM_MAXLEN" envDefault:"100000"`
//	}
//
// # Usage
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	stream := redis.NewAuditStream(client,
//		redis.WithStreamName(cfg.AuditStream),
//		redis.WithMaxLen(cfg.AuditStreamMaxLen),
//	)
//	auditLog := audit.Fanout(audit.NewLogger(log), stream)
//
// Each entry carries event_id, event, user_id, remote_host, occurred_at and,
// for session events, the masked session token. Publishing is best effort:
// errors are logged and never reach the session manager.
//
// Healthcheck returns a readiness probe for health.Readiness.
package redis
