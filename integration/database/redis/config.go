package redis

import "time"

// Config holds Redis connection and audit stream settings.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	// Stream receiving audit events when REDIS_ENABLED is set.
	AuditStream       string `env:"REDIS_AUDIT_STREAM" envDefault:"sessions:audit"`
	AuditStreamMaxLen int64  `env:"REDIS_AUDIT_STREAM_MAXLEN" envDefault:"100000"`
}
