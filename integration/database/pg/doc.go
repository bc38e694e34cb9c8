// Package pg connects to PostgreSQL through pgx, applies goose migrations and
// classifies common driver errors. It backs the password authentication
// service in integration/authn/pgauth.
//
// # Configuration
//
//	type Config struct {
//		ConnectionString  string        `env:"PG_CONN_URL,required"`
//		MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
//		MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
//		HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`
//		MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
//		MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`
//		RetryAttempts     int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval     time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`
//		MigrationsPath    string        `env:"PG_MIGRATIONS_PATH"`
//		MigrationsTable   string        `env:"PG_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
//	}
//
// # Usage
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//
//	r.Get("/health/ready", health.Readiness(log, pg.Healthcheck(pool)))
//
// Migrate bridges the pool to database/sql for goose. With an empty
// MigrationsPath it applies the embedded schema, which creates the users
// table read by pgauth.
//
// # Transactions
//
// WithTx stores a pgx.Tx in a context and TxFromContext retrieves it, so a
// repository joins the caller's transaction when one is present:
//
//	tx, err := pool.Begin(ctx)
//	defer tx.Rollback(ctx)
//	err = users.Create(pg.WithTx(ctx, tx), user, password)
//	err = tx.Commit(ctx)
//
// # Errors
//
// Connect, Migrate and Healthcheck wrap failures in the package sentinels.
// IsNotFoundError, IsDuplicateKeyError and IsForeignKeyViolationError
// classify query errors.
package pg
