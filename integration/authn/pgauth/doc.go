// Package pgauth is a PostgreSQL authentication back-end for the session
// manager. Users live in the users table created by pg.Migrate; passwords
// are bcrypt hashes and email addresses are stored case-folded.
//
//	pool, err := pg.Connect(ctx, pgCfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
//		return err
//	}
//	auth := pgauth.New(pool)
//	mgr, err := session.NewManager(auth, auditLog, hosts)
//
// Queries run inside a transaction when one is attached to the context
// with pg.WithTx.
package pgauth
