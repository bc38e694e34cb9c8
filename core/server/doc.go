// Package server runs the HTTP API with graceful shutdown.
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	return srv.Run(ctx, router)
//
// Run returns nil once the context is cancelled and in-flight requests have
// completed, or the shutdown timeout has elapsed with ErrHTTPShutdown.
package server
