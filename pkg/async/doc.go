// Package async runs error-returning functions in the background and lets
// callers wait for them later.
//
// Exec starts fn in its own goroutine and returns an ExecFuture:
//
//	f := async.Exec(ctx, report, notifier.Notify)
//	// ...
//	if err := f.AwaitContext(shutdownCtx); err != nil {
//		log.Println("report not delivered:", err)
//	}
//
// Await blocks until the function returns. AwaitWithTimeout and
// AwaitContext give up early with ErrTimeout or the context's error; the
// function keeps running. ExecAll and ExecAny coordinate several futures.
//
// A context that is already done when Exec is called skips the function and
// completes the future with the context's error.
package async
