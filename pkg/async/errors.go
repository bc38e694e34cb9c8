package async

import "errors"

var (
	// ErrTimeout is returned by AwaitWithTimeout when the function is still running.
	ErrTimeout = errors.New("async: timed out waiting for result")
	// ErrNoFutures is returned by ExecAny without futures.
	ErrNoFutures = errors.New("async: no futures to wait for")
)
