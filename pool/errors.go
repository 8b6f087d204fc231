package pool

import "errors"

// Status taxonomy (stable, spec.md §6/§7), expressed as Go sentinel errors
// rather than an enum + out-parameter so callers can use errors.Is.
var (
	// ErrInvalidArg marks a programming violation: a nil task passed to
	// Submit, or a worker count < 1 passed to Create.
	ErrInvalidArg = errors.New("pool: invalid argument")

	// ErrMemAlloc marks resource exhaustion during construction or Submit.
	// The pool remains valid and usable after this error.
	ErrMemAlloc = errors.New("pool: allocation failed")

	// ErrSysFail marks a system-primitive failure (goroutine could not be
	// started). Construction is rolled back entirely when this occurs.
	ErrSysFail = errors.New("pool: system primitive failure")

	// ErrRejected is returned by Submit once Shutdown has been called.
	// Expected and intended: producers use it to detect shutdown.
	ErrRejected = errors.New("pool: rejected, pool is shutting down")
)
