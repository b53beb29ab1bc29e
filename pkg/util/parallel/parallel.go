// Copyright (C) 2017 ScyllaDB

package parallel

import (
	"go.uber.org/atomic"
	"go.uber.org/multierr"
)

// NoLimit means full parallelism mode.
const NoLimit = 0

// ErrAbort is a special kind of error that aborts all further execution.
// Function calls that are in progress will continue to execute but no new
// functions will be called.
type ErrAbort struct {
	error
}

// Abort wraps err so that it aborts all further execution.
func Abort(err error) ErrAbort {
	return ErrAbort{err}
}

func isErrAbort(err error) (bool, error) {
	a, ok := err.(ErrAbort) // nolint: errorlint
	if !ok {
		return false, nil
	}
	return true, a.error
}

// NotifyFunc is called on each function return with the function index and
// its error.
type NotifyFunc func(i int, err error)

// NopNotify does not perform any operation on function return.
func NopNotify(int, error) {}

// Run executes function f with arguments ranging from 0 to n-1 executing at
// most limit in parallel.
// If limit is 0 it runs f(0),f(1),...,f(n-1) in parallel.
func Run(n, limit int, f func(i int) error, notify NotifyFunc) error {
	if limit <= 0 || limit > n {
		limit = n
	}

	idx := atomic.NewInt32(0)
	out := make(chan error)
	abrt := atomic.NewBool(false)
	for j := 0; j < limit; j++ {
		go func() {
			for {
				i := int(idx.Inc()) - 1
				if i >= n {
					return
				}
				if abrt.Load() {
					out <- nil
					continue
				}
				err := f(i)
				if ok, inner := isErrAbort(err); ok {
					abrt.Store(true)
					err = inner
				}
				notify(i, err)
				out <- err
			}
		}()
	}

	var errs error
	for i := 0; i < n; i++ {
		errs = multierr.Append(errs, <-out)
	}
	return errs
}
