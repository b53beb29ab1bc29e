// Copyright (C) 2017 ScyllaDB

package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

// Backoff specifies a policy for how long to wait between retries.
// It is safe for concurrent use.
type Backoff = backoff.BackOff

// Stop indicates that no more retries should be made.
const Stop time.Duration = backoff.Stop

// An Operation is executed by WithNotify.
// The operation will be retried using a backoff policy if it returns an error.
type Operation = backoff.Operation

// Notify is a notify-on-error function.
// It receives an operation error and backoff delay if the operation failed.
type Notify = backoff.Notify

// NewExponentialBackoff returns Backoff implementation that increases each
// wait period exponentially.
// Multiplier controls how fast each wait period grows, and randomizationFactor
// allows to inject some jitter between periods.
func NewExponentialBackoff(initialInterval, maxElapsedTime, maxInterval time.Duration, multiplier, randomizationFactor float64) Backoff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialInterval
	b.MaxElapsedTime = maxElapsedTime
	b.MaxInterval = maxInterval
	b.Multiplier = multiplier
	b.RandomizationFactor = randomizationFactor
	b.Reset()
	return b
}

// WithMaxRetries allows to set maximum number of retries.
func WithMaxRetries(b Backoff, maxRetries uint64) Backoff {
	return backoff.WithMaxRetries(b, maxRetries)
}

// BackoffFunc type is an adapter to allow the use of ordinary functions as
// Backoff.
type BackoffFunc func() time.Duration

// NextBackOff returns the duration to wait before retrying the operation.
func (b BackoffFunc) NextBackOff() time.Duration {
	return b()
}

// Reset to initial state.
func (b BackoffFunc) Reset() {}

// WithNotify calls notify function with the error and wait duration for each
// failed attempt before sleep.
func WithNotify(ctx context.Context, op Operation, b Backoff, n Notify) error {
	return backoff.RetryNotify(op, backoff.WithContext(b, ctx), n)
}

// Permanent wraps the given err in a permanent error signaling that the
// operation should not be retried.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// IsPermanent checks if an error was created with Permanent.
func IsPermanent(err error) bool {
	var perr *backoff.PermanentError
	return errors.As(err, &perr)
}
