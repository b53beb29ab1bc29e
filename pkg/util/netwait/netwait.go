// Copyright (C) 2017 ScyllaDB

package netwait

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"go.uber.org/multierr"
)

// Waiter specifies waiting parameters.
type Waiter struct {
	RetryBackoff time.Duration
	MaxAttempts  int
	Logger       log.Logger
}

// WaitAnyAddr tries to open a TCP connection to any of the provided addresses,
// returns first address it could connect to.
func (w Waiter) WaitAnyAddr(ctx context.Context, addr ...string) (string, error) {
	t := time.NewTimer(w.RetryBackoff)
	defer t.Stop()

	var (
		a   string
		err error
	)
	for i := 0; i < w.MaxAttempts; i++ {
		t.Reset(w.RetryBackoff)

		a, err = tryConnectToAny(addr)

		if err != nil {
			w.Logger.Info(ctx, "Waiting for network connection",
				"sleep", w.RetryBackoff,
				"error", err,
			)
			select {
			case <-t.C:
				continue
			case <-ctx.Done():
				return "", err
			}
		}

		return a, nil
	}

	return "", errors.Wrapf(err, "giving up after %d attempts", w.MaxAttempts)
}

// tryConnectToAny tries to open a TCP connection to any of the provided
// addresses, attempts are sequential, it returns first successful address or
// error if failed to connect to any address.
func tryConnectToAny(addrs []string) (string, error) {
	var errs error

	for _, addr := range addrs {
		conn, err := net.Dial("tcp", addr)
		if conn != nil {
			conn.Close()
		}
		if err == nil {
			return addr, nil
		}
		errs = multierr.Append(errs, err)
	}

	return "", errs
}
