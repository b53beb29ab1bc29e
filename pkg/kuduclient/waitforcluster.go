// Copyright (C) 2017 ScyllaDB

package kuduclient

import (
	"context"
	"net"
	"time"

	"github.com/arnaudpue/kudu/pkg/util/netwait"
	"github.com/arnaudpue/kudu/pkg/util/retry"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"go.uber.org/multierr"
)

// WaitForCluster blocks until every configured master address accepts TCP
// connections. It is a readiness gate run before a verification round starts,
// it does not make any of the later cluster operations retryable.
func WaitForCluster(ctx context.Context, config Config, logger log.Logger) error {
	// Right after a cluster (re)start none of the masters may be listening
	// yet, wait for the first one with a flat backoff.
	w := netwait.Waiter{
		RetryBackoff: config.Backoff.WaitMin,
		MaxAttempts:  int(config.Backoff.MaxRetries) + 1,
		Logger:       logger.Named("wait"),
	}
	if _, err := w.WaitAnyAddr(ctx, config.Masters...); err != nil {
		return errors.Wrap(err, "wait for first master")
	}

	b := retry.WithMaxRetries(retry.NewExponentialBackoff(
		config.Backoff.WaitMin,
		0,
		config.Backoff.WaitMax,
		config.Backoff.Multiplier,
		config.Backoff.Jitter,
	), config.Backoff.MaxRetries)

	op := func() error {
		var err error
		for _, addr := range config.Masters {
			err = multierr.Append(err, dial(ctx, addr, config.Timeout))
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Info(ctx, "Waiting for master quorum", "sleep", wait, "error", err)
	}

	return errors.Wrap(retry.WithNotify(ctx, op, b, notify), "wait for master quorum")
}

func dial(ctx context.Context, addr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrap(err, addr)
	}
	return conn.Close()
}
