// Copyright (C) 2017 ScyllaDB

package kuduclienttest

import (
	"context"
	"sync"

	"github.com/arnaudpue/kudu/pkg/kuduclient"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// flushEvery is the number of buffered operations that triggers a background
// write.
const flushEvery = 100

// session buffers operations and writes them in the background, like a
// client session in background flush mode. Operations may be applied out of
// order across batches, errors surface at the latest on Flush.
type session struct {
	cluster *Cluster
	table   string

	mu      sync.Mutex
	pending []kuduclient.Operation
	closed  bool
	g       errgroup.Group
}

var _ kuduclient.Session = (*session)(nil)

func newSession(cluster *Cluster, table string) *session {
	return &session{
		cluster: cluster,
		table:   table,
	}
}

// Apply implements kuduclient.Session.
func (s *session) Apply(ctx context.Context, op kuduclient.Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("session closed")
	}
	s.pending = append(s.pending, op)
	if len(s.pending) >= flushEvery {
		s.spawn()
	}
	return nil
}

// spawn steals the pending batch and writes it in the background. Callers
// must hold mu.
func (s *session) spawn() {
	batch := s.pending
	s.pending = nil
	s.g.Go(func() error {
		for _, op := range batch {
			if err := s.cluster.apply(s.table, op); err != nil {
				return err
			}
		}
		return nil
	})
}

// Flush implements kuduclient.Session.
func (s *session) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("session closed")
	}
	if len(s.pending) > 0 {
		s.spawn()
	}
	s.mu.Unlock()

	return s.g.Wait()
}

// Close implements kuduclient.Session.
func (s *session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if len(s.pending) > 0 {
		s.spawn()
	}
	s.closed = true
	s.mu.Unlock()

	return s.g.Wait()
}
