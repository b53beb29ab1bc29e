// Copyright (C) 2017 ScyllaDB

// Package pipeline invokes the external backup and restore jobs that move
// table data between a cluster and a staging location.
package pipeline

import (
	"context"
	"sort"

	"github.com/arnaudpue/kudu/pkg/backupspec"
	"github.com/scylladb/go-set/strset"
)

// Target describes a single job invocation.
type Target struct {
	// Tables lists the tables the job covers.
	Tables *strset.Set
	// Location is the artifact root the job writes to or reads from.
	Location backupspec.Location
	// Masters are the cluster master addresses passed to the job.
	Masters []string
	// TableSuffix is appended by restore to every restored table name.
	TableSuffix string
}

// SortedTables returns the target tables in a stable order.
func (t Target) SortedTables() []string {
	if t.Tables == nil {
		return nil
	}
	tables := t.Tables.List()
	sort.Strings(tables)
	return tables
}

// Pipeline runs backup and restore jobs. Failures are returned verbatim,
// callers decide whether a run can continue.
type Pipeline interface {
	Backup(ctx context.Context, target Target) error
	Restore(ctx context.Context, target Target) error
}
