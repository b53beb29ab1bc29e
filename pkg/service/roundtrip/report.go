// Copyright (C) 2017 ScyllaDB

package roundtrip

import (
	"time"

	"github.com/arnaudpue/kudu/pkg/backupspec"
	"github.com/arnaudpue/kudu/pkg/verify"
)

// Terminal run statuses.
const (
	StatusDone     = "DONE"
	StatusMismatch = "MISMATCH"
	StatusError    = "ERROR"
)

// Fidelity check names.
const (
	CheckSchema       = "schema"
	CheckPartitioning = "partitioning"
	CheckReplicas     = "replicas"
	CheckRows         = "rows"
)

// Run step names, keys of Report.StepDurations.
const (
	stepLoad    = "load"
	stepBackup  = "backup"
	stepRestore = "restore"
	stepVerify  = "verify"
)

// Check is the outcome of a single fidelity check.
type Check struct {
	Name     string           `json:"name"`
	OK       bool             `json:"ok"`
	Mismatch *verify.Mismatch `json:"mismatch,omitempty"`
}

// Report describes a finished round trip of one table. Failed checks make a
// report a mismatch, they are never surfaced as errors.
type Report struct {
	Scenario      string                   `json:"scenario"`
	Table         string                   `json:"table"`
	RestoredTable string                   `json:"restored_table"`
	Seed          uint64                   `json:"seed,omitempty"`
	Staging       backupspec.Location      `json:"staging"`
	Rows          int64                    `json:"rows"`
	RestoredRows  int64                    `json:"restored_rows"`
	Checks        []Check                  `json:"checks,omitempty"`
	StartTime     time.Time                `json:"start_time"`
	EndTime       time.Time                `json:"end_time"`
	StepDurations map[string]time.Duration `json:"step_durations,omitempty"`
}

// OK reports whether every fidelity check passed.
func (r *Report) OK() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Status returns the terminal status of the report.
func (r *Report) Status() string {
	if r.OK() {
		return StatusDone
	}
	return StatusMismatch
}

// FailedChecks returns names of the failed checks.
func (r *Report) FailedChecks() []string {
	var names []string
	for _, c := range r.Checks {
		if !c.OK {
			names = append(names, c.Name)
		}
	}
	return names
}
