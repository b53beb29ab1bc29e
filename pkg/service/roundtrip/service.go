// Copyright (C) 2017 ScyllaDB

// Package roundtrip drives whole table backup and restore cycles and decides
// whether the pipeline preserved schema, partitioning and data fidelity.
package roundtrip

import (
	"context"
	"strconv"
	"time"

	"github.com/arnaudpue/kudu/pkg/backupspec"
	"github.com/arnaudpue/kudu/pkg/kudu"
	"github.com/arnaudpue/kudu/pkg/kuduclient"
	"github.com/arnaudpue/kudu/pkg/metrics"
	"github.com/arnaudpue/kudu/pkg/pipeline"
	"github.com/arnaudpue/kudu/pkg/util/timeutc"
	"github.com/arnaudpue/kudu/pkg/verify"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/scylladb/go-set/strset"
	"go.uber.org/multierr"
)

// Service runs verification scenarios against a cluster. A single run creates
// tables, loads them with scenario data, drives a backup and restore cycle
// through the pipeline, and compares the restored tables with the originals.
type Service struct {
	config   Config
	kudu     kuduclient.Config
	provider kuduclient.ProviderFunc
	pipeline pipeline.Pipeline
	metrics  metrics.RoundTripMetrics
	logger   log.Logger
}

func NewService(config Config, kuduConfig kuduclient.Config, clientProvider kuduclient.ProviderFunc,
	p pipeline.Pipeline, m metrics.RoundTripMetrics, logger log.Logger,
) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if err := kuduConfig.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid kudu config")
	}
	if clientProvider == nil {
		return nil, errors.New("missing client provider")
	}
	if p == nil {
		return nil, errors.New("missing pipeline")
	}

	return &Service{
		config:   config,
		kudu:     kuduConfig,
		provider: clientProvider,
		pipeline: p,
		metrics:  m,
		logger:   logger,
	}, nil
}

// Run runs a single scenario, see RunMany.
func (s *Service) Run(ctx context.Context, scenario Scenario) (*Report, error) {
	reports, err := s.RunMany(ctx, []Scenario{scenario})
	if err != nil {
		return nil, err
	}
	return reports[0], nil
}

// RunMany runs the given scenarios in a single backup and restore cycle, all
// scenario tables share one staging directory and one pipeline invocation.
// On success it returns a report per scenario, a report with failed checks is
// not an error. Created tables are dropped unless configured otherwise, the
// staging directory is always removed.
func (s *Service) RunMany(ctx context.Context, scenarios []Scenario) (reports []*Report, err error) {
	if len(scenarios) == 0 {
		return nil, errors.New("no scenarios")
	}

	client, err := s.provider(ctx, s.kudu.Masters)
	if err != nil {
		return nil, errors.Wrap(err, "get client")
	}

	v, err := client.ClusterVersion(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cluster version")
	}
	if err := kuduclient.CheckVersion(v); err != nil {
		return nil, err
	}

	staging, err := backupspec.NewStaging(s.config.StagingRoot, backupspec.NewBackupTag())
	if err != nil {
		return nil, errors.Wrap(err, "create staging")
	}
	defer func() {
		err = multierr.Append(err, errors.Wrap(staging.Release(), "release staging"))
	}()

	statuses := make([]string, len(scenarios))
	for i, scenario := range scenarios {
		statuses[i] = StatusError
		s.metrics.ResetScenarioMetrics(scenario.Name())
		s.metrics.BeginRun(scenario.Name())
	}
	defer func() {
		for i, scenario := range scenarios {
			s.metrics.EndRun(scenario.Name(), statuses[i])
		}
	}()

	created := strset.New()
	defer func() {
		if s.config.KeepTables {
			return
		}
		err = multierr.Append(err, s.dropTables(ctx, client, created))
	}()

	start := timeutc.Now()
	s.logger.Info(ctx, "Starting round trip",
		"scenarios", len(scenarios),
		"staging", staging.Location(),
	)

	tables := strset.New()
	for _, scenario := range scenarios {
		w, werr := scenario.Workload()
		if werr != nil {
			return nil, errors.Wrapf(werr, "scenario %s workload", scenario.Name())
		}

		name := w.NamePrefix + "-" + uuid.NewString()[:8]
		r := &Report{
			Scenario:      scenario.Name(),
			Table:         name,
			RestoredTable: name + s.config.TableSuffix,
			Seed:          w.Seed,
			Staging:       staging.Location(),
			StartTime:     start,
			StepDurations: make(map[string]time.Duration),
		}

		if cerr := client.CreateTable(ctx, kuduclient.TableInfo{
			Name:        name,
			Schema:      w.Schema,
			Partition:   w.Partition,
			NumReplicas: s.kudu.NumReplicas,
		}); cerr != nil {
			return nil, errors.Wrapf(cerr, "create table %s", name)
		}
		created.Add(name)

		loadStart := timeutc.Now()
		if lerr := s.load(ctx, client, name, w.Rows); lerr != nil {
			return nil, errors.Wrapf(lerr, "load table %s", name)
		}
		r.StepDurations[stepLoad] = timeutc.Since(loadStart)

		n, nerr := client.ScanRowCount(ctx, name)
		if nerr != nil {
			return nil, errors.Wrapf(nerr, "count rows of table %s", name)
		}
		r.Rows = n

		s.metrics.SetRows(scenario.Name(), n)
		s.logger.Info(ctx, "Table ready",
			"table", name,
			"rows", n,
			"seed", w.Seed,
		)

		tables.Add(name)
		reports = append(reports, r)
	}
	for _, scenario := range scenarios {
		s.metrics.SetTables(scenario.Name(), tables.Size())
	}

	target := pipeline.Target{
		Tables:      tables,
		Location:    staging.Location(),
		Masters:     s.kudu.Masters,
		TableSuffix: s.config.TableSuffix,
	}

	backupStart := timeutc.Now()
	if berr := s.pipeline.Backup(ctx, target); berr != nil {
		return nil, errors.Wrap(berr, "backup")
	}
	backupDuration := timeutc.Since(backupStart)
	s.logger.Info(ctx, "Backup done",
		"tables", tables.Size(),
		"duration", backupDuration,
	)

	restoreStart := timeutc.Now()
	if rerr := s.pipeline.Restore(ctx, target); rerr != nil {
		return nil, errors.Wrap(rerr, "restore")
	}
	restoreDuration := timeutc.Since(restoreStart)
	s.logger.Info(ctx, "Restore done",
		"duration", restoreDuration,
	)

	for _, r := range reports {
		created.Add(r.RestoredTable)
	}

	for i, r := range reports {
		r.StepDurations[stepBackup] = backupDuration
		r.StepDurations[stepRestore] = restoreDuration

		verifyStart := timeutc.Now()
		if verr := s.verifyTables(ctx, client, r); verr != nil {
			return nil, verr
		}
		r.StepDurations[stepVerify] = timeutc.Since(verifyStart)
		r.EndTime = timeutc.Now()

		name := scenarios[i].Name()
		for _, c := range r.Checks {
			failed := 0
			if !c.OK {
				failed = 1
			}
			s.metrics.SetChecksFailed(name, c.Name, failed)
		}
		for step, d := range r.StepDurations {
			s.metrics.SetStepDuration(name, step, d)
		}
		statuses[i] = r.Status()

		if r.OK() {
			s.logger.Info(ctx, "Fidelity preserved",
				"table", r.Table,
				"rows", r.Rows,
			)
		} else {
			s.logger.Error(ctx, "Fidelity broken",
				"table", r.Table,
				"failed", r.FailedChecks(),
			)
		}
	}

	return reports, nil
}

// load writes the rows to the table, duplicated keys collapse into the last
// written row.
func (s *Service) load(ctx context.Context, client kuduclient.Client, table string, rows []kudu.Row) error {
	if len(rows) == 0 {
		return nil
	}

	session, err := client.NewSession(ctx, table)
	if err != nil {
		return errors.Wrap(err, "new session")
	}
	for _, r := range rows {
		if err := session.Apply(ctx, kuduclient.NewUpsert(r)); err != nil {
			session.Close()
			return errors.Wrap(err, "apply row")
		}
	}
	if err := session.Flush(ctx); err != nil {
		session.Close()
		return errors.Wrap(err, "flush")
	}
	return errors.Wrap(session.Close(), "close session")
}

// verifyTables compares the restored table with the original and records the
// outcome in the report checks. Row counts of both tables are read back from
// the cluster so that the comparison reflects what scans really see.
func (s *Service) verifyTables(ctx context.Context, client kuduclient.Client, r *Report) error {
	a, err := client.OpenTable(ctx, r.Table)
	if err != nil {
		return errors.Wrapf(err, "open table %s", r.Table)
	}
	b, err := client.OpenTable(ctx, r.RestoredTable)
	if err != nil {
		return errors.Wrapf(err, "open table %s", r.RestoredTable)
	}

	checks := []Check{
		{Name: CheckSchema, Mismatch: verify.CompareSchemas(a.Schema, b.Schema)},
		{Name: CheckPartitioning, Mismatch: verify.ComparePartitionSchemas(a.Partition, b.Partition)},
	}
	if a.NumReplicas != b.NumReplicas {
		checks = append(checks, Check{Name: CheckReplicas, Mismatch: &verify.Mismatch{
			Ordinal: -1,
			Field:   "replica count",
			A:       strconv.Itoa(a.NumReplicas),
			B:       strconv.Itoa(b.NumReplicas),
		}})
	} else {
		checks = append(checks, Check{Name: CheckReplicas})
	}

	an, err := client.ScanRowCount(ctx, r.Table)
	if err != nil {
		return errors.Wrapf(err, "count rows of table %s", r.Table)
	}
	bn, err := client.ScanRowCount(ctx, r.RestoredTable)
	if err != nil {
		return errors.Wrapf(err, "count rows of table %s", r.RestoredTable)
	}
	r.Rows = an
	r.RestoredRows = bn
	if an != bn {
		checks = append(checks, Check{Name: CheckRows, Mismatch: &verify.Mismatch{
			Ordinal: -1,
			Field:   "row count",
			A:       strconv.FormatInt(an, 10),
			B:       strconv.FormatInt(bn, 10),
		}})
	} else {
		checks = append(checks, Check{Name: CheckRows})
	}

	for i := range checks {
		checks[i].OK = checks[i].Mismatch == nil
	}
	r.Checks = checks

	return nil
}

func (s *Service) dropTables(ctx context.Context, client kuduclient.Client, tables *strset.Set) error {
	var err error
	tables.Each(func(name string) bool {
		if derr := client.DeleteTable(ctx, name); derr != nil && !errors.Is(derr, kuduclient.ErrNotFound) {
			err = multierr.Append(err, errors.Wrapf(derr, "drop table %s", name))
		}
		return true
	})
	return err
}
