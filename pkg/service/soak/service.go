// Copyright (C) 2017 ScyllaDB

// Package soak keeps round trip verification running on a schedule. Every
// cycle replays the configured scenarios against the cluster and aggregates
// the outcomes, a long soak surfaces fidelity regressions that a single run
// can miss.
package soak

import (
	"context"
	"time"

	"github.com/arnaudpue/kudu/pkg/service/roundtrip"
	"github.com/arnaudpue/kudu/pkg/util/parallel"
	"github.com/arnaudpue/kudu/pkg/util/timeutc"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/scylladb/go-log"
	"go.uber.org/atomic"
)

// Runner runs a single verification scenario, implemented by the round trip
// service.
type Runner interface {
	Run(ctx context.Context, scenario roundtrip.Scenario) (*roundtrip.Report, error)
}

// Service runs verification cycles until stopped.
type Service struct {
	config    Config
	runner    Runner
	logger    log.Logger
	schedule  cron.Schedule
	scenarios []roundtrip.Scenario

	running    atomic.Bool
	cycles     atomic.Int64
	runs       atomic.Int64
	passed     atomic.Int64
	mismatched atomic.Int64
	failed     atomic.Int64
	lastCycle  atomic.Time
	nextCycle  atomic.Time
}

func NewService(config Config, runner Runner, logger log.Logger) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if runner == nil {
		return nil, errors.New("missing runner")
	}

	schedule, err := cron.ParseStandard(config.Cron)
	if err != nil {
		return nil, errors.Wrap(err, "parse cron")
	}
	scenarios := make([]roundtrip.Scenario, len(config.Scenarios))
	for i, sc := range config.Scenarios {
		s, err := sc.Scenario()
		if err != nil {
			return nil, errors.Wrapf(err, "scenario %d", i)
		}
		scenarios[i] = s
	}

	return &Service{
		config:    config,
		runner:    runner,
		logger:    logger,
		schedule:  schedule,
		scenarios: scenarios,
	}, nil
}

// Run executes verification cycles until ctx is cancelled, the first cycle
// starts immediately and later cycles fire on the cron schedule. Failed and
// mismatched runs are counted, they never stop the service. A cancel during
// a cycle lets the in flight runs finish and clean up first.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info(ctx, "Starting soak",
		"cron", s.config.Cron,
		"scenarios", len(s.scenarios),
		"parallel", s.config.Parallel,
	)
	s.running.Store(true)
	defer s.running.Store(false)

	for {
		// Runs detach from the loop context so a stop request does not
		// abort table cleanup, each cycle gets its own trace id.
		s.cycle(log.WithNewTraceID(context.Background()))

		next := s.schedule.Next(timeutc.Now())
		s.nextCycle.Store(next)
		t := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			t.Stop()
			s.logger.Info(ctx, "Stopping soak",
				"cycles", s.cycles.Load(),
				"runs", s.runs.Load(),
			)
			return nil
		case <-t.C:
		}
	}
}

func (s *Service) cycle(ctx context.Context) {
	start := timeutc.Now()
	s.cycles.Inc()
	s.lastCycle.Store(start)
	s.logger.Info(ctx, "Cycle started", "cycle", s.cycles.Load())

	if err := parallel.Run(len(s.scenarios), s.config.Parallel, func(i int) error {
		scenario := s.scenarios[i]
		s.runs.Inc()

		r, err := s.runner.Run(ctx, scenario)
		switch {
		case err != nil:
			s.failed.Inc()
			s.logger.Error(ctx, "Run failed",
				"scenario", scenario.Name(),
				"error", err,
			)
		case r.OK():
			s.passed.Inc()
		default:
			s.mismatched.Inc()
			s.logger.Error(ctx, "Fidelity mismatch",
				"scenario", scenario.Name(),
				"table", r.Table,
				"seed", r.Seed,
				"failed", r.FailedChecks(),
			)
		}
		return nil
	}, parallel.NopNotify); err != nil {
		s.logger.Error(ctx, "Cycle failed", "error", err)
	}

	s.logger.Info(ctx, "Cycle done",
		"cycle", s.cycles.Load(),
		"duration", timeutc.Since(start),
		"passed", s.passed.Load(),
		"mismatched", s.mismatched.Load(),
		"failed", s.failed.Load(),
	)
}

// Status returns a point in time view of soak progress.
func (s *Service) Status() Status {
	return Status{
		Running:    s.running.Load(),
		Cycles:     s.cycles.Load(),
		Runs:       s.runs.Load(),
		Passed:     s.passed.Load(),
		Mismatched: s.mismatched.Load(),
		Failed:     s.failed.Load(),
		LastCycle:  s.lastCycle.Load(),
		NextCycle:  s.nextCycle.Load(),
	}
}

// Status is a point in time view of soak progress.
type Status struct {
	Running    bool      `json:"running"`
	Cycles     int64     `json:"cycles"`
	Runs       int64     `json:"runs"`
	Passed     int64     `json:"passed"`
	Mismatched int64     `json:"mismatched"`
	Failed     int64     `json:"failed"`
	LastCycle  time.Time `json:"last_cycle"`
	NextCycle  time.Time `json:"next_cycle"`
}
