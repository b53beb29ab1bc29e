// Copyright (C) 2017 ScyllaDB

package soak

import (
	"context"
	"testing"
	"time"

	"github.com/arnaudpue/kudu/pkg/service/roundtrip"
	"github.com/arnaudpue/kudu/pkg/testutils"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
)

type fakeRunner struct {
	fn func(scenario roundtrip.Scenario) (*roundtrip.Report, error)
}

func (r fakeRunner) Run(_ context.Context, scenario roundtrip.Scenario) (*roundtrip.Report, error) {
	return r.fn(scenario)
}

func okReport(scenario roundtrip.Scenario) *roundtrip.Report {
	return &roundtrip.Report{
		Scenario: scenario.Name(),
		Checks: []roundtrip.Check{
			{Name: roundtrip.CheckSchema, OK: true},
			{Name: roundtrip.CheckRows, OK: true},
		},
	}
}

func mismatchReport(scenario roundtrip.Scenario) *roundtrip.Report {
	return &roundtrip.Report{
		Scenario: scenario.Name(),
		Checks: []roundtrip.Check{
			{Name: roundtrip.CheckSchema, OK: true},
			{Name: roundtrip.CheckRows, OK: false},
		},
	}
}

func TestServiceRunAggregates(t *testing.T) {
	c := Config{
		Cron:     "@every 1h",
		Parallel: 2,
		Scenarios: []ScenarioConfig{
			{Type: "simple"},
			{Type: "decimal"},
			{Type: "random"},
		},
	}
	runner := fakeRunner{fn: func(scenario roundtrip.Scenario) (*roundtrip.Report, error) {
		switch scenario.Name() {
		case "simple":
			return okReport(scenario), nil
		case "decimal":
			return mismatchReport(scenario), nil
		}
		return nil, errors.New("cluster unreachable")
	}}
	s, err := NewService(c, runner, log.NewDevelopment())
	if err != nil {
		t.Fatal("NewService() error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- s.Run(ctx)
	}()

	testutils.WaitCond(t, func() bool {
		st := s.Status()
		return st.Passed+st.Mismatched+st.Failed == 3
	}, 5*time.Millisecond, time.Second)

	if st := s.Status(); !st.Running {
		t.Error("Status().Running = false, expected true while Run is up")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatal("Run() error", err)
	}

	st := s.Status()
	if st.Running {
		t.Error("Status().Running = true after stop")
	}
	if st.Cycles != 1 {
		t.Errorf("Cycles = %d, expected 1", st.Cycles)
	}
	if st.Runs != 3 {
		t.Errorf("Runs = %d, expected 3", st.Runs)
	}
	if st.Passed != 1 || st.Mismatched != 1 || st.Failed != 1 {
		t.Errorf("Passed = %d, Mismatched = %d, Failed = %d, expected 1 each", st.Passed, st.Mismatched, st.Failed)
	}
	if st.LastCycle.IsZero() {
		t.Error("LastCycle not recorded")
	}
	if !st.NextCycle.After(st.LastCycle) {
		t.Errorf("NextCycle = %s not after LastCycle = %s", st.NextCycle, st.LastCycle)
	}
}

func TestServiceRunFollowsSchedule(t *testing.T) {
	c := Config{
		Cron:      "@every 10ms",
		Scenarios: []ScenarioConfig{{Type: "simple"}},
	}
	runner := fakeRunner{fn: func(scenario roundtrip.Scenario) (*roundtrip.Report, error) {
		return okReport(scenario), nil
	}}
	s, err := NewService(c, runner, log.NewDevelopment())
	if err != nil {
		t.Fatal("NewService() error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- s.Run(ctx)
	}()

	testutils.WaitCond(t, func() bool {
		return s.Status().Cycles >= 3
	}, 5*time.Millisecond, 5*time.Second)

	cancel()
	if err := <-done; err != nil {
		t.Fatal("Run() error", err)
	}

	st := s.Status()
	if st.Runs < 3 {
		t.Errorf("Runs = %d, expected one per cycle", st.Runs)
	}
	if st.Passed != st.Runs {
		t.Errorf("Passed = %d, Runs = %d, expected all passed", st.Passed, st.Runs)
	}
}

func TestServiceRunStops(t *testing.T) {
	runner := fakeRunner{fn: func(scenario roundtrip.Scenario) (*roundtrip.Report, error) {
		return okReport(scenario), nil
	}}
	s, err := NewService(DefaultConfig(), runner, log.NewDevelopment())
	if err != nil {
		t.Fatal("NewService() error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- s.Run(ctx)
	}()

	testutils.WaitCond(t, func() bool {
		return s.Status().Cycles == 1
	}, 5*time.Millisecond, time.Second)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal("Run() error", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not stop")
	}
}

func TestServiceStatusZero(t *testing.T) {
	runner := fakeRunner{fn: func(scenario roundtrip.Scenario) (*roundtrip.Report, error) {
		return okReport(scenario), nil
	}}
	s, err := NewService(DefaultConfig(), runner, log.NewDevelopment())
	if err != nil {
		t.Fatal("NewService() error", err)
	}

	st := s.Status()
	if st.Running || st.Cycles != 0 || st.Runs != 0 {
		t.Errorf("Status() = %+v, expected zero", st)
	}
}

func TestNewServiceValidation(t *testing.T) {
	runner := fakeRunner{fn: func(scenario roundtrip.Scenario) (*roundtrip.Report, error) {
		return okReport(scenario), nil
	}}

	if _, err := NewService(Config{}, runner, log.NewDevelopment()); err == nil {
		t.Error("NewService() with invalid config expected error")
	}
	if _, err := NewService(DefaultConfig(), nil, log.NewDevelopment()); err == nil {
		t.Error("NewService() with missing runner expected error")
	}
}
