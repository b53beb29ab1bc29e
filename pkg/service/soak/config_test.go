// Copyright (C) 2017 ScyllaDB

package soak

import (
	"testing"

	"github.com/arnaudpue/kudu/pkg/service/roundtrip"
	"github.com/google/go-cmp/cmp"
)

func TestConfigValidate(t *testing.T) {
	table := []struct {
		Name   string
		Config Config
		Valid  bool
	}{
		{
			Name:   "default",
			Config: DefaultConfig(),
			Valid:  true,
		},
		{
			Name:   "zero",
			Config: Config{},
			Valid:  false,
		},
		{
			Name: "invalid cron",
			Config: Config{
				Cron:      "every now and then",
				Scenarios: []ScenarioConfig{{Type: "random"}},
			},
			Valid: false,
		},
		{
			Name: "negative parallel",
			Config: Config{
				Cron:      "@hourly",
				Parallel:  -1,
				Scenarios: []ScenarioConfig{{Type: "random"}},
			},
			Valid: false,
		},
		{
			Name: "no scenarios",
			Config: Config{
				Cron: "@hourly",
			},
			Valid: false,
		},
		{
			Name: "unrecognised scenario",
			Config: Config{
				Cron:      "@hourly",
				Scenarios: []ScenarioConfig{{Type: "chaos"}},
			},
			Valid: false,
		},
		{
			Name: "stray scenario property",
			Config: Config{
				Cron: "@hourly",
				Scenarios: []ScenarioConfig{{
					Type:       "simple",
					Properties: map[string]interface{}{"seed": 1},
				}},
			},
			Valid: false,
		},
	}

	for i := range table {
		test := table[i]
		t.Run(test.Name, func(t *testing.T) {
			err := test.Config.Validate()
			if test.Valid && err != nil {
				t.Fatal("Validate() error", err)
			}
			if !test.Valid && err == nil {
				t.Fatal("Validate() expected error")
			}
		})
	}
}

func TestScenarioConfigScenario(t *testing.T) {
	table := []struct {
		Name     string
		Config   ScenarioConfig
		Scenario roundtrip.Scenario
	}{
		{
			Name: "random with properties",
			Config: ScenarioConfig{
				Type: "random",
				Properties: map[string]interface{}{
					"seed":      42,
					"row_count": 7,
				},
			},
			Scenario: roundtrip.RandomScenario{Seed: 42, RowCount: 7},
		},
		{
			Name:     "random",
			Config:   ScenarioConfig{Type: "random"},
			Scenario: roundtrip.RandomScenario{},
		},
		{
			Name:     "simple",
			Config:   ScenarioConfig{Type: "simple"},
			Scenario: roundtrip.SimpleScenario{},
		},
		{
			Name:     "decimal",
			Config:   ScenarioConfig{Type: "decimal"},
			Scenario: roundtrip.DecimalScenario{},
		},
		{
			Name:     "specialchars",
			Config:   ScenarioConfig{Type: "specialchars"},
			Scenario: roundtrip.SpecialCharsScenario{},
		},
	}

	for i := range table {
		test := table[i]
		t.Run(test.Name, func(t *testing.T) {
			s, err := test.Config.Scenario()
			if err != nil {
				t.Fatal("Scenario() error", err)
			}
			if diff := cmp.Diff(test.Scenario, s); diff != "" {
				t.Fatalf("Scenario() = %+v, diff\n%s", s, diff)
			}
		})
	}
}

func TestScenarioConfigScenarioErrors(t *testing.T) {
	table := []ScenarioConfig{
		{},
		{Type: "chaos"},
		{Type: "random", Properties: map[string]interface{}{"rows": 1}},
		{Type: "decimal", Properties: map[string]interface{}{"seed": 1}},
	}

	for i := range table {
		if _, err := table[i].Scenario(); err == nil {
			t.Errorf("Scenario() %+v expected error", table[i])
		}
	}
}
