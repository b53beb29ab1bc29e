// Copyright (C) 2017 ScyllaDB

package soak

import (
	"github.com/arnaudpue/kudu/pkg/service/roundtrip"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
)

// ScenarioConfig selects a scenario by type and configures it. Properties
// are free form and must match the fields of the selected scenario.
type ScenarioConfig struct {
	Type       string                 `yaml:"type"`
	Properties map[string]interface{} `yaml:"properties"`
}

// Scenario materializes the configured scenario.
func (c ScenarioConfig) Scenario() (roundtrip.Scenario, error) {
	switch c.Type {
	case "random":
		var s roundtrip.RandomScenario
		if err := c.decode(&s); err != nil {
			return nil, err
		}
		return s, nil
	case "simple":
		var s roundtrip.SimpleScenario
		if err := c.decode(&s); err != nil {
			return nil, err
		}
		return s, nil
	case "decimal":
		var s roundtrip.DecimalScenario
		if err := c.decode(&s); err != nil {
			return nil, err
		}
		return s, nil
	case "specialchars":
		var s roundtrip.SpecialCharsScenario
		if err := c.decode(&s); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, errors.Errorf("unrecognised scenario type %q", c.Type)
}

func (c ScenarioConfig) decode(target interface{}) error {
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      target,
		TagName:     "yaml",
		ErrorUnused: true,
	})
	if err != nil {
		return errors.Wrap(err, "decoder")
	}
	return errors.Wrapf(d.Decode(c.Properties), "%s properties", c.Type)
}

// Config specifies the soak service configuration.
type Config struct {
	// Cron fires verification cycles, extended syntax like @hourly and
	// @every 10m is accepted.
	Cron string `yaml:"cron"`
	// Parallel caps scenarios run at the same time within a cycle, zero
	// means no limit.
	Parallel int `yaml:"parallel"`
	// Scenarios run every cycle.
	Scenarios []ScenarioConfig `yaml:"scenarios"`
}

func DefaultConfig() Config {
	return Config{
		Cron:     "@every 1h",
		Parallel: 1,
		Scenarios: []ScenarioConfig{
			{Type: "random"},
		},
	}
}

// Validate checks if all the fields are properly set.
func (c Config) Validate() error {
	var err error
	if c.Cron == "" {
		err = multierr.Append(err, errors.New("missing cron"))
	} else if _, perr := cron.ParseStandard(c.Cron); perr != nil {
		err = multierr.Append(err, errors.Wrap(perr, "invalid cron"))
	}
	if c.Parallel < 0 {
		err = multierr.Append(err, errors.New("invalid parallel, must be >= 0"))
	}
	if len(c.Scenarios) == 0 {
		err = multierr.Append(err, errors.New("missing scenarios"))
	}
	for i, sc := range c.Scenarios {
		if _, serr := sc.Scenario(); serr != nil {
			err = multierr.Append(err, errors.Wrapf(serr, "scenario %d", i))
		}
	}

	return err
}
