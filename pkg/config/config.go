// Copyright (C) 2017 ScyllaDB

// Package config defines the harness configuration assembled from yaml
// files, every service contributes its own section.
package config

import (
	"github.com/arnaudpue/kudu/pkg/kuduclient"
	"github.com/arnaudpue/kudu/pkg/pipeline"
	"github.com/arnaudpue/kudu/pkg/service/roundtrip"
	"github.com/arnaudpue/kudu/pkg/service/soak"
	"github.com/arnaudpue/kudu/pkg/util/cfgutil"
	"github.com/pkg/errors"
)

// Config contains configuration structure for the verification harness.
type Config struct {
	HTTP       string              `yaml:"http"`
	Prometheus string              `yaml:"prometheus"`
	Debug      string              `yaml:"debug"`
	Logger     LogConfig           `yaml:"logger"`
	Kudu       kuduclient.Config   `yaml:"kudu"`
	Pipeline   pipeline.ExecConfig `yaml:"pipeline"`
	RoundTrip  roundtrip.Config    `yaml:"roundtrip"`
	Soak       soak.Config         `yaml:"soak"`
}

func DefaultConfig() *Config {
	return &Config{
		HTTP:       "127.0.0.1:5080",
		Prometheus: ":5090",
		Debug:      "127.0.0.1:5112",
		Logger:     DefaultLogConfig(),
		Kudu:       kuduclient.DefaultConfig(),
		Pipeline:   pipeline.DefaultExecConfig(),
		RoundTrip:  roundtrip.DefaultConfig(),
		Soak:       soak.DefaultConfig(),
	}
}

// ParseConfigFiles takes list of configuration file paths and returns parsed
// config struct with merged configuration from all provided files.
func ParseConfigFiles(files []string) (*Config, error) {
	c := DefaultConfig()
	return c, cfgutil.ParseYAML(c, files...)
}

// Validate checks if config contains correct values.
func (c *Config) Validate() error {
	if c.HTTP == "" {
		return errors.New("missing http")
	}
	if err := c.Kudu.Validate(); err != nil {
		return errors.Wrap(err, "kudu")
	}
	if err := c.Pipeline.Validate(); err != nil {
		return errors.Wrap(err, "pipeline")
	}
	if err := c.RoundTrip.Validate(); err != nil {
		return errors.Wrap(err, "roundtrip")
	}
	if err := c.Soak.Validate(); err != nil {
		return errors.Wrap(err, "soak")
	}

	return nil
}
