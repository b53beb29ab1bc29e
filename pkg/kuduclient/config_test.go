// Copyright (C) 2017 ScyllaDB

package kuduclient

import (
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	table := []struct {
		Name   string
		Modify func(c *Config)
		Error  string
	}{
		{
			Name:   "default",
			Modify: func(c *Config) {},
		},
		{
			Name:   "missing masters",
			Modify: func(c *Config) { c.Masters = nil },
			Error:  "missing masters",
		},
		{
			Name:   "empty master address",
			Modify: func(c *Config) { c.Masters = []string{""} },
			Error:  "empty master address",
		},
		{
			Name:   "missing gateway",
			Modify: func(c *Config) { c.Gateway = "" },
			Error:  "missing gateway",
		},
		{
			Name:   "zero timeout",
			Modify: func(c *Config) { c.Timeout = 0 },
			Error:  "invalid timeout",
		},
		{
			Name:   "zero replicas",
			Modify: func(c *Config) { c.NumReplicas = 0 },
			Error:  "invalid num_replicas",
		},
		{
			Name:   "even replicas",
			Modify: func(c *Config) { c.NumReplicas = 2 },
			Error:  "invalid num_replicas",
		},
	}

	for i := range table {
		test := table[i]
		t.Run(test.Name, func(t *testing.T) {
			t.Parallel()

			config := TestConfig("master-0:7051")
			test.Modify(&config)

			err := config.Validate()
			if test.Error == "" {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.Error) {
				t.Errorf("Validate() error %v, expected %s", err, test.Error)
			}
		})
	}
}
