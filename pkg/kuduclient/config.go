// Copyright (C) 2017 ScyllaDB

package kuduclient

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Config specifies the cluster client configuration.
type Config struct {
	// Masters specifies RPC addresses of all the master servers of the
	// cluster under test.
	Masters []string `yaml:"masters"`
	// Gateway specifies the URL of the client gateway that executes table
	// and session operations on behalf of the harness, see NewGatewayClient.
	Gateway string `yaml:"gateway"`
	// Timeout specifies time to complete a single cluster operation
	// possibly including opening a TCP connection.
	Timeout time.Duration `yaml:"timeout"`
	// Backoff specifies parameters of exponential backoff used when waiting
	// for the cluster to become reachable.
	Backoff BackoffConfig `yaml:"backoff"`
	// NumReplicas specifies the replication factor of tables created by the
	// harness. It must be a positive odd number.
	NumReplicas int `yaml:"num_replicas"`
}

// BackoffConfig specifies exponential backoff parameters.
type BackoffConfig struct {
	WaitMin    time.Duration `yaml:"wait_min"`
	WaitMax    time.Duration `yaml:"wait_max"`
	MaxRetries uint64        `yaml:"max_retries"`
	Multiplier float64       `yaml:"multiplier"`
	Jitter     float64       `yaml:"jitter"`
}

// DefaultConfig returns a Config initialized with default values.
func DefaultConfig() Config {
	return Config{
		Masters: []string{"localhost:7051"},
		Gateway: "http://localhost:7075",
		Timeout: 30 * time.Second,
		Backoff: BackoffConfig{
			WaitMin:    1 * time.Second,
			WaitMax:    30 * time.Second,
			MaxRetries: 9,
			Multiplier: 2,
			Jitter:     0.2,
		},
		NumReplicas: 1,
	}
}

// TestConfig is a convenience function equal to calling DefaultConfig and
// setting masters manually.
func TestConfig(masters ...string) Config {
	config := DefaultConfig()
	config.Masters = masters

	config.Timeout = 5 * time.Second
	config.Backoff.MaxRetries = 2
	config.Backoff.WaitMin = 200 * time.Millisecond

	return config
}

// Validate checks if all the fields are properly set.
func (c Config) Validate() error {
	var err error
	if len(c.Masters) == 0 {
		err = multierr.Append(err, errors.New("missing masters"))
	}
	for _, m := range c.Masters {
		if m == "" {
			err = multierr.Append(err, errors.New("empty master address"))
		}
	}
	if c.Gateway == "" {
		err = multierr.Append(err, errors.New("missing gateway"))
	}
	if c.Timeout <= 0 {
		err = multierr.Append(err, errors.New("invalid timeout, must be > 0"))
	}
	if c.NumReplicas <= 0 || c.NumReplicas%2 == 0 {
		err = multierr.Append(err, errors.New("invalid num_replicas, must be a positive odd number"))
	}

	return err
}
