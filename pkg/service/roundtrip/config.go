// Copyright (C) 2017 ScyllaDB

package roundtrip

import (
	"github.com/arnaudpue/kudu/pkg/backupspec"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Config specifies the round trip service configuration.
type Config struct {
	// StagingRoot hosts the per run staging directories holding backup
	// artifacts between the backup and the restore steps.
	StagingRoot backupspec.Location `yaml:"staging_root"`
	// TableSuffix names restored tables, restored name is the source name
	// with the suffix appended.
	TableSuffix string `yaml:"table_suffix"`
	// KeepTables leaves source and restored tables in the cluster after a
	// run for manual inspection. Staging is released regardless.
	KeepTables bool `yaml:"keep_tables"`
}

func DefaultConfig() Config {
	return Config{
		StagingRoot: backupspec.Location{
			Provider: backupspec.FS,
			Path:     "/var/lib/kudu-backup-verify/staging",
		},
		TableSuffix: "-restore",
	}
}

// TestConfig returns a Config with staging under dir, usable in tests.
func TestConfig(dir string) Config {
	c := DefaultConfig()
	c.StagingRoot = backupspec.Location{Provider: backupspec.FS, Path: dir}
	return c
}

func (c Config) Validate() (err error) {
	if c.StagingRoot.Provider == "" || c.StagingRoot.Path == "" {
		err = multierr.Append(err, errors.New("missing staging_root"))
	}
	if c.TableSuffix == "" {
		err = multierr.Append(err, errors.New("missing table_suffix"))
	}

	return
}
