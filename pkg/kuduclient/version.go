// Copyright (C) 2017 ScyllaDB

package kuduclient

import (
	"github.com/arnaudpue/kudu/pkg/util/version"
	"github.com/pkg/errors"
)

// minClusterVersion is the oldest release line whose backup and restore jobs
// produce artifacts the harness understands.
const minClusterVersion = ">= 1.9.0"

// CheckVersion returns an error if a cluster reporting version v cannot run
// backup and restore jobs.
func CheckVersion(v string) error {
	ok, err := version.CheckConstraint(v, minClusterVersion)
	if err != nil {
		return errors.Wrapf(err, "parse cluster version %q", v)
	}
	if !ok {
		return errors.Errorf("cluster version %s does not support backup and restore, required %s", v, minClusterVersion)
	}
	return nil
}
