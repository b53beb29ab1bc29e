// Copyright (C) 2017 ScyllaDB

package main

import (
	"fmt"

	"github.com/arnaudpue/kudu/pkg/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var rootArgs = struct {
	configFiles []string
}{}

var rootCmd = &cobra.Command{
	Use:           "kudu-backup-verify",
	Short:         "Kudu backup and restore fidelity harness",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// parseConfig reads and validates the configuration files shared by the run
// and soak commands. Errors are printed so they show before logging is set
// up.
func parseConfig(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.ParseConfigFiles(rootArgs.configFiles)
	if err != nil {
		err = errors.Wrapf(err, "configuration %q", rootArgs.configFiles)
		fmt.Fprintf(cmd.OutOrStderr(), "%s\n", err)
		return nil, err
	}
	if err := c.Validate(); err != nil {
		err = errors.Wrapf(err, "configuration %q", rootArgs.configFiles)
		fmt.Fprintf(cmd.OutOrStderr(), "%s\n", err)
		return nil, err
	}
	return c, nil
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringSliceVarP(&rootArgs.configFiles, "config-file", "c", []string{"/etc/kudu-backup-verify/kudu-backup-verify.yaml"}, "configuration file `path`")
}
