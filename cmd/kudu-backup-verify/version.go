// Copyright (C) 2017 ScyllaDB

package main

import (
	"fmt"

	"github.com/arnaudpue/kudu/pkg"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Shows version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", pkg.Version())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
