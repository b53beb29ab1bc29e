// Copyright (C) 2017 ScyllaDB

package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/arnaudpue/kudu/pkg"
	"github.com/arnaudpue/kudu/pkg/config"
	"github.com/arnaudpue/kudu/pkg/kuduclient"
	"github.com/arnaudpue/kudu/pkg/metrics"
	"github.com/arnaudpue/kudu/pkg/pipeline"
	"github.com/arnaudpue/kudu/pkg/service/roundtrip"
	"github.com/arnaudpue/kudu/pkg/service/soak"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

var runArgs = struct {
	scenarios  []string
	keepTables bool
}{}

var runCmd = &cobra.Command{
	Use:           "run",
	Short:         "Runs the configured verification scenarios once",
	Long:          "Runs the configured verification scenarios once, prints the reports as JSON and exits with a non zero status when any round trip breaks fidelity.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) (runError error) {
		// Read configuration
		c, err := parseConfig(cmd)
		if err != nil {
			return err
		}
		if runArgs.keepTables {
			c.RoundTrip.KeepTables = true
		}

		// Resolve scenarios
		scenarios := make([]roundtrip.Scenario, 0, len(c.Soak.Scenarios))
		for i, sc := range c.Soak.Scenarios {
			if len(runArgs.scenarios) > 0 && !slices.Contains(runArgs.scenarios, sc.Type) {
				continue
			}
			s, err := sc.Scenario()
			if err != nil {
				return errors.Wrapf(err, "scenario %d", i)
			}
			scenarios = append(scenarios, s)
		}
		if len(scenarios) == 0 {
			return errors.Errorf("no scenarios selected, configured types are %v", scenarioTypes(c.Soak.Scenarios))
		}

		// Get a base context
		ctx := log.WithNewTraceID(context.Background())

		// Create logger
		logger, err := config.MakeLogger(c.Logger)
		if err != nil {
			return errors.Wrapf(err, "logger")
		}
		defer func() {
			if runError != nil {
				logger.Error(ctx, "Bye", "error", runError)
			} else {
				logger.Info(ctx, "Bye")
			}
			logger.Sync() // nolint
		}()

		logger.Info(ctx, "Kudu backup verify", "version", pkg.Version(), "pid", os.Getpid())

		// Redirect standard logger to the logger
		zap.RedirectStdLog(log.BaseOf(logger))

		// Wait for cluster masters
		if err := kuduclient.WaitForCluster(ctx, c.Kudu, logger.Named("kudu")); err != nil {
			return errors.Wrapf(err, "no connection to the cluster")
		}

		provider := kuduclient.NewCachedProvider(kuduclient.GatewayProvider(c.Kudu, logger.Named("kudu")))
		defer provider.Close() // nolint: errcheck

		p, err := pipeline.NewExecPipeline(c.Pipeline, logger.Named("pipeline"))
		if err != nil {
			return errors.Wrapf(err, "pipeline")
		}
		svc, err := roundtrip.NewService(
			c.RoundTrip,
			c.Kudu,
			provider.Client,
			p,
			metrics.NewRoundTripMetrics(),
			logger.Named("roundtrip"),
		)
		if err != nil {
			return errors.Wrapf(err, "roundtrip service")
		}

		reports, err := svc.RunMany(ctx, scenarios)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return errors.Wrapf(err, "encode reports")
		}

		var failed int
		for _, r := range reports {
			if !r.OK() {
				failed++
			}
		}
		if failed != 0 {
			return errors.Errorf("fidelity broken in %d of %d round trips", failed, len(reports))
		}
		return nil
	},
}

func scenarioTypes(scenarios []soak.ScenarioConfig) []string {
	types := make([]string, 0, len(scenarios))
	for _, sc := range scenarios {
		types = append(types, sc.Type)
	}
	return types
}

func init() {
	cmd := runCmd
	f := cmd.Flags()
	f.StringSliceVar(&runArgs.scenarios, "scenario", nil, "a comma-separated `list` of scenario types to run, defaults to all configured scenarios")
	f.BoolVar(&runArgs.keepTables, "keep-tables", false, "leave source and restored tables in the cluster for inspection")
	rootCmd.AddCommand(cmd)
}
