// Copyright (C) 2017 ScyllaDB

package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/arnaudpue/kudu/pkg"
	"github.com/arnaudpue/kudu/pkg/config"
	"github.com/arnaudpue/kudu/pkg/kuduclient"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var soakCmd = &cobra.Command{
	Use:           "soak",
	Short:         "Runs round trip verification continuously on a schedule",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) (runError error) {
		// Read configuration
		c, err := parseConfig(cmd)
		if err != nil {
			return err
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
		logger.Info(ctx, "Using config", "config_files", rootArgs.configFiles)

		// Redirect standard logger to the logger
		zap.RedirectStdLog(log.BaseOf(logger))

		// Wait for cluster masters
		logger.Info(ctx, "Checking cluster connectivity...")
		if err := kuduclient.WaitForCluster(ctx, c.Kudu, logger.Named("kudu")); err != nil {
			return errors.Wrapf(
				err,
				"no connection to the cluster, make sure it is running and that the kudu section in config file(s) %s is set correctly",
				strings.Join(rootArgs.configFiles, ", "),
			)
		}

		// Start server
		server, err := newServer(c, logger)
		if err != nil {
			return errors.Wrapf(err, "server init")
		}
		server.startServices(ctx)
		server.startServers(ctx)
		defer func() {
			server.shutdownServers(ctx, 30*time.Second)
			server.close()
		}()

		// Wait signal
		signalCh := make(chan os.Signal, 1)
		signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-server.errCh:
			if err != nil {
				return err
			}
		case sig := <-signalCh:
			logger.Info(ctx, "Received signal", "signal", sig)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(soakCmd)
}
