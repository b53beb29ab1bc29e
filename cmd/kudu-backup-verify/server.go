// Copyright (C) 2017 ScyllaDB

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/arnaudpue/kudu/pkg/config"
	"github.com/arnaudpue/kudu/pkg/kuduclient"
	"github.com/arnaudpue/kudu/pkg/metrics"
	"github.com/arnaudpue/kudu/pkg/pipeline"
	"github.com/arnaudpue/kudu/pkg/restapi"
	"github.com/arnaudpue/kudu/pkg/service/roundtrip"
	"github.com/arnaudpue/kudu/pkg/service/soak"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"golang.org/x/sync/errgroup"
)

type server struct {
	config *config.Config
	logger log.Logger

	provider     *kuduclient.CachedProvider
	roundtripSvc *roundtrip.Service
	soakSvc      *soak.Service

	soakCancel context.CancelFunc
	soakDone   chan struct{}

	httpServer       *http.Server
	prometheusServer *http.Server
	debugServer      *http.Server

	errCh chan error
}

func newServer(c *config.Config, logger log.Logger) (*server, error) {
	s := &server{
		config:   c,
		logger:   logger,
		soakDone: make(chan struct{}),

		errCh: make(chan error, 4),
	}

	if err := s.makeServices(); err != nil {
		return nil, err
	}
	s.makeServers()

	return s, nil
}

func (s *server) makeServices() error {
	s.provider = kuduclient.NewCachedProvider(kuduclient.GatewayProvider(s.config.Kudu, s.logger.Named("kudu")))

	p, err := pipeline.NewExecPipeline(s.config.Pipeline, s.logger.Named("pipeline"))
	if err != nil {
		return errors.Wrapf(err, "pipeline")
	}

	s.roundtripSvc, err = roundtrip.NewService(
		s.config.RoundTrip,
		s.config.Kudu,
		s.provider.Client,
		p,
		metrics.NewRoundTripMetrics().MustRegister(),
		s.logger.Named("roundtrip"),
	)
	if err != nil {
		return errors.Wrapf(err, "roundtrip service")
	}

	s.soakSvc, err = soak.NewService(s.config.Soak, s.roundtripSvc, s.logger.Named("soak"))
	if err != nil {
		return errors.Wrapf(err, "soak service")
	}

	return nil
}

func (s *server) makeServers() {
	services := restapi.Services{
		Soak: s.soakSvc,
	}
	h := restapi.New(services, s.logger.Named("http"))

	if s.config.HTTP != "" {
		s.httpServer = &http.Server{
			Addr:    s.config.HTTP,
			Handler: h,
		}
	}
	if s.config.Prometheus != "" {
		s.prometheusServer = &http.Server{
			Addr:    s.config.Prometheus,
			Handler: restapi.NewPrometheus(),
		}
	}
	if s.config.Debug != "" {
		s.debugServer = &http.Server{
			Addr:    s.config.Debug,
			Handler: debugHandler(),
		}
	}
}

func debugHandler() http.Handler {
	r := chi.NewRouter()
	r.Mount("/debug", middleware.Profiler())
	return r
}

// startServices starts the soak loop. The loop detaches from ctx, it is
// stopped by close so an in flight cycle can finish and clean up first.
func (s *server) startServices(ctx context.Context) {
	soakCtx, cancel := context.WithCancel(ctx)
	s.soakCancel = cancel

	go func() {
		s.errCh <- errors.Wrap(s.soakSvc.Run(soakCtx), "soak")
		close(s.soakDone)
	}()
}

func (s *server) startServers(ctx context.Context) {
	if s.httpServer != nil {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.httpServer.Addr)
		go func() {
			s.errCh <- s.httpServer.ListenAndServe()
		}()
	}

	if s.prometheusServer != nil {
		s.logger.Info(ctx, "Starting Prometheus server", "address", s.prometheusServer.Addr)
		go func() {
			s.errCh <- errors.Wrap(s.prometheusServer.ListenAndServe(), "prometheus server start")
		}()
	}

	if s.debugServer != nil {
		s.logger.Info(ctx, "Starting debug server", "address", s.debugServer.Addr)
		go func() {
			s.errCh <- errors.Wrap(s.debugServer.ListenAndServe(), "debug server start")
		}()
	}

	s.logger.Info(ctx, "Service started")
}

func (s *server) shutdownServers(ctx context.Context, timeout time.Duration) {
	s.logger.Info(ctx, "Closing servers", "timeout", timeout)

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var eg errgroup.Group
	eg.Go(s.shutdownHTTPServer(tctx, s.httpServer))
	eg.Go(s.shutdownHTTPServer(tctx, s.prometheusServer))
	eg.Go(s.shutdownHTTPServer(tctx, s.debugServer))
	eg.Wait() // nolint: errcheck
}

func (s *server) shutdownHTTPServer(ctx context.Context, server *http.Server) func() error {
	return func() error {
		if server == nil {
			return nil
		}
		if err := server.Shutdown(ctx); err != nil {
			s.logger.Info(ctx, "Closing server failed", "address", server.Addr, "error", err)
		} else {
			s.logger.Info(ctx, "Closing server done", "address", server.Addr)
		}

		// Force close
		return server.Close()
	}
}

func (s *server) close() {
	// The soak loop needs to stop before the provider closes, a cancelled
	// loop still finishes the in flight cycle and drops its tables.
	s.soakCancel()
	<-s.soakDone

	s.provider.Close() // nolint: errcheck
}
