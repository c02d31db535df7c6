package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpadapter "github.com/aretw0/archsynth/pkg/adapters/http"
	"github.com/aretw0/archsynth/pkg/adapters/mcp"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var errNoStore = errors.New("servers need a snapshot store (use --store file, memory or redis)")

// Serve runs the HTTP API until ctx is done or a signal arrives.
func Serve(ctx context.Context, opts ServeOptions) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	logger, err := createLogger(opts.Options)
	if err != nil {
		return err
	}
	streams := httpadapter.NewStreamManager(logger)

	mgr, pers, logger, err := newManager(opts.Options, metrics.Hooks().Merge(streams.Hooks()))
	if err != nil {
		return err
	}
	defer pers.Close()
	if pers.Store == nil {
		return errNoStore
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", opts.Port),
		Handler: httpadapter.NewHandler(mgr,
			httpadapter.WithStreams(streams),
			httpadapter.WithGatherer(reg),
			httpadapter.WithLogger(logger),
		),
	}

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		logger.Info("HTTP Server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("HTTP Server stopped gracefully", "signal", sigCtx.Signal())
		return nil
	})
	return g.Wait()
}

// ServeMCP runs the MCP server over stdio, or over SSE when opts.SSE is set.
func ServeMCP(ctx context.Context, opts MCPOptions) error {
	mgr, pers, logger, err := newManager(opts.Options, domain.LifecycleHooks{})
	if err != nil {
		return err
	}
	defer pers.Close()
	if pers.Store == nil {
		return errNoStore
	}

	srv := mcp.NewServer(mgr, mgr.Kinds(), logger)
	if !opts.SSE {
		logger.Info("Starting MCP Server (Stdio)")
		return srv.ServeStdio()
	}

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()
	logger.Info("Starting MCP Server (SSE)", "port", opts.Port)
	if err := srv.ServeSSE(sigCtx, opts.Port); err != nil {
		return err
	}
	logger.Info("MCP Server stopped gracefully")
	return nil
}
