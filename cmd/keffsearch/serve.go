package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/GoSim-25-26J-441/keff-search/internal/metrics"
	"github.com/GoSim-25-26J-441/keff-search/internal/simd"
	"github.com/GoSim-25-26J-441/keff-search/pkg/config"
	"github.com/GoSim-25-26J-441/keff-search/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	grpcAddr string
	httpAddr string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the search daemon (HTTP and gRPC)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cfg.Server == nil {
				cfg.Server = &config.Server{GRPCAddr: ":50051", HTTPAddr: ":8080"}
			}
			if cmd.Flags().Changed("grpc-addr") {
				cfg.Server.GRPCAddr = opts.grpcAddr
			}
			if cmd.Flags().Changed("http-addr") {
				cfg.Server.HTTPAddr = opts.httpAddr
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&opts.grpcAddr, "grpc-addr", ":50051", "gRPC listen address")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP listen address")
	return cmd
}

// serve runs both listeners until ctx is done or one of them fails, then
// shuts everything down.
func serve(ctx context.Context, cfg *config.Config) error {
	m := metrics.NewCollector()
	store := simd.NewRunStore()
	executor := simd.NewRunExecutor(store, cfg, m)
	executor.SetNotifier(simd.NewNotifier())

	grpcLis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen for gRPC on %s: %w", cfg.Server.GRPCAddr, err)
	}
	httpLis, err := net.Listen("tcp", cfg.Server.HTTPAddr)
	if err != nil {
		grpcLis.Close()
		return fmt.Errorf("listen for HTTP on %s: %w", cfg.Server.HTTPAddr, err)
	}

	// TODO: Configure gRPC server security (TLS, authentication) before
	// exposing the daemon outside a trusted network.
	grpcServer := grpc.NewServer()
	simd.RegisterSearchServiceServer(grpcServer, simd.NewSearchGRPCServer(store, executor))

	httpSrv := &http.Server{
		Handler:           simd.NewHTTPServer(store, executor, m).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC server listening", "addr", grpcLis.Addr().String())
		if err := grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", httpLis.Addr().String())
		if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcServer.GracefulStop()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", "error", err)
		}
		if err := executor.Shutdown(shutdownCtx); err != nil {
			logger.Error("executor shutdown error", "error", err)
		}
		return nil
	})
	return g.Wait()
}
