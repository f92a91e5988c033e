package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/graphql-bench/internal/adapter/graphql"
	"github.com/rl1809/graphql-bench/internal/adapter/handler"
	"github.com/rl1809/graphql-bench/internal/config"
	"github.com/rl1809/graphql-bench/internal/core/domain"
	"github.com/rl1809/graphql-bench/internal/core/latency"
	"github.com/rl1809/graphql-bench/internal/core/service"
	"github.com/rl1809/graphql-bench/internal/core/store"
	"github.com/rl1809/graphql-bench/internal/logging"
)

func newLogger(cfg config.LogConfig) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Level),
		Format: logging.ParseFormat(cfg.Format),
		Output: os.Stderr,
	})
}

type app struct {
	http   *handler.HTTPHandler
	grpc   *grpc.Server
	health *health.Server
}

// newApp wires the in-memory store, resolvers, executor and both transports
// around snap.
func newApp(cfg *config.Config, snap *domain.Snapshot, logger *slog.Logger) (*app, error) {
	schema, err := graphql.LoadSchema()
	if err != nil {
		return nil, err
	}

	model := latency.New(latency.WithScale(cfg.Latency.Scale), latency.WithSeed(cfg.Latency.Seed))
	resolver := service.NewResolver(store.New(snap), model, logger)
	executor := graphql.NewExecutor(schema, resolver,
		graphql.WithLogger(logger),
		graphql.WithQueryCache(cfg.QueryCache.TTL, cfg.QueryCache.Cleanup),
	)

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(handler.UnaryLogging(logger)))
	handler.RegisterGraphQLServer(grpcServer, handler.NewGRPCHandler(executor))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &app{
		http:   handler.NewHTTPHandler(executor, logger),
		grpc:   grpcServer,
		health: healthServer,
	}, nil
}

func runServe(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log)

	source, closeSource, err := openSource(ctx, cfg, cfg.Seed.Source, logger)
	if err != nil {
		return err
	}
	snap, err := source.Load(ctx)
	closeSource()
	if err != nil {
		return fmt.Errorf("loading %s snapshot: %w", cfg.Seed.Source, err)
	}
	counts := snap.Counts()
	logger.Info("dataset loaded",
		"source", cfg.Seed.Source,
		"users", counts[domain.KindUser],
		"categories", counts[domain.KindCategory],
		"products", counts[domain.KindProduct],
		"reviews", counts[domain.KindReview],
		"orders", counts[domain.KindOrder],
	)

	a, err := newApp(cfg, snap, logger)
	if err != nil {
		return err
	}

	if cfg.GRPC.Enabled {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.GRPC.Addr, err)
		}
		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPC.Addr)
			if err := a.grpc.Serve(lis); err != nil {
				logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: a.http.Routes(),
	}
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTP.Addr, "endpoint", "/graphql")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	logger.Info("HTTP server stopped")

	a.health.Shutdown()
	a.grpc.GracefulStop()
	logger.Info("gRPC server stopped")

	return nil
}
