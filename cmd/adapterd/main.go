package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/material-adapter/internal/async"
	"github.com/joseph-ayodele/material-adapter/internal/codec"
	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/llm/openai"
	repo "github.com/joseph-ayodele/material-adapter/internal/repository"
	"github.com/joseph-ayodele/material-adapter/internal/server"
	"github.com/joseph-ayodele/material-adapter/internal/storage"
)

func main() {
	migrate := flag.Bool("migrate", false, "create tables on startup (postgres)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := repo.InitStores(ctx, cfg.Database, *migrate, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err, "inmem", cfg.Database.InMemory)
		os.Exit(1)
	}
	defer stores.Close(logger)

	if err := repo.HealthCheck(ctx, stores.DB, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	store, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to open object storage", "mode", cfg.Storage.Mode, "error", err)
		os.Exit(1)
	}
	if c, ok := store.(interface{ Close() error }); ok {
		defer func() { _ = c.Close() }()
	}

	stack := server.NewStack(server.Components{
		Stores:      stores,
		Store:       store,
		LLM:         openai.NewClient(openai.ConfigFromCommon(cfg.LLM), logger),
		Codec:       codec.New(logger),
		Concurrency: cfg.Batch.Concurrency,
		QueueOptions: []async.Option{
			async.WithWorkers(cfg.Batch.QueueWorkers),
			async.WithQueueSize(cfg.Batch.QueueSize),
			async.WithJobTimeout(cfg.Batch.JobTimeout),
		},
		URLTTL: cfg.Storage.SignedURLTTL,
		Logger: logger,
	})

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(server.LoggingInterceptor(logger)))
	server.RegisterAdaptationServer(grpcServer, stack.Service)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(server.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	logger.Info("material-adapter listening",
		"addr", addr,
		"storage", cfg.Storage.Mode,
		"inmem", cfg.Database.InMemory,
		"model", cfg.LLM.Model,
	)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Batch.JobTimeout)
	defer cancel()
	stack.Queue.Shutdown(shutdownCtx)
}
