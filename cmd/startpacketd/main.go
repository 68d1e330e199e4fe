package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/startpacket/internal/async"
	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/ingest"
	"github.com/joseph-ayodele/startpacket/internal/pipeline"
	svc "github.com/joseph-ayodele/startpacket/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := svc.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer app.DB.Close()

	if err := svc.PingDB(ctx, app.DB, logger, 5*time.Second); err != nil {
		os.Exit(1)
	}

	queue := async.NewProcessorQueue(app.Processor, logger,
		async.WithWorkers(cfg.Ingest.Workers),
		async.WithQueueSize(cfg.Ingest.QueueSize),
		async.WithProcessTimeout(cfg.Parser.Timeout),
		async.WithResultHandler(func(job async.Job, out *pipeline.Outcome, err error) {
			if err == nil && out != nil && out.Draft != nil {
				logger.Info("draft ready", "path", job.Path, "draft_id", out.Draft.ID, "trace_id", job.TraceID)
			}
		}),
	)
	ingestSvc := ingest.NewService(queue, nil, logger)

	if cfg.Ingest.InboxDir != "" {
		go func() {
			err := ingestSvc.Watch(ctx, ingest.WatchConfig{
				Roots:       []string{cfg.Ingest.InboxDir},
				SkipHidden:  true,
				InitialScan: true,
				Debounce:    cfg.Ingest.Debounce,
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("inbox watcher stopped", "error", err)
			}
		}()
	}

	// gRPC server
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	startPacket := svc.NewStartPacketService(app.Processor, app.Drafts, app.Territories, app.Exporter,
		svc.NewIngestionService(ingestSvc, logger), logger)
	grpcServer, healthServer := svc.NewGRPCServer(startPacket, logger)

	logger.Info("startpacket gRPC listening", "addr", cfg.Server.GRPCAddr)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()

	// HTTP territory API
	var httpServer *http.Server
	if cfg.Server.HTTPAddr != "" {
		httpServer = &http.Server{
			Addr:              cfg.Server.HTTPAddr,
			Handler:           svc.NewHTTPHandler(app.Territories, app.Processor, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		logger.Info("startpacket HTTP listening", "addr", cfg.Server.HTTPAddr)
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP serve error", "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown", "error", err)
		}
	}
	grpcServer.GracefulStop()
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
