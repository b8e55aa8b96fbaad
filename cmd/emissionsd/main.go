package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/carbonlens/emissions-tracker/internal/async"
	"github.com/carbonlens/emissions-tracker/internal/common"
	"github.com/carbonlens/emissions-tracker/internal/export"
	"github.com/carbonlens/emissions-tracker/internal/ingest"
	"github.com/carbonlens/emissions-tracker/internal/llm/openai"
	"github.com/carbonlens/emissions-tracker/internal/pipeline"
	"github.com/carbonlens/emissions-tracker/internal/repository"
	"github.com/carbonlens/emissions-tracker/internal/server"
	"github.com/carbonlens/emissions-tracker/internal/storage"
)

func main() {
	_ = godotenv.Load()

	// Logger
	zlog, _ := zap.NewProduction()
	defer func() { _ = zlog.Sync() }()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		zlog.Fatal("invalid configuration", zap.Error(err))
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB pool
	pool, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		zlog.Fatal("creating DB pool", zap.Error(err))
	}
	defer pool.Close()

	if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
		zlog.Fatal("DB health failed", zap.Error(err))
	}

	// Blob storage
	blobs, err := storage.NewFSStore(cfg.Storage.Root, logger)
	if err != nil {
		zlog.Fatal("creating blob store", zap.Error(err))
	}

	// Repositories + pipeline
	files := repository.NewUploadedFileRepository(pool, logger)
	materials := repository.NewMaterialRepository(pool, logger)
	records := repository.NewEmissionRecordRepository(pool, logger)
	sessions := repository.NewImportSessionRepository(pool, logger)

	extractor := openai.NewClient(openai.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	proc := pipeline.NewProcessor(logger, files, materials, records, sessions, blobs, extractor)

	// Queue: synchronous by default, worker pool when configured.
	var queue async.Queue
	if cfg.Queue.Workers > 0 {
		queue = async.NewWorkerQueue(proc, logger,
			async.WithWorkers(cfg.Queue.Workers),
			async.WithQueueSize(cfg.Queue.Size),
			async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
		)
	} else {
		queue = async.NewSyncQueue(proc, logger)
	}

	// Optional cloud-sync drop directory watcher
	if len(cfg.Watch.Dirs) > 0 {
		orgID, err := uuid.Parse(cfg.Watch.OrganizationID)
		if err != nil {
			zlog.Fatal("invalid WATCH_ORG_ID", zap.Error(err))
		}
		projectID, err := uuid.Parse(cfg.Watch.ProjectID)
		if err != nil {
			zlog.Fatal("invalid WATCH_PROJECT_ID", zap.Error(err))
		}
		paths, _, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       cfg.Watch.Dirs,
			InitialScan: false,
			Debounce:    cfg.Watch.Debounce,
		}, logger)
		if err != nil {
			zlog.Fatal("starting drop directory watcher", zap.Error(err))
		}
		syncer := &ingest.Syncer{
			Proc:           proc,
			Queue:          queue,
			OrganizationID: orgID,
			ProjectID:      projectID,
			Logger:         logger,
		}
		go syncer.Run(ctx, paths)
		zlog.Info("cloud-sync watcher started", zap.Strings("dirs", cfg.Watch.Dirs))
	}

	exp := export.NewService(records, logger)
	srv := server.New(zlog, proc, queue, exp, pool, cfg.Server.MaxUploadBytes)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("HTTP serving", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("http serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("http shutdown", zap.Error(err))
	}
	queue.Shutdown(shutdownCtx)
	zlog.Info("stopped.")
}
