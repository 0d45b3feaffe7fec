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

	"go.uber.org/zap"

	"github.com/hana-yusof/lawcheck/internal/async"
	"github.com/hana-yusof/lawcheck/internal/common"
	"github.com/hana-yusof/lawcheck/internal/export"
	"github.com/hana-yusof/lawcheck/internal/extract"
	"github.com/hana-yusof/lawcheck/internal/ingest"
	"github.com/hana-yusof/lawcheck/internal/kb"
	"github.com/hana-yusof/lawcheck/internal/llm/openai"
	"github.com/hana-yusof/lawcheck/internal/pipeline"
	"github.com/hana-yusof/lawcheck/internal/repository"
	"github.com/hana-yusof/lawcheck/internal/server"
)

func main() {
	zlog, _ := zap.NewProduction()
	defer func() { _ = zlog.Sync() }()
	boot := zlog.Sugar()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		boot.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres
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
		boot.Fatalf("opening database: %v", err)
	}
	defer pool.Close()

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		boot.Fatalf("ensuring schema: %v", err)
	}
	if err := repository.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		boot.Fatalf("database health: %v", err)
	}
	boot.Infow("database ready")

	// Knowledge base
	store, err := kb.Open(ctx, cfg.KB.Path, logger)
	if err != nil {
		boot.Fatalf("opening knowledge base: %v", err)
	}
	defer func() { _ = store.Close() }()
	if cfg.KB.SeedFile != "" {
		if _, err := store.LoadSectionsFile(ctx, cfg.KB.SeedFile); err != nil {
			boot.Fatalf("seeding knowledge base: %v", err)
		}
	}
	if n, err := store.Count(ctx); err == nil && n == 0 {
		boot.Warnw("knowledge base is empty; clauses will be judged without context")
	}

	// Repositories
	contractsRepo := repository.NewContractRepository(pool, logger)
	jobsRepo := repository.NewCheckJobRepository(pool, logger)
	resultsRepo := repository.NewClauseResultRepository(pool, logger)

	// Pipeline
	extractor := extract.NewExtractor(extract.Config{
		Pdftotext: cfg.Extract.Pdftotext,
		MaxBytes:  cfg.Server.MaxUploadMB << 20,
	}, logger)
	evaluator := openai.NewClient(openai.Config{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		Timeout:         cfg.LLM.Timeout,
		LenientJudgment: cfg.LLM.Lenient,
	}, logger)

	proc := pipeline.NewProcessor(logger,
		pipeline.NewExtractStage(contractsRepo, jobsRepo, extractor, logger),
		pipeline.NewSegmentStage(jobsRepo, logger),
		pipeline.NewEvaluateStage(pipeline.EvaluateConfig{
			KnowledgeBase: cfg.KB.Name,
			TopK:          cfg.KB.TopK,
			Concurrency:   cfg.Worker.EvalConcurrency,
		}, resultsRepo, evaluator, store, logger),
		jobsRepo,
	)

	queue := async.NewCheckQueue(proc, logger,
		async.WithWorkers(cfg.Worker.Workers),
		async.WithQueueSize(cfg.Worker.QueueSize),
		async.WithProcessTimeout(cfg.Worker.ProcessTimeout),
	)

	// HTTP API
	ingestor := ingest.NewFSIngestor(contractsRepo, cfg.Server.UploadDir, logger)
	exporter := export.NewService(jobsRepo, resultsRepo, logger)
	health := func(ctx context.Context) error {
		return repository.HealthCheck(ctx, pool, 3*time.Second, logger)
	}
	handler := server.NewHandler(ingestor, queue, contractsRepo, jobsRepo, resultsRepo,
		exporter, health, cfg.Server.MaxUploadMB<<20, logger)
	srv := server.New(cfg.Server.Addr, server.NewRouter(handler), logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			boot.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()
	boot.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		boot.Errorf("http shutdown: %v", err)
	}
	queue.Shutdown(shutdownCtx)
	boot.Infow("stopped")
}
