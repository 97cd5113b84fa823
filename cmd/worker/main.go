package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hyperon-hyeon/Graphear/config"
	"github.com/hyperon-hyeon/Graphear/internal/service/document"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
	"github.com/hyperon-hyeon/Graphear/pkg/worker"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(
		logger.WithLevel(cfg.Log.Level),
		logger.WithEncoding(cfg.Log.Encoding),
		logger.WithOutputPaths(cfg.Log.OutputPaths),
		logger.WithField("service", "graphear-worker"),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if !cfg.Queue.Enabled {
		log.Error("Queue is disabled; set QUEUE_ENABLED=true to run the worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docService, err := document.GetService(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to create document service", logger.Error(err))
		os.Exit(1)
	}
	defer docService.Close()

	documentWorker, err := worker.NewDocumentWorker(&worker.Config{
		RedisAddr:   cfg.Queue.RedisAddr,
		RedisDB:     cfg.Queue.RedisDB,
		Concurrency: cfg.Queue.Concurrency,
		Queues:      cfg.Queue.Queues,
	}, docService, log.Named("worker"))
	if err != nil {
		log.Error("Failed to create document worker", logger.Error(err))
		os.Exit(1)
	}

	log.Info("Worker starting", logger.Int("concurrency", cfg.Queue.Concurrency))
	if err := documentWorker.Start(ctx); err != nil {
		log.Error("Worker stopped with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("Worker stopped")
}
