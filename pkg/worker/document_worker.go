package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/hyperon-hyeon/Graphear/pkg/logger"
	"github.com/hyperon-hyeon/Graphear/pkg/queue"
)

// ConvertHandler runs one queued conversion.
type ConvertHandler interface {
	HandleConvertTask(ctx context.Context, task *queue.Task) error
}

type DocumentWorker struct {
	BaseWorker
	handler ConvertHandler
}

func NewDocumentWorker(cfg *Config, handler ConvertHandler, log logger.Logger) (*DocumentWorker, error) {
	if cfg.Concurrency <= 0 {
		return nil, fmt.Errorf("worker concurrency must be positive, got %d", cfg.Concurrency)
	}
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
		},
	)

	w := &DocumentWorker{
		BaseWorker: BaseWorker{
			server: server,
			mux:    asynq.NewServeMux(),
			logger: log,
		},
		handler: handler,
	}
	w.registerHandlers()
	return w, nil
}

func (w *DocumentWorker) registerHandlers() {
	w.mux.HandleFunc(queue.TaskTypeConvert, w.handleConvert)
}

func (w *DocumentWorker) handleConvert(ctx context.Context, t *asynq.Task) error {
	var task queue.Task
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		w.logger.Error("Failed to unmarshal task",
			logger.Error(err),
			logger.String("payload", logger.Truncate(string(t.Payload()), 200)),
		)
		return fmt.Errorf("failed to unmarshal task: %v: %w", err, asynq.SkipRetry)
	}

	w.logger.Info("Processing conversion task",
		logger.String("taskId", task.ID),
		logger.String("pdfId", task.Payload["pdfId"]),
	)

	if err := w.handler.HandleConvertTask(ctx, &task); err != nil {
		w.logger.Error("Conversion task failed",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	w.logger.Info("Conversion task completed", logger.String("taskId", task.ID))
	return nil
}

// Start runs the server until ctx is cancelled.
func (w *DocumentWorker) Start(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}
	<-ctx.Done()
	return w.Stop()
}
