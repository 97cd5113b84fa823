package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/hyperon-hyeon/Graphear/config"
	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

const TaskTypeConvert = "document:convert"

const (
	PriorityCritical = 1
	PriorityDefault  = 2
	PriorityLow      = 3
)

// Queue accepts conversion tasks and reports their status.
type Queue interface {
	Enqueue(ctx context.Context, task *Task) error
	// GetTaskStatus returns an error wrapping models.ErrNotFound for unknown tasks.
	GetTaskStatus(ctx context.Context, taskID string) (*TaskStatus, error)
	SaveStatus(ctx context.Context, status *TaskStatus) error
	Close() error
}

// Task is the payload carried through asynq.
type Task struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Priority  int               `json:"priority"`
	Payload   map[string]string `json:"payload"`
	CreatedAt time.Time         `json:"createdAt"`
}

// TaskStatus is the last known state of a task.
type TaskStatus struct {
	TaskID     string                  `json:"taskId"`
	PdfID      string                  `json:"pdfId"`
	Status     models.ProcessingStatus `json:"status"`
	Progress   float64                 `json:"progress"`
	Error      string                  `json:"error,omitempty"`
	CreatedAt  time.Time               `json:"createdAt"`
	StartedAt  time.Time               `json:"startedAt,omitempty"`
	FinishedAt time.Time               `json:"finishedAt,omitempty"`
}

// AsynqQueue enqueues through asynq and keeps task status in redis.
type AsynqQueue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	redis     *redis.Client
	queues    []string
	statusTTL time.Duration
	logger    logger.Logger
}

func NewAsynqQueue(ctx context.Context, cfg config.QueueConfig, log logger.Logger) (*AsynqQueue, error) {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB}
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	queues := make([]string, 0, len(cfg.Queues))
	for name := range cfg.Queues {
		queues = append(queues, name)
	}
	if len(queues) == 0 {
		queues = []string{"default"}
	}

	ttl := cfg.StatusTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &AsynqQueue{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		redis:     redisClient,
		queues:    queues,
		statusTTL: ttl,
		logger:    log,
	}, nil
}

// Enqueue submits the task once; failed conversions are not retried.
func (q *AsynqQueue) Enqueue(ctx context.Context, task *Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	opts := []asynq.Option{
		asynq.MaxRetry(0),
		asynq.Timeout(30 * time.Minute),
		asynq.TaskID(task.ID),
		asynq.Queue(QueueName(task.Priority)),
	}

	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(task.Type, payload), opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	task.ID = info.ID

	q.logger.Info("Task enqueued",
		logger.String("taskId", info.ID),
		logger.String("type", task.Type),
		logger.String("queue", info.Queue),
	)
	return nil
}

// QueueName maps a priority onto one of the configured queue names.
func QueueName(priority int) string {
	switch priority {
	case PriorityCritical:
		return "critical"
	case PriorityLow:
		return "low"
	default:
		return "default"
	}
}

func statusKey(taskID string) string {
	return fmt.Sprintf("task_status:%s", taskID)
}

// GetTaskStatus reads the status the worker saved, falling back to asynq's own task state.
func (q *AsynqQueue) GetTaskStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	data, err := q.redis.Get(ctx, statusKey(taskID)).Bytes()
	switch {
	case err == nil:
		var status TaskStatus
		if err := json.Unmarshal(data, &status); err != nil {
			return nil, fmt.Errorf("failed to unmarshal status: %w", err)
		}
		return &status, nil
	case !errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("failed to get status from redis: %w", err)
	}

	for _, name := range q.queues {
		info, err := q.inspector.GetTaskInfo(name, taskID)
		if err == nil {
			return convertAsynqStatus(info), nil
		}
		if !errors.Is(err, asynq.ErrTaskNotFound) && !errors.Is(err, asynq.ErrQueueNotFound) {
			return nil, fmt.Errorf("failed to inspect queue %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("%w: task %s", models.ErrNotFound, taskID)
}

func (q *AsynqQueue) SaveStatus(ctx context.Context, status *TaskStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	if err := q.redis.Set(ctx, statusKey(status.TaskID), data, q.statusTTL).Err(); err != nil {
		return fmt.Errorf("failed to save status: %w", err)
	}
	return nil
}

func (q *AsynqQueue) Close() error {
	return errors.Join(q.client.Close(), q.inspector.Close(), q.redis.Close())
}

func convertAsynqStatus(info *asynq.TaskInfo) *TaskStatus {
	status := &TaskStatus{TaskID: info.ID}

	var task Task
	if err := json.Unmarshal(info.Payload, &task); err == nil {
		status.PdfID = task.Payload["pdfId"]
		status.CreatedAt = task.CreatedAt
	}

	switch info.State {
	case asynq.TaskStateActive:
		status.Status = models.StatusRunning
		status.Progress = 0.5
	case asynq.TaskStateCompleted:
		status.Status = models.StatusCompleted
		status.Progress = 1.0
		status.FinishedAt = info.CompletedAt
	case asynq.TaskStateArchived, asynq.TaskStateRetry:
		status.Status = models.StatusFailed
		status.Error = info.LastErr
		status.FinishedAt = info.LastFailedAt
	default:
		status.Status = models.StatusPending
	}
	return status
}
