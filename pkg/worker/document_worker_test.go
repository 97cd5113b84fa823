package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperon-hyeon/Graphear/pkg/logger"
	"github.com/hyperon-hyeon/Graphear/pkg/queue"
)

type recordingHandler struct {
	tasks []*queue.Task
	err   error
}

func (h *recordingHandler) HandleConvertTask(ctx context.Context, task *queue.Task) error {
	h.tasks = append(h.tasks, task)
	return h.err
}

func newTestWorker(t *testing.T, h ConvertHandler) (*DocumentWorker, *logger.TestLogger) {
	t.Helper()
	log := logger.NewTestLogger()
	w, err := NewDocumentWorker(&Config{RedisAddr: "localhost:6379", Concurrency: 1, Queues: map[string]int{"default": 1}}, h, log)
	require.NoError(t, err)
	return w, log
}

func TestHandleConvert(t *testing.T) {
	h := &recordingHandler{}
	w, _ := newTestWorker(t, h)

	payload, err := json.Marshal(&queue.Task{ID: "t1", Type: queue.TaskTypeConvert, Payload: map[string]string{"pdfId": "p1"}})
	require.NoError(t, err)

	require.NoError(t, w.handleConvert(context.Background(), asynq.NewTask(queue.TaskTypeConvert, payload)))
	require.Len(t, h.tasks, 1)
	assert.Equal(t, "p1", h.tasks[0].Payload["pdfId"])
}

func TestHandleConvert_Failures(t *testing.T) {
	h := &recordingHandler{err: errors.New("extract failed: boom")}
	w, log := newTestWorker(t, h)

	err := w.handleConvert(context.Background(), asynq.NewTask(queue.TaskTypeConvert, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, h.tasks)

	payload, _ := json.Marshal(&queue.Task{ID: "t2", Payload: map[string]string{"pdfId": "p2"}})
	err = w.handleConvert(context.Background(), asynq.NewTask(queue.TaskTypeConvert, payload))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 2, log.Count("ERROR"))
}

func TestNewDocumentWorker_Concurrency(t *testing.T) {
	_, err := NewDocumentWorker(&Config{Concurrency: 0}, &recordingHandler{}, logger.NewNop())
	assert.Error(t, err)
}
