package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperon-hyeon/Graphear/internal/models"
)

func TestQueueName(t *testing.T) {
	assert.Equal(t, "critical", QueueName(PriorityCritical))
	assert.Equal(t, "default", QueueName(PriorityDefault))
	assert.Equal(t, "low", QueueName(PriorityLow))
	assert.Equal(t, "default", QueueName(0))
}

func TestStatusKey(t *testing.T) {
	assert.Equal(t, "task_status:abc", statusKey("abc"))
}

func TestConvertAsynqStatus(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	payload, err := json.Marshal(&Task{ID: "t1", Type: TaskTypeConvert, Payload: map[string]string{"pdfId": "p1"}, CreatedAt: created})
	require.NoError(t, err)

	tests := []struct {
		state    asynq.TaskState
		status   models.ProcessingStatus
		progress float64
	}{
		{asynq.TaskStatePending, models.StatusPending, 0},
		{asynq.TaskStateScheduled, models.StatusPending, 0},
		{asynq.TaskStateActive, models.StatusRunning, 0.5},
		{asynq.TaskStateCompleted, models.StatusCompleted, 1},
		{asynq.TaskStateArchived, models.StatusFailed, 0},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			s := convertAsynqStatus(&asynq.TaskInfo{ID: "t1", State: tt.state, Payload: payload, LastErr: "boom"})
			assert.Equal(t, "t1", s.TaskID)
			assert.Equal(t, "p1", s.PdfID)
			assert.Equal(t, created, s.CreatedAt)
			assert.Equal(t, tt.status, s.Status)
			assert.Equal(t, tt.progress, s.Progress)
			if tt.status == models.StatusFailed {
				assert.Equal(t, "boom", s.Error)
			}
		})
	}
}
