package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
	"github.com/hyperon-hyeon/Graphear/pkg/queue"
	"github.com/hyperon-hyeon/Graphear/pkg/storage/local"
)

type fakeExtractor struct {
	result *models.ConversionResult
	err    error
	calls  int
	lastID string
}

func (f *fakeExtractor) Name() string { return "fake" }

func (f *fakeExtractor) Extract(ctx context.Context, doc *models.Document, data []byte) (*models.ConversionResult, error) {
	f.calls++
	f.lastID = doc.ID
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSynthesizer struct {
	texts []string
	err   error
}

func (f *fakeSynthesizer) Name() string { return "fake-tts" }

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3:" + text), nil
}

type memoryQueue struct {
	mu       sync.Mutex
	tasks    []*queue.Task
	statuses map[string]*queue.TaskStatus
}

func newMemoryQueue() *memoryQueue {
	return &memoryQueue{statuses: make(map[string]*queue.TaskStatus)}
}

func (q *memoryQueue) Enqueue(ctx context.Context, task *queue.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *memoryQueue) GetTaskStatus(ctx context.Context, taskID string) (*queue.TaskStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	s, ok := q.statuses[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: task %s", models.ErrNotFound, taskID)
	}
	cp := *s
	return &cp, nil
}

func (q *memoryQueue) SaveStatus(ctx context.Context, status *queue.TaskStatus) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	cp := *status
	q.statuses[status.TaskID] = &cp
	return nil
}

func (q *memoryQueue) Close() error { return nil }

func sampleResult() *models.ConversionResult {
	return &models.ConversionResult{
		Meta: models.ConversionMeta{Engine: "fake", PageCount: 2},
		Questions: []models.Question{
			{ID: "1", GlobalID: "1-1", Page: 1, Body: "다음 중 옳은 것은?", Choices: []string{"① 1", "② 2"}},
			{ID: "2", GlobalID: "2-2", Page: 2, Body: "서술하시오.", Choices: []string{}},
		},
	}
}

type fixture struct {
	svc   *DocumentService
	ext   *fakeExtractor
	synth *fakeSynthesizer
	queue *memoryQueue
	log   *logger.TestLogger
}

func newFixture(t *testing.T, withQueue bool) *fixture {
	t.Helper()
	store, err := local.NewLocalStorage(t.TempDir(), logger.NewNop())
	require.NoError(t, err)

	f := &fixture{
		ext:   &fakeExtractor{result: sampleResult()},
		synth: &fakeSynthesizer{},
		log:   logger.NewTestLogger(),
	}
	var q queue.Queue
	if withQueue {
		f.queue = newMemoryQueue()
		q = f.queue
	}
	f.svc = NewService(f.ext, f.synth, q, store, f.log, &ServiceConfig{
		MaxFileSize:   1024,
		PublicBaseURL: "http://localhost:8080",
	})
	return f
}

func (f *fixture) upload(t *testing.T) string {
	t.Helper()
	doc, err := f.svc.Upload(context.Background(), strings.NewReader("%PDF-1.4 not really"), "exam.pdf")
	require.NoError(t, err)
	return doc.ID
}

func TestUpload(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	doc, err := f.svc.Upload(ctx, strings.NewReader("%PDF-1.4 not really"), "Exam.PDF")
	require.NoError(t, err)
	assert.True(t, ValidID(doc.ID))
	assert.Equal(t, PDFKey(doc.ID), doc.StorageKey)
	assert.Equal(t, "Exam.PDF", doc.Filename)
	assert.Zero(t, doc.PageCount)
	assert.Equal(t, 1, f.log.Count("WARN"))

	other, err := f.svc.Upload(ctx, strings.NewReader("%PDF-1.4"), "exam.pdf")
	require.NoError(t, err)
	assert.NotEqual(t, doc.ID, other.ID)

	_, err = f.svc.Upload(ctx, strings.NewReader("text"), "notes.txt")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.svc.Upload(ctx, strings.NewReader(strings.Repeat("x", 2048)), "big.pdf")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestConvert(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	id := f.upload(t)

	result, err := f.svc.Convert(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, f.ext.lastID)
	assert.Len(t, result.Questions, 2)

	stored, err := f.svc.results.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, result, stored)
}

func TestConvert_Errors(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Convert(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.svc.Convert(ctx, "7a0c2e4e-31a1-4f57-9d2c-1f4d8b1c2a3b")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Zero(t, f.ext.calls)

	id := f.upload(t)
	f.ext.err = fmt.Errorf("%w: cannot open", models.ErrDocumentCorrupt)
	_, err = f.svc.Convert(ctx, id)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDocumentCorrupt)
	assert.True(t, strings.HasPrefix(err.Error(), "extract failed: "))

	_, err = f.svc.ListQuestions(ctx, id)
	assert.ErrorIs(t, err, models.ErrNotFound, "failed conversions persist nothing")
}

func TestConvert_ReplacesPreviousResult(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	id := f.upload(t)

	_, err := f.svc.Convert(ctx, id)
	require.NoError(t, err)

	f.ext.result = &models.ConversionResult{Meta: models.ConversionMeta{Engine: "fake", PageCount: 1}, Questions: []models.Question{}}
	_, err = f.svc.Convert(ctx, id)
	require.NoError(t, err)

	list, err := f.svc.ListQuestions(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, list.Count)
}

func TestQuestions(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	id := f.upload(t)
	_, err := f.svc.Convert(ctx, id)
	require.NoError(t, err)

	list, err := f.svc.ListQuestions(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, "1번 문제", list.Questions[0].Title)
	assert.Equal(t, "서술하시오.", list.Questions[1].Preview)

	d, err := f.svc.GetQuestion(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"① 1", "② 2"}, d.Choices)
	assert.Equal(t, "http://localhost:8080/api/v1/documents/"+id+"/questions/1/audio", d.AudioURL)

	_, err = f.svc.GetQuestion(ctx, id, 3)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.svc.GetQuestion(ctx, "nope", 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSynthesize(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Synthesize(ctx, " \n ")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Empty(t, f.synth.texts)

	audio, err := f.svc.Synthesize(ctx, "안녕하세요")
	require.NoError(t, err)
	assert.Equal(t, "mp3:안녕하세요", string(audio))

	id := f.upload(t)
	_, err = f.svc.Convert(ctx, id)
	require.NoError(t, err)

	audio, err = f.svc.SynthesizeQuestion(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, "mp3:다음 중 옳은 것은?\n① 1\n② 2", string(audio))

	_, err = f.svc.SynthesizeQuestion(ctx, id, 9)
	assert.ErrorIs(t, err, models.ErrNotFound)

	f.synth.err = fmt.Errorf("%w: tts down", models.ErrExternalService)
	_, err = f.svc.Synthesize(ctx, "안녕")
	assert.ErrorIs(t, err, models.ErrExternalService)
}

func TestConvertAsync_Disabled(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.svc.ConvertAsync(context.Background(), f.upload(t))
	assert.ErrorIs(t, err, models.ErrQueueDisabled)
	_, err = f.svc.GetTaskStatus(context.Background(), "t")
	assert.ErrorIs(t, err, models.ErrQueueDisabled)
}

func TestConvertAsync_Lifecycle(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	id := f.upload(t)

	_, err := f.svc.ConvertAsync(ctx, "7a0c2e4e-31a1-4f57-9d2c-1f4d8b1c2a3b")
	assert.ErrorIs(t, err, models.ErrNotFound)

	task, err := f.svc.ConvertAsync(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, task.Status)
	require.Len(t, f.queue.tasks, 1)
	assert.Equal(t, queue.TaskTypeConvert, f.queue.tasks[0].Type)

	require.NoError(t, f.svc.HandleConvertTask(ctx, f.queue.tasks[0]))

	status, err := f.svc.GetTaskStatus(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, status.Status)
	assert.Equal(t, id, status.PdfID)
	assert.Equal(t, 1.0, status.Progress)

	_, err = f.svc.GetTaskStatus(ctx, "unknown")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestHandleConvertTask_Failure(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	id := f.upload(t)
	f.ext.err = errors.New("model unavailable")

	task := &queue.Task{ID: "t1", Type: queue.TaskTypeConvert, Payload: map[string]string{"pdfId": id}}
	err := f.svc.HandleConvertTask(ctx, task)
	require.Error(t, err)

	status, err := f.svc.GetTaskStatus(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, status.Status)
	assert.Contains(t, status.Error, "model unavailable")

	err = f.svc.HandleConvertTask(ctx, &queue.Task{ID: "t2", Payload: map[string]string{}})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCleanup(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	id := f.upload(t)

	require.NoError(t, f.svc.Cleanup(ctx, 0))
	require.NoError(t, f.svc.ensureDocument(ctx, id))

	require.NoError(t, f.svc.Cleanup(ctx, time.Hour))
	require.NoError(t, f.svc.ensureDocument(ctx, id))

	require.NoError(t, f.svc.Cleanup(ctx, time.Nanosecond))
	assert.ErrorIs(t, f.svc.ensureDocument(ctx, id), models.ErrNotFound)
}
