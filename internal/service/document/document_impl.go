package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hyperon-hyeon/Graphear/config"
	"github.com/hyperon-hyeon/Graphear/internal/agent"
	agentdoc "github.com/hyperon-hyeon/Graphear/internal/agent/document"
	"github.com/hyperon-hyeon/Graphear/internal/agent/document/pdf"
	"github.com/hyperon-hyeon/Graphear/internal/agent/speech"
	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/internal/utils/validator"
	"github.com/hyperon-hyeon/Graphear/pkg/converters"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
	"github.com/hyperon-hyeon/Graphear/pkg/queue"
	"github.com/hyperon-hyeon/Graphear/pkg/storage"
)

var _ DocumentProcessor = (*DocumentService)(nil)

type DocumentService struct {
	extractor   agentdoc.Extractor
	synthesizer speech.Synthesizer
	queue       queue.Queue
	storage     storage.Storage
	results     *ResultStore
	validator   *validator.DocumentValidator
	converter   *converters.QuestionConverter
	logger      logger.Logger
	config      *ServiceConfig
	closers     []io.Closer
}

type ServiceConfig struct {
	MaxFileSize    int64
	PublicBaseURL  string
	ConvertTimeout time.Duration
}

// NewService wires a service from its collaborators. q may be nil, in which case
// the async operations return models.ErrQueueDisabled.
func NewService(
	extractor agentdoc.Extractor,
	synthesizer speech.Synthesizer,
	q queue.Queue,
	store storage.Storage,
	log logger.Logger,
	cfg *ServiceConfig,
) *DocumentService {
	if cfg == nil {
		cfg = &ServiceConfig{
			MaxFileSize:    50 * 1024 * 1024,
			ConvertTimeout: 30 * time.Minute,
		}
	}

	return &DocumentService{
		extractor:   extractor,
		synthesizer: synthesizer,
		queue:       q,
		storage:     store,
		results:     NewResultStore(store),
		validator:   validator.NewDocumentValidator(log.Named("validator"), &validator.ValidatorConfig{MaxFileSize: cfg.MaxFileSize}),
		converter:   converters.NewQuestionConverter(cfg.PublicBaseURL),
		logger:      log,
		config:      cfg,
	}
}

// GetService builds the service from configuration: storage backend, extraction
// strategy, speech engine and, when enabled, the task queue.
func GetService(ctx context.Context, cfg *config.Config, log logger.Logger) (*DocumentService, error) {
	store, err := storage.NewStorage(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	factory := agent.NewProcessorFactory(cfg, log.Named("agent"))
	extractor, err := factory.NewExtractor(ctx)
	if err != nil {
		factory.Close()
		return nil, fmt.Errorf("failed to initialize extractor: %w", err)
	}
	synthesizer, err := factory.NewSynthesizer()
	if err != nil {
		factory.Close()
		return nil, fmt.Errorf("failed to initialize synthesizer: %w", err)
	}

	var q queue.Queue
	if cfg.Queue.Enabled {
		aq, err := queue.NewAsynqQueue(ctx, cfg.Queue, log.Named("queue"))
		if err != nil {
			factory.Close()
			return nil, fmt.Errorf("failed to initialize queue: %w", err)
		}
		q = aq
	}

	svc := NewService(extractor, synthesizer, q, store, log.Named("document"), &ServiceConfig{
		MaxFileSize:    cfg.Server.MaxUploadBytes,
		PublicBaseURL:  cfg.Server.PublicBaseURL,
		ConvertTimeout: 30 * time.Minute,
	})
	svc.closers = append(svc.closers, factory)
	if q != nil {
		svc.closers = append(svc.closers, q)
	}
	if c, ok := store.(io.Closer); ok {
		svc.closers = append(svc.closers, c)
	}
	return svc, nil
}

// Close releases model clients, the queue connection and the storage client.
func (s *DocumentService) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Upload validates and stores a PDF under a fresh identifier.
func (s *DocumentService) Upload(ctx context.Context, file io.Reader, filename string) (*models.Document, error) {
	data, info, err := s.validator.ReadFile(file, filename)
	if err != nil {
		s.logger.Warn("Upload rejected",
			logger.String("filename", filename),
			logger.Error(err),
		)
		return nil, err
	}

	doc := &models.Document{
		ID:        uuid.New().String(),
		Filename:  info.Filename,
		Size:      info.Size,
		Hash:      info.Hash,
		CreatedAt: time.Now(),
	}
	doc.StorageKey = PDFKey(doc.ID)

	// Page count is informational; a PDF pdfcpu cannot read may still render.
	if n, err := pdf.PageCount(data); err == nil {
		doc.PageCount = n
	} else {
		s.logger.Warn("Failed to count pages",
			logger.String("pdfId", doc.ID),
			logger.Error(err),
		)
	}

	if _, err := s.storage.Store(ctx, bytes.NewReader(data), doc.StorageKey); err != nil {
		s.logger.Error("Failed to store upload",
			logger.String("pdfId", doc.ID),
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	s.logger.Info("Document uploaded",
		logger.String("pdfId", doc.ID),
		logger.String("filename", doc.Filename),
		logger.Int64("size", doc.Size),
		logger.Int("pages", doc.PageCount),
	)
	return doc, nil
}

func (s *DocumentService) loadPDF(ctx context.Context, pdfID string) ([]byte, error) {
	if !ValidID(pdfID) {
		return nil, fmt.Errorf("%w: document %q", models.ErrNotFound, pdfID)
	}
	rc, err := s.storage.Get(ctx, PDFKey(pdfID))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return data, nil
}

// Convert runs the extraction strategy over a stored document and persists the
// result. Nothing is persisted when extraction fails.
func (s *DocumentService) Convert(ctx context.Context, pdfID string) (*models.ConversionResult, error) {
	data, err := s.loadPDF(ctx, pdfID)
	if err != nil {
		return nil, err
	}

	if s.config.ConvertTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ConvertTimeout)
		defer cancel()
	}

	start := time.Now()
	doc := &models.Document{ID: pdfID, StorageKey: PDFKey(pdfID), Size: int64(len(data))}
	result, err := s.extractor.Extract(ctx, doc, data)
	if err != nil {
		s.logger.Error("Extraction failed",
			logger.String("pdfId", pdfID),
			logger.String("engine", s.extractor.Name()),
			logger.Error(err),
		)
		return nil, fmt.Errorf("extract failed: %w", err)
	}

	if err := s.results.Save(ctx, pdfID, result); err != nil {
		return nil, err
	}

	s.logger.Info("Document converted",
		logger.String("pdfId", pdfID),
		logger.String("engine", result.Meta.Engine),
		logger.Int("pages", result.Meta.PageCount),
		logger.Int("questions", len(result.Questions)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// ConvertAsync queues a conversion of a stored document.
func (s *DocumentService) ConvertAsync(ctx context.Context, pdfID string) (*models.ConversionTask, error) {
	if s.queue == nil {
		return nil, models.ErrQueueDisabled
	}
	if err := s.ensureDocument(ctx, pdfID); err != nil {
		return nil, err
	}

	now := time.Now()
	task := &queue.Task{
		ID:        uuid.New().String(),
		Type:      queue.TaskTypeConvert,
		Priority:  queue.PriorityDefault,
		Payload:   map[string]string{"pdfId": pdfID},
		CreatedAt: now,
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to queue conversion: %w", err)
	}

	status := &queue.TaskStatus{
		TaskID:    task.ID,
		PdfID:     pdfID,
		Status:    models.StatusPending,
		CreatedAt: now,
	}
	if err := s.queue.SaveStatus(ctx, status); err != nil {
		s.logger.Warn("Failed to save task status",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
	}
	return toConversionTask(status), nil
}

func (s *DocumentService) ensureDocument(ctx context.Context, pdfID string) error {
	if !ValidID(pdfID) {
		return fmt.Errorf("%w: document %q", models.ErrNotFound, pdfID)
	}
	rc, err := s.storage.Get(ctx, PDFKey(pdfID))
	if err != nil {
		return err
	}
	return rc.Close()
}

func (s *DocumentService) GetTaskStatus(ctx context.Context, taskID string) (*models.ConversionTask, error) {
	if s.queue == nil {
		return nil, models.ErrQueueDisabled
	}
	status, err := s.queue.GetTaskStatus(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return toConversionTask(status), nil
}

// HandleConvertTask runs one queued conversion, recording its progress.
func (s *DocumentService) HandleConvertTask(ctx context.Context, task *queue.Task) error {
	pdfID := task.Payload["pdfId"]
	if pdfID == "" {
		return fmt.Errorf("%w: task %s has no pdfId", models.ErrInvalidInput, task.ID)
	}

	status := &queue.TaskStatus{
		TaskID:    task.ID,
		PdfID:     pdfID,
		Status:    models.StatusRunning,
		Progress:  0.1,
		CreatedAt: task.CreatedAt,
		StartedAt: time.Now(),
	}
	s.saveStatus(ctx, status)

	_, err := s.Convert(ctx, pdfID)
	status.FinishedAt = time.Now()
	if err != nil {
		status.Status = models.StatusFailed
		status.Error = err.Error()
	} else {
		status.Status = models.StatusCompleted
		status.Progress = 1.0
	}
	// The run context may already be cancelled; the final status must still land.
	s.saveStatus(context.WithoutCancel(ctx), status)
	return err
}

func (s *DocumentService) saveStatus(ctx context.Context, status *queue.TaskStatus) {
	if s.queue == nil {
		return
	}
	if err := s.queue.SaveStatus(ctx, status); err != nil {
		s.logger.Error("Failed to save task status",
			logger.String("taskId", status.TaskID),
			logger.String("status", string(status.Status)),
			logger.Error(err),
		)
	}
}

func toConversionTask(s *queue.TaskStatus) *models.ConversionTask {
	updated := s.FinishedAt
	if updated.IsZero() {
		updated = s.StartedAt
	}
	return &models.ConversionTask{
		ID:        s.TaskID,
		PdfID:     s.PdfID,
		Status:    s.Status,
		Progress:  s.Progress,
		Error:     s.Error,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updated,
	}
}

func (s *DocumentService) ListQuestions(ctx context.Context, pdfID string) (*converters.QuestionList, error) {
	result, err := s.results.Load(ctx, pdfID)
	if err != nil {
		return nil, err
	}
	return s.converter.ToList(pdfID, result), nil
}

func (s *DocumentService) GetQuestion(ctx context.Context, pdfID string, number int) (*converters.QuestionDetail, error) {
	result, err := s.results.Load(ctx, pdfID)
	if err != nil {
		return nil, err
	}
	return s.converter.ToDetail(pdfID, result, number)
}

func (s *DocumentService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", models.ErrInvalidInput)
	}
	audio, err := s.synthesizer.Synthesize(ctx, text)
	if err != nil {
		s.logger.Error("Speech synthesis failed",
			logger.String("engine", s.synthesizer.Name()),
			logger.Int("chars", len([]rune(text))),
			logger.Error(err),
		)
		return nil, err
	}
	return audio, nil
}

// SynthesizeQuestion speaks a stored question's body followed by its choices.
func (s *DocumentService) SynthesizeQuestion(ctx context.Context, pdfID string, number int) ([]byte, error) {
	result, err := s.results.Load(ctx, pdfID)
	if err != nil {
		return nil, err
	}
	q, err := converters.At(result, number)
	if err != nil {
		return nil, err
	}
	return s.Synthesize(ctx, speech.QuestionText(q.Body, q.Choices))
}

// Cleanup deletes uploads and results last written more than olderThan ago.
func (s *DocumentService) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if olderThan <= 0 {
		return nil
	}
	threshold := time.Now().Add(-olderThan)
	if err := s.storage.CleanupBefore(ctx, threshold); err != nil {
		return fmt.Errorf("failed to clean up storage: %w", err)
	}
	s.logger.Info("Storage cleanup finished", logger.Time("threshold", threshold))
	return nil
}
