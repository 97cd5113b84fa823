package document

import (
	"context"
	"io"
	"time"

	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/converters"
	"github.com/hyperon-hyeon/Graphear/pkg/queue"
)

type DocumentProcessor interface {
	Upload(ctx context.Context, file io.Reader, filename string) (*models.Document, error)
	Convert(ctx context.Context, pdfID string) (*models.ConversionResult, error)
	ConvertAsync(ctx context.Context, pdfID string) (*models.ConversionTask, error)
	GetTaskStatus(ctx context.Context, taskID string) (*models.ConversionTask, error)
	HandleConvertTask(ctx context.Context, task *queue.Task) error
	ListQuestions(ctx context.Context, pdfID string) (*converters.QuestionList, error)
	GetQuestion(ctx context.Context, pdfID string, number int) (*converters.QuestionDetail, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
	SynthesizeQuestion(ctx context.Context, pdfID string, number int) ([]byte, error)
	Cleanup(ctx context.Context, olderThan time.Duration) error
}
