package document

import (
	"context"

	"github.com/hyperon-hyeon/Graphear/internal/models"
)

// Extractor turns a whole PDF into a ConversionResult. The vision pipeline and the
// flat-text segmenter are the two implementations; one is selected per deployment.
type Extractor interface {
	// Name is the engine identifier recorded in ConversionMeta.
	Name() string
	Extract(ctx context.Context, doc *models.Document, data []byte) (*models.ConversionResult, error)
}

// Rasterizer opens PDF bytes for page rendering.
type Rasterizer interface {
	// Open fails with models.ErrDocumentCorrupt when data is not a readable PDF.
	Open(data []byte) (PageSource, error)
}

// PageSource is an opened document.
type PageSource interface {
	PageCount() int
	// RenderPage renders the 0-based page index to PNG bytes at dpi.
	// It fails with models.ErrInvalidPageIndex for indexes outside [0, PageCount()).
	RenderPage(index int, dpi float64) ([]byte, error)
	Close() error
}

// VisionClient sends one page image to a vision-language model.
//
// The returned PageResult carries either the parsed questions or the raw response
// text. Transport and auth failures are reported in PageResult.Err wrapping
// models.ErrExternalService; parse failures wrap ErrUnparseableResponse.
type VisionClient interface {
	Name() string
	ExtractPage(ctx context.Context, prompt string, page int, image []byte) models.PageResult
}

// TextSource yields the plain text of every page, in page order.
type TextSource interface {
	Name() string
	PageTexts(ctx context.Context, data []byte) ([]string, error)
}
