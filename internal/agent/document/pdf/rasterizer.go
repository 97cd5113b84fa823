package pdf

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"

	"github.com/hyperon-hyeon/Graphear/internal/agent/document"
	"github.com/hyperon-hyeon/Graphear/internal/models"
)

// FitzRasterizer renders pages with MuPDF.
type FitzRasterizer struct {
	// MaxWidth downscales wider renders, keeping the aspect ratio. Zero disables it.
	MaxWidth int
}

func NewFitzRasterizer(maxWidth int) *FitzRasterizer {
	return &FitzRasterizer{MaxWidth: maxWidth}
}

func (r *FitzRasterizer) Open(data []byte) (document.PageSource, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDocumentCorrupt, err)
	}
	return &fitzPages{doc: doc, maxWidth: r.MaxWidth}, nil
}

type fitzPages struct {
	mu       sync.Mutex
	doc      *fitz.Document
	maxWidth int
}

func (p *fitzPages) PageCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.NumPage()
}

func (p *fitzPages) RenderPage(index int, dpi float64) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= p.doc.NumPage() {
		return nil, fmt.Errorf("%w: %d of %d", models.ErrInvalidPageIndex, index, p.doc.NumPage())
	}

	img, err := p.doc.ImageDPI(index, dpi)
	if err != nil {
		return nil, fmt.Errorf("%w: render page %d: %v", models.ErrDocumentCorrupt, index+1, err)
	}

	var out image.Image = img
	if p.maxWidth > 0 && img.Bounds().Dx() > p.maxWidth {
		out = imaging.Resize(img, p.maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode page %d: %w", index+1, err)
	}
	return buf.Bytes(), nil
}

func (p *fitzPages) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Close()
}
