package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/storage"
)

// PDFKey is where an uploaded document's bytes live.
func PDFKey(pdfID string) string {
	return pdfID + ".pdf"
}

// ResultKey is where a document's ConversionResult lives.
func ResultKey(pdfID string) string {
	return "results/" + pdfID + ".json"
}

// ValidID reports whether id has the shape of an issued document identifier.
// Anything else is treated as unknown, which also keeps ids from escaping the key space.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ResultStore persists one ConversionResult per document identifier. Saving
// again replaces the previous result.
type ResultStore struct {
	storage storage.Storage
}

func NewResultStore(s storage.Storage) *ResultStore {
	return &ResultStore{storage: s}
}

func (r *ResultStore) Save(ctx context.Context, pdfID string, result *models.ConversionResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if _, err := r.storage.Store(ctx, bytes.NewReader(data), ResultKey(pdfID)); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

// Load returns an error wrapping models.ErrNotFound when the document was never converted.
func (r *ResultStore) Load(ctx context.Context, pdfID string) (*models.ConversionResult, error) {
	if !ValidID(pdfID) {
		return nil, fmt.Errorf("%w: document %q", models.ErrNotFound, pdfID)
	}
	rc, err := r.storage.Get(ctx, ResultKey(pdfID))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read result: %w", err)
	}
	var result models.ConversionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result for %s: %w", pdfID, err)
	}
	if result.Questions == nil {
		result.Questions = []models.Question{}
	}
	return &result, nil
}
