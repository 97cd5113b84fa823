package models

import "errors"

var (
	// ErrInvalidInput marks caller mistakes: missing upload, wrong extension, blank text.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks unknown document identifiers and question positions.
	ErrNotFound = errors.New("not found")
	// ErrDocumentCorrupt means the PDF could not be opened or rendered.
	ErrDocumentCorrupt = errors.New("document corrupt")
	// ErrInvalidPageIndex means a page index outside [0, page count).
	ErrInvalidPageIndex = errors.New("invalid page index")
	// ErrExternalService marks transport or auth failures of the vision model or TTS engine.
	ErrExternalService = errors.New("external service error")
	// ErrQueueDisabled is returned for async operations when no queue is configured.
	ErrQueueDisabled = errors.New("queue disabled")
)
