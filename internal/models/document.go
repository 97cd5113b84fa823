package models

import (
	"time"
)

// Document is one uploaded exam PDF.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	PageCount  int       `json:"pageCount"`
	Size       int64     `json:"size"`
	Hash       string    `json:"hash,omitempty"`
	StorageKey string    `json:"storageKey"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RawQuestion is a question object exactly as the extraction model returned it.
type RawQuestion map[string]any

// PageResult is the outcome of one page's extraction call. It either carries the
// questions the model reported, or the raw response text when it could not be parsed.
type PageResult struct {
	Page        int
	Questions   []RawQuestion
	RawResponse string
	Err         error
}

// OK reports whether the page response was parsed successfully.
func (r PageResult) OK() bool {
	return r.Err == nil
}

// Question is one normalized exam item.
type Question struct {
	ID       string   `json:"id"`
	GlobalID string   `json:"global_id"`
	Page     int      `json:"page"`
	Body     string   `json:"body"`
	Choices  []string `json:"choices"`
}

// ConversionMeta describes how a ConversionResult was produced.
type ConversionMeta struct {
	Engine    string `json:"engine"`
	PageCount int    `json:"page_count"`
}

// ConversionResult is the persisted output of converting one document.
type ConversionResult struct {
	Meta      ConversionMeta `json:"meta"`
	Questions []Question     `json:"questions"`
}

// ParsedTextQuestion is a question cut out of a flat text blob by header markers.
type ParsedTextQuestion struct {
	Number int    `json:"number"`
	Header string `json:"header"`
	Body   string `json:"body"`
	// Offset is the byte position of the header in the source text, -1 for the fallback record.
	Offset int `json:"-"`
}
