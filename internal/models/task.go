package models

import (
	"time"
)

type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "pending"
	StatusRunning   ProcessingStatus = "running"
	StatusCompleted ProcessingStatus = "completed"
	StatusFailed    ProcessingStatus = "failed"
)

// ConversionTask tracks an asynchronous conversion.
type ConversionTask struct {
	ID        string           `json:"task_id"`
	PdfID     string           `json:"pdf_id"`
	Status    ProcessingStatus `json:"status"`
	Progress  float64          `json:"progress"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
