package validator

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

// DocumentValidator checks uploads before they reach storage.
type DocumentValidator struct {
	logger logger.Logger
	config *ValidatorConfig
}

// ValidatorConfig sets upload limits.
type ValidatorConfig struct {
	MaxFileSize int64 // bytes, 0 means unlimited
	// CheckContent additionally sniffs the payload for a PDF signature.
	CheckContent bool
}

// FileInfo describes an accepted upload.
type FileInfo struct {
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mimeType"`
	Extension string `json:"extension"`
	Hash      string `json:"hash"`
}

func NewDocumentValidator(log logger.Logger, config *ValidatorConfig) *DocumentValidator {
	if config == nil {
		config = &ValidatorConfig{MaxFileSize: 50 * 1024 * 1024}
	}
	return &DocumentValidator{logger: log, config: config}
}

// ValidateName accepts only names ending in .pdf, in any letter case.
func (v *DocumentValidator) ValidateName(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("%w: no file uploaded", models.ErrInvalidInput)
	}
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return fmt.Errorf("%w: only .pdf files are accepted, got %q", models.ErrInvalidInput, filename)
	}
	return nil
}

// ReadFile validates the name, then reads the whole upload into memory, enforcing
// the size limit while reading.
func (v *DocumentValidator) ReadFile(r io.Reader, filename string) ([]byte, *FileInfo, error) {
	if err := v.ValidateName(filename); err != nil {
		return nil, nil, err
	}

	src := r
	if v.config.MaxFileSize > 0 {
		src = io.LimitReader(r, v.config.MaxFileSize+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if v.config.MaxFileSize > 0 && int64(len(data)) > v.config.MaxFileSize {
		return nil, nil, fmt.Errorf("%w: file exceeds maximum size of %d bytes", models.ErrInvalidInput, v.config.MaxFileSize)
	}
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("%w: uploaded file is empty", models.ErrInvalidInput)
	}

	info := &FileInfo{
		Filename:  filepath.Base(filename),
		Size:      int64(len(data)),
		MimeType:  http.DetectContentType(data),
		Extension: ".pdf",
		Hash:      Hash(data),
	}
	if v.config.CheckContent && !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		v.logger.Warn("Upload rejected by content check",
			logger.String("filename", info.Filename),
			logger.String("mimeType", info.MimeType),
		)
		return nil, nil, fmt.Errorf("%w: %s is not a PDF document", models.ErrInvalidInput, info.Filename)
	}
	return data, info, nil
}

// Hash returns the hex sha256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
