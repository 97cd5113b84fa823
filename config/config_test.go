package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "uploads", cfg.Storage.LocalDir)
	assert.Equal(t, "vision", cfg.Extraction.Strategy)
	assert.Equal(t, 200.0, cfg.Extraction.DPI)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "ko", cfg.TTS.Language)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  retention: 48h
extraction:
  strategy: text
  textSource: tesseract
  dpi: 300
storage:
  type: minio
  minio:
    bucketName: exams
`), 0644))

	t.Setenv("RENDER_DPI", "150")
	t.Setenv("OCR_LANGUAGES", "kor, eng ,")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 48*time.Hour, cfg.Server.Retention)
	assert.Equal(t, "text", cfg.Extraction.Strategy)
	assert.Equal(t, "tesseract", cfg.Extraction.TextSource)
	assert.Equal(t, 150.0, cfg.Extraction.DPI)
	assert.Equal(t, []string{"kor", "eng"}, cfg.Extraction.OCRLanguages)
	assert.Equal(t, "exams", cfg.Storage.Minio.BucketName)
}

func TestLoad_RejectsUnknownValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("STORAGE_TYPE", "ftp")
	_, err := Load("")
	assert.ErrorContains(t, err, "unsupported storage type")

	t.Setenv("STORAGE_TYPE", "local")
	t.Setenv("EXTRACTION_STRATEGY", "magic")
	_, err = Load("")
	assert.ErrorContains(t, err, "unsupported extraction strategy")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
