package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	log, err := NewLogger(
		WithLevel("debug"),
		WithEncoding("console"),
		WithOutputPaths([]string{path}),
		WithField("service", "test"),
	)
	require.NoError(t, err)
	log.Named("pipeline").Info("hello", String("k", "v"))
	assert.FileExists(t, path)
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, err := NewLogger(WithLevel("loud"))
	assert.Error(t, err)
}

func TestTestLogger_SharesEntriesAcrossChildren(t *testing.T) {
	log := NewTestLogger()
	child := log.With(String("page", "1")).Named("vision")

	child.Warn("parse failed")
	log.Info("done")

	entries := log.GetEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "vision", entries[0].Logger)
	assert.Len(t, entries[0].Fields, 1)
	assert.Equal(t, 1, log.Count("WARN"))

	log.Clear()
	assert.Empty(t, log.GetEntries())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "가나...", Truncate("가나다라", 2))
}
