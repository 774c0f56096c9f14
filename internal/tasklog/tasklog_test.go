package tasklog

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/content-notifier/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
}

func TestFileLogAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task.log")
	log := NewFileLog(path, testLogger())

	require.NoError(t, log.Log("first message"))
	require.NoError(t, log.Log("second message"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "first message\n")
	assert.Contains(t, string(content), "second message\n")
}

func TestFileLogUnwritablePath(t *testing.T) {
	log := NewFileLog(filepath.Join(t.TempDir(), "missing", "task.log"), testLogger())

	assert.Error(t, log.Log("message"))
}
