// Package tasklog is the durable diagnostics sink for notification runs.
// A write failure here is the one condition that turns a run fatal.
package tasklog

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jwalitptl/content-notifier/pkg/logger"
)

// FileLog appends timestamped diagnostic lines to a task log file and echoes
// them to the process logger.
type FileLog struct {
	mu     sync.Mutex
	path   string
	logger *logger.Logger
}

func NewFileLog(path string, logger *logger.Logger) *FileLog {
	return &FileLog{path: path, logger: logger}
}

// Log appends one diagnostic line. The returned error signals a logging
// subsystem failure.
func (l *FileLog) Log(message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open task log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s\n", time.Now().UTC().Format(time.RFC3339), message)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to write task log: %w", err)
	}

	l.logger.Info(message)
	return nil
}
