package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

type RunLogger struct {
	file       *os.File
	logger     *log.Logger
	multiWrite io.Writer
	debug      bool
}

// NewRunLogger writes to stdout and, when logsDir is not empty, to a
// timestamped file inside it.
func NewRunLogger(logsDir string, debug bool) (*RunLogger, error) {
	if logsDir == "" {
		return NewWriterLogger(os.Stdout, debug), nil
	}

	// Create logs directory if it doesn't exist
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(logsDir, fmt.Sprintf("sitemap_%s.log", timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	rl := NewWriterLogger(io.MultiWriter(os.Stdout, file), debug)
	rl.file = file
	return rl, nil
}

// NewWriterLogger logs to w only.
func NewWriterLogger(w io.Writer, debug bool) *RunLogger {
	return &RunLogger{
		logger:     log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds),
		multiWrite: w,
		debug:      debug,
	}
}

func (rl *RunLogger) LogInfo(format string, v ...interface{}) {
	rl.log("INFO", format, v...)
}

func (rl *RunLogger) LogError(format string, v ...interface{}) {
	rl.log("ERROR", format, v...)
}

func (rl *RunLogger) LogDebug(format string, v ...interface{}) {
	if !rl.debug {
		return
	}
	rl.log("DEBUG", format, v...)
}

func (rl *RunLogger) log(level string, format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	rl.logger.Printf("[%s] %s", level, message)
}

// Path returns the log file path, or "" when logging to stdout only.
func (rl *RunLogger) Path() string {
	if rl.file == nil {
		return ""
	}
	return rl.file.Name()
}

func (rl *RunLogger) Close() error {
	if rl.file == nil {
		return nil
	}
	return rl.file.Close()
}
