// Package logging sets up the session logger: human readable lines on the
// console and the same entries, with full timestamps, in a per-session file.
package logging

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultDir holds the generated session log files
const DefaultDir = "logs"

// Options configures New
type Options struct {
	File    string    // Log file path; empty generates one under Dir
	Dir     string    // Directory for generated file names, defaults to DefaultDir
	Level   string    // logrus level name, defaults to debug
	Console io.Writer // Defaults to stderr
	Now     func() time.Time
}

// SessionFileName returns the generated log file name for a session started at t
func SessionFileName(t time.Time) string {
	return "test_execution_" + t.Format("20060102_150405") + ".log"
}

// New builds the session logger. The returned close function flushes and
// closes the log file; call it once the session ends.
func New(opts Options) (*logrus.Logger, func() error, error) {
	if opts.Level == "" {
		opts.Level = logrus.DebugLevel.String()
	}
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	if opts.Console == nil {
		opts.Console = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	path := opts.File
	if path == "" {
		dir := opts.Dir
		if dir == "" {
			dir = DefaultDir
		}
		path = filepath.Join(dir, SessionFileName(opts.Now()))
	}

	hook, err := newFileHook(path)
	if err != nil {
		return nil, nil, err
	}

	logger := logrus.New()
	logger.SetOutput(opts.Console)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	logger.AddHook(hook)

	logger.Debugf("Logging to %s", path)
	return logger, hook.Close, nil
}

// fileHook writes every entry it receives to a local file
type fileHook struct {
	mu        sync.Mutex
	path      string
	w         io.WriteCloser
	bw        *bufio.Writer
	formatter logrus.Formatter
	closed    bool
}

func newFileHook(path string) (*fileHook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory for %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open logfile %s: %w", path, err)
	}
	return &fileHook{
		path: path,
		w:    file,
		bw:   bufio.NewWriter(file),
		formatter: &logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		},
	}, nil
}

// Fire writes the entry to the file
func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return fmt.Errorf("failed to format a log entry: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	if _, err := h.bw.Write(line); err != nil {
		return fmt.Errorf("failed to write a log message to %s: %w", h.path, err)
	}
	return nil
}

// Levels returns all levels; filtering happens on the logger
func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Close flushes buffered lines and closes the file. Later calls are no-ops.
func (h *fileHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	if err := h.bw.Flush(); err != nil {
		_ = h.w.Close()
		return fmt.Errorf("failed to flush %s: %w", h.path, err)
	}
	return h.w.Close()
}
