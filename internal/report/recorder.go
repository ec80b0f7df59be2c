// Package report records check outcomes: one "<name> - PASSED|FAILED" line per
// check in test_log.txt, and PNG captures of failed browser checks.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogFileName is the pass/fail log inside the reports directory
const LogFileName = "test_log.txt"

// Outcome of a single check
type Outcome bool

const (
	Failed Outcome = false
	Passed Outcome = true
)

func (o Outcome) String() string {
	if o {
		return "PASSED"
	}
	return "FAILED"
}

// Recorder appends check outcomes to the reports directory
type Recorder struct {
	mu  sync.Mutex
	dir string
	log logrus.FieldLogger
}

// NewRecorder creates dir when needed
func NewRecorder(dir string, logger logrus.FieldLogger) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports directory: %w", err)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Recorder{dir: dir, log: logger}, nil
}

// Dir returns the reports directory
func (r *Recorder) Dir() string {
	return r.dir
}

// LogPath returns the path of the pass/fail log
func (r *Recorder) LogPath() string {
	return filepath.Join(r.dir, LogFileName)
}

// Record logs the outcome and appends it to the pass/fail log
func (r *Recorder) Record(name string, outcome Outcome) error {
	if outcome == Passed {
		r.log.Infof("Test Passed: %s", name)
	} else {
		r.log.Errorf("Test Failed: %s", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.LogPath(), os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", LogFileName, err)
	}
	if _, err := fmt.Fprintf(f, "%s - %s\n", name, outcome); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", LogFileName, err)
	}
	return f.Close()
}

// Screenshot stores a failure capture under <dir>/screenshots
func (r *Recorder) Screenshot(name string, png []byte, maxWidth uint) (string, error) {
	path, size, err := SaveScreenshot(filepath.Join(r.dir, "screenshots"), name, png, maxWidth)
	if err != nil {
		r.log.WithError(err).Errorf("Screenshot of %s not saved", name)
		return "", err
	}
	r.log.Infof("Screenshot saved: %s (%d bytes)", path, size)
	return path, nil
}
