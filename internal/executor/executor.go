// Package executor runs a sequence of named checks. A failing check is
// recorded and the run moves on to the next one.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/v0xg/webqa/internal/report"
)

// Step is one named check
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// StepResult is the outcome of a single step
type StepResult struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Passed reports whether the step returned without error
func (r StepResult) Passed() bool {
	return r.Err == nil
}

// Recorder persists outcomes, see report.Recorder
type Recorder interface {
	Record(name string, outcome report.Outcome) error
}

// Options configures execution behavior
type Options struct {
	Logger   logrus.FieldLogger
	Recorder Recorder
	// OnFailure runs right after a step fails, before the next one starts
	OnFailure func(ctx context.Context, step Step, err error)
	// Progress is called after every step
	Progress func(index, total int, res StepResult)
}

// Result holds the outcome of a whole run
type Result struct {
	Steps []StepResult
}

// Passed lists the names of the steps that passed
func (r *Result) Passed() []string {
	return r.names(true)
}

// Failed lists the names of the steps that failed
func (r *Result) Failed() []string {
	return r.names(false)
}

// OK reports whether every step passed
func (r *Result) OK() bool {
	return len(r.Failed()) == 0
}

func (r *Result) names(passed bool) []string {
	var out []string
	for _, s := range r.Steps {
		if s.Passed() == passed {
			out = append(out, s.Name)
		}
	}
	return out
}

// Execute runs every step in order. A canceled context stops the run before
// the next step; the steps that did not run are absent from the result.
func Execute(ctx context.Context, steps []Step, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	result := &Result{Steps: make([]StepResult, 0, len(steps))}

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		log.Infof("Setting up test: %s", step.Name)
		start := time.Now()
		err := runStep(ctx, step)
		res := StepResult{Name: step.Name, Err: err, Duration: time.Since(start)}

		if err != nil {
			log.WithError(err).Debugf("[%d/%d] %s failed", i+1, len(steps), step.Name)
			if opts.OnFailure != nil {
				opts.OnFailure(ctx, step, err)
			}
		}
		if opts.Recorder != nil {
			outcome := report.Outcome(err == nil)
			if rerr := opts.Recorder.Record(step.Name, outcome); rerr != nil {
				log.WithError(rerr).Warnf("Could not record result of %s", step.Name)
			}
		}
		log.Infof("Tearing down test: %s", step.Name)

		result.Steps = append(result.Steps, res)
		if opts.Progress != nil {
			opts.Progress(i, len(steps), res)
		}
	}

	return result, nil
}

// runStep turns a panic inside a step into a failure of that step
func runStep(ctx context.Context, step Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if step.Run == nil {
		return fmt.Errorf("step %q has nothing to run", step.Name)
	}
	return step.Run(ctx)
}
