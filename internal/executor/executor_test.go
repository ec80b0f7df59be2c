package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/webqa/internal/report"
)

type memRecorder struct {
	lines []string
}

func (m *memRecorder) Record(name string, outcome report.Outcome) error {
	m.lines = append(m.lines, name+" - "+outcome.String())
	return nil
}

func pass(context.Context) error { return nil }

func TestExecuteContinuesAfterFailure(t *testing.T) {
	t.Parallel()
	logger, hook := logtest.NewNullLogger()
	rec := &memRecorder{}
	errCart := errors.New("cart count 0, want 1")

	var failed []string
	var ran []string
	steps := []Step{
		{Name: "inventory", Run: func(context.Context) error { ran = append(ran, "inventory"); return nil }},
		{Name: "cart", Run: func(context.Context) error { ran = append(ran, "cart"); return errCart }},
		{Name: "airports", Run: func(context.Context) error { ran = append(ran, "airports"); return nil }},
	}

	var progress []int
	res, err := Execute(context.Background(), steps, Options{
		Logger:   logger,
		Recorder: rec,
		OnFailure: func(_ context.Context, step Step, err error) {
			failed = append(failed, step.Name)
			assert.ErrorIs(t, err, errCart)
		},
		Progress: func(i, total int, _ StepResult) {
			assert.Equal(t, 3, total)
			progress = append(progress, i)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"inventory", "cart", "airports"}, ran)
	assert.Equal(t, []string{"inventory", "airports"}, res.Passed())
	assert.Equal(t, []string{"cart"}, res.Failed())
	assert.False(t, res.OK())
	assert.Equal(t, []string{"cart"}, failed)
	assert.Equal(t, []int{0, 1, 2}, progress)
	assert.Equal(t, []string{"inventory - PASSED", "cart - FAILED", "airports - PASSED"}, rec.lines)
	assert.ErrorIs(t, res.Steps[1].Err, errCart)

	var msgs []string
	for _, e := range hook.AllEntries() {
		msgs = append(msgs, e.Message)
	}
	assert.Contains(t, msgs, "Setting up test: cart")
	assert.Contains(t, msgs, "Tearing down test: cart")
}

func TestExecuteRecoversPanics(t *testing.T) {
	t.Parallel()
	logger, _ := logtest.NewNullLogger()

	res, err := Execute(context.Background(), []Step{
		{Name: "boom", Run: func(context.Context) error { panic(`page: no locator named "x"`) }},
		{Name: "nil"},
		{Name: "after", Run: pass},
	}, Options{Logger: logger})
	require.NoError(t, err)

	require.Len(t, res.Steps, 3)
	assert.EqualError(t, res.Steps[0].Err, `panic: page: no locator named "x"`)
	assert.Error(t, res.Steps[1].Err)
	assert.True(t, res.Steps[2].Passed())
}

func TestExecuteStopsOnCanceledContext(t *testing.T) {
	t.Parallel()
	logger, _ := logtest.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())

	res, err := Execute(ctx, []Step{
		{Name: "first", Run: func(context.Context) error { cancel(); return nil }},
		{Name: "second", Run: pass},
	}, Options{Logger: logger})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"first"}, res.Passed())
}

func TestExecuteWithFileRecorder(t *testing.T) {
	t.Parallel()
	logger, _ := logtest.NewNullLogger()
	rec, err := report.NewRecorder(t.TempDir(), logger)
	require.NoError(t, err)

	res, err := Execute(context.Background(), []Step{
		{Name: "test_airport_count", Run: pass},
		{Name: "test_calculate_distance", Run: func(context.Context) error { return errors.New("too short") }},
	}, Options{Logger: logger, Recorder: rec})
	require.NoError(t, err)
	assert.False(t, res.OK())

	data, err := os.ReadFile(filepath.Join(rec.Dir(), report.LogFileName))
	require.NoError(t, err)
	assert.Equal(t, "test_airport_count - PASSED\ntest_calculate_distance - FAILED\n", string(data))
}

func TestEmptyRunIsOK(t *testing.T) {
	t.Parallel()
	res, err := Execute(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Empty(t, res.Passed())
}
