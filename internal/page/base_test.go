package page

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWait     = 60 * time.Millisecond
	testInterval = 5 * time.Millisecond
)

func newTestBase(t *testing.T, drv Driver) (*Base, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewBase(drv, "https://store.test", Options{
		Wait:         testWait,
		PollInterval: testInterval,
		Logger:       logger,
	}), hook
}

func errorMessages(hook *logtest.Hook) []string {
	var out []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			out = append(out, e.Message)
		}
	}
	return out
}

func TestNewBaseDefaults(t *testing.T) {
	t.Parallel()
	b := NewBase(newFakeDriver(), "https://store.test", Options{})
	assert.Equal(t, DefaultWait, b.wait)
	assert.Equal(t, DefaultPollInterval, b.interval)
	assert.Equal(t, "https://store.test", b.URL())
}

func TestFindOne(t *testing.T) {
	t.Parallel()

	t.Run("present", func(t *testing.T) {
		t.Parallel()
		drv := newFakeDriver()
		want := &fakeElement{text: "hello"}
		drv.add(ID("greeting"), want)
		b, hook := newTestBase(t, drv)

		el, ok := b.FindOne(ID("greeting"), 0)
		require.True(t, ok)
		assert.Same(t, want, el)
		assert.Empty(t, errorMessages(hook))
	})

	t.Run("appears while polling", func(t *testing.T) {
		t.Parallel()
		drv := newFakeDriver()
		drv.addLater(ID("late"), 20*time.Millisecond, &fakeElement{})
		b, _ := newTestBase(t, drv)

		_, ok := b.FindOne(ID("late"), 0)
		assert.True(t, ok)
		assert.Greater(t, drv.lookupCount(), 1)
	})

	t.Run("absent returns sentinel and logs", func(t *testing.T) {
		t.Parallel()
		drv := newFakeDriver()
		b, hook := newTestBase(t, drv)

		start := time.Now()
		el, ok := b.FindOne(ID("missing"), 0)
		assert.False(t, ok)
		assert.Nil(t, el)
		assert.GreaterOrEqual(t, int64(time.Since(start)), int64(testWait))
		assert.Contains(t, errorMessages(hook), "Timeout: element not found: id=missing")
	})

	t.Run("explicit timeout overrides default", func(t *testing.T) {
		t.Parallel()
		drv := newFakeDriver()
		b, _ := newTestBase(t, drv)

		start := time.Now()
		_, ok := b.FindOne(ID("missing"), 10*time.Millisecond)
		assert.False(t, ok)
		assert.Less(t, int64(time.Since(start)), int64(testWait))
	})

	t.Run("driver errors are retried then swallowed", func(t *testing.T) {
		t.Parallel()
		drv := newFakeDriver()
		drv.lookupErr = errBrokenSession
		b, hook := newTestBase(t, drv)

		_, ok := b.FindOne(CSS("div"), 0)
		assert.False(t, ok)
		assert.NotEmpty(t, errorMessages(hook))
	})
}

func TestFindAll(t *testing.T) {
	t.Parallel()

	t.Run("returns all in order", func(t *testing.T) {
		t.Parallel()
		drv := newFakeDriver()
		a, b2 := &fakeElement{text: "a"}, &fakeElement{text: "b"}
		drv.add(Class("row"), a, b2)
		b, _ := newTestBase(t, drv)

		els := b.FindAll(Class("row"), 0)
		require.Len(t, els, 2)
		assert.Same(t, a, els[0])
		assert.Same(t, b2, els[1])
	})

	t.Run("absent returns empty non-nil slice", func(t *testing.T) {
		t.Parallel()
		drv := newFakeDriver()
		b, hook := newTestBase(t, drv)

		els := b.FindAll(Class("row"), 0)
		assert.NotNil(t, els)
		assert.Empty(t, els)
		assert.Contains(t, errorMessages(hook), "Timeout: elements not found: class name=row")
	})
}

func TestClick(t *testing.T) {
	t.Parallel()

	t.Run("clicks when found", func(t *testing.T) {
		t.Parallel()
		drv := newFakeDriver()
		btn := &fakeElement{}
		drv.add(ID("go"), btn)
		b, _ := newTestBase(t, drv)

		b.Click(ID("go"))
		assert.Equal(t, 1, btn.clicks)
	})

	t.Run("no-op when absent", func(t *testing.T) {
		t.Parallel()
		drv := newFakeDriver()
		b, hook := newTestBase(t, drv)

		assert.NotPanics(t, func() { b.Click(ID("go")) })
		var sawSkip bool
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.DebugLevel && e.Message == "Click skipped, element absent: id=go" {
				sawSkip = true
			}
		}
		assert.True(t, sawSkip)
	})

	t.Run("driver click failure is swallowed", func(t *testing.T) {
		t.Parallel()
		drv := newFakeDriver()
		drv.add(ID("go"), &fakeElement{failing: errBrokenSession})
		b, hook := newTestBase(t, drv)

		b.Click(ID("go"))
		assert.Contains(t, errorMessages(hook), "Click failed: id=go")
	})
}

func TestEnterText(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver()
	field := &fakeElement{text: "stale"}
	drv.add(ID("user"), field)
	b, _ := newTestBase(t, drv)

	b.EnterText(ID("user"), "standard_user")
	assert.Equal(t, 1, field.cleared)
	assert.Equal(t, []string{"standard_user"}, field.typed)
	assert.Equal(t, "standard_user", field.text)

	assert.NotPanics(t, func() { b.EnterText(ID("nope"), "x") })
}

func TestReadText(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver()
	drv.add(Class("title"), &fakeElement{text: "Products"})
	b, _ := newTestBase(t, drv)

	assert.Equal(t, "Products", b.ReadText(Class("title")))
	assert.Equal(t, "", b.ReadText(Class("subtitle")))
}

func TestIsVisible(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver()
	drv.add(ID("shown"), &fakeElement{})
	drv.add(ID("hidden"), &fakeElement{hidden: true})
	b, hook := newTestBase(t, drv)

	assert.True(t, b.IsVisible(ID("shown"), 0))
	assert.False(t, b.IsVisible(ID("hidden"), 0))
	assert.False(t, b.IsVisible(ID("absent"), 0))
	assert.Empty(t, errorMessages(hook))
}

func TestOpenSwallowsNavigationError(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver()
	drv.navErr = errBrokenSession
	b, hook := newTestBase(t, drv)

	assert.NotPanics(t, b.Open)
	assert.Equal(t, []string{"https://store.test"}, drv.navigated)
	assert.Contains(t, errorMessages(hook), "Failed to open URL https://store.test")
}
