// Package page implements page objects on top of a minimal browser driver.
//
// Every lookup in this package is bounded by a timeout and degrades to a sentinel
// value (nil handle, empty slice, empty string, false) when the element never shows
// up. Timeouts are logged and swallowed; test failures surface at the assertion.
package page

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultWait bounds every lookup that does not pass its own timeout.
	DefaultWait = 10 * time.Second
	// DefaultPollInterval is the fixed delay between two lookups of the same locator.
	DefaultPollInterval = 500 * time.Millisecond
)

// Options configures the wait behavior of a page
type Options struct {
	Wait         time.Duration
	PollInterval time.Duration
	Logger       logrus.FieldLogger
}

// Base wraps a Driver with bounded waits. It is the common part of every page object.
type Base struct {
	driver   Driver
	url      string
	wait     time.Duration
	interval time.Duration
	log      logrus.FieldLogger
}

// NewBase binds a driver to a page URL
func NewBase(driver Driver, url string, opts Options) *Base {
	if opts.Wait <= 0 {
		opts.Wait = DefaultWait
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Base{
		driver:   driver,
		url:      url,
		wait:     opts.Wait,
		interval: opts.PollInterval,
		log:      opts.Logger.WithField("page", url),
	}
}

// URL returns the page address
func (b *Base) URL() string {
	return b.url
}

// Open navigates to the page URL. A failed navigation is logged, not returned:
// the lookups that follow will time out and report through their sentinels.
func (b *Base) Open() {
	b.log.Debugf("Opening URL: %s", b.url)
	if err := b.driver.Navigate(b.url); err != nil {
		b.log.WithError(err).Errorf("Failed to open URL %s", b.url)
	}
}

// FindOne polls until an element matching loc is present or timeout elapses.
// A timeout of zero uses the page default. The boolean is false when nothing
// was found; the miss is logged at error level.
func (b *Base) FindOne(loc Locator, timeout time.Duration) (Element, bool) {
	var found Element
	ok := b.poll(timeout, func() bool {
		el, err := b.driver.FindElement(loc)
		if err != nil {
			b.noteLookupError(loc, err)
			return false
		}
		found = el
		return true
	})
	if !ok {
		b.log.Errorf("Timeout: element not found: %s", loc)
		return nil, false
	}
	b.log.Debugf("Element found: %s", loc)
	return found, true
}

// FindAll polls until at least one element matching loc is present and returns all
// of them in document order. It returns an empty, non-nil slice on timeout.
func (b *Base) FindAll(loc Locator, timeout time.Duration) []Element {
	var found []Element
	ok := b.poll(timeout, func() bool {
		els, err := b.driver.FindElements(loc)
		if err != nil {
			b.noteLookupError(loc, err)
			return false
		}
		found = els
		return len(els) > 0
	})
	if !ok {
		b.log.Errorf("Timeout: elements not found: %s", loc)
		return []Element{}
	}
	b.log.Debugf("Elements found: %s (%d)", loc, len(found))
	return found
}

// Click clicks the element when it can be found. Nothing happens otherwise, so
// callers that care must check the resulting state themselves.
func (b *Base) Click(loc Locator) {
	el, ok := b.FindOne(loc, 0)
	if !ok {
		b.log.Debugf("Click skipped, element absent: %s", loc)
		return
	}
	if err := el.Click(); err != nil {
		b.log.WithError(err).Errorf("Click failed: %s", loc)
		return
	}
	b.log.Debugf("Clicked element: %s", loc)
}

// EnterText clears the element and types text into it. No-op when absent.
func (b *Base) EnterText(loc Locator, text string) {
	el, ok := b.FindOne(loc, 0)
	if !ok {
		return
	}
	if err := el.Clear(); err != nil {
		b.log.WithError(err).Errorf("Clear failed: %s", loc)
		return
	}
	if err := el.SendKeys(text); err != nil {
		b.log.WithError(err).Errorf("Typing failed: %s", loc)
		return
	}
	b.log.Debugf("Entered text %q into element: %s", text, loc)
}

// ReadText returns the visible text of the element, or "" when it is absent.
func (b *Base) ReadText(loc Locator) string {
	el, ok := b.FindOne(loc, 0)
	if !ok {
		return ""
	}
	text, err := el.Text()
	if err != nil {
		b.log.WithError(err).Errorf("Reading text failed: %s", loc)
		return ""
	}
	return text
}

// IsVisible polls until the element is present and displayed. Mere presence is
// not enough. False on timeout.
func (b *Base) IsVisible(loc Locator, timeout time.Duration) bool {
	ok := b.poll(timeout, func() bool {
		el, err := b.driver.FindElement(loc)
		if err != nil {
			b.noteLookupError(loc, err)
			return false
		}
		shown, err := el.Displayed()
		return err == nil && shown
	})
	if !ok {
		b.log.Debugf("Element not visible: %s", loc)
	}
	return ok
}

// poll calls probe at the fixed interval until it reports success or the deadline passes.
// probe always runs at least once.
func (b *Base) poll(timeout time.Duration, probe func() bool) bool {
	if timeout <= 0 {
		timeout = b.wait
	}
	deadline := time.Now().Add(timeout)

	for {
		if probe() {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		if remaining < b.interval {
			time.Sleep(remaining)
			continue
		}
		time.Sleep(b.interval)
	}
}

func (b *Base) noteLookupError(loc Locator, err error) {
	if errors.Is(err, ErrNoSuchElement) {
		return
	}
	b.log.WithError(err).Debugf("Lookup failed, retrying: %s", loc)
}
