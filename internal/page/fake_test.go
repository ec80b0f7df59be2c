package page

import (
	"errors"
	"sync"
	"time"
)

type fakeElement struct {
	mu      sync.Mutex
	text    string
	hidden  bool
	clicks  int
	typed   []string
	cleared int
	onClick func()
	failing error
}

func (e *fakeElement) Click() error {
	e.mu.Lock()
	if e.failing != nil {
		e.mu.Unlock()
		return e.failing
	}
	e.clicks++
	cb := e.onClick
	e.mu.Unlock()
	if cb != nil {
		cb()
	}
	return nil
}

func (e *fakeElement) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cleared++
	e.text = ""
	return nil
}

func (e *fakeElement) SendKeys(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.typed = append(e.typed, text)
	e.text += text
	return nil
}

func (e *fakeElement) Text() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text, nil
}

func (e *fakeElement) Displayed() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.hidden, nil
}

// fakeDriver serves elements from a map. Elements registered with appearAfter only
// become findable once that much time has passed since registration.
type fakeDriver struct {
	mu        sync.Mutex
	elements  map[Locator][]*fakeElement
	visibleAt map[Locator]time.Time
	navigated []string
	navErr    error
	lookups   int
	lookupErr error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		elements:  map[Locator][]*fakeElement{},
		visibleAt: map[Locator]time.Time{},
	}
}

func (d *fakeDriver) add(loc Locator, els ...*fakeElement) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elements[loc] = append(d.elements[loc], els...)
}

func (d *fakeDriver) addLater(loc Locator, after time.Duration, els ...*fakeElement) {
	d.add(loc, els...)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visibleAt[loc] = time.Now().Add(after)
}

func (d *fakeDriver) remove(loc Locator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.elements, loc)
}

func (d *fakeDriver) Navigate(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.navigated = append(d.navigated, url)
	return d.navErr
}

func (d *fakeDriver) current(loc Locator) []*fakeElement {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++
	if at, ok := d.visibleAt[loc]; ok && time.Now().Before(at) {
		return nil
	}
	return d.elements[loc]
}

func (d *fakeDriver) FindElement(loc Locator) (Element, error) {
	if d.lookupErr != nil {
		return nil, d.lookupErr
	}
	els := d.current(loc)
	if len(els) == 0 {
		return nil, ErrNoSuchElement
	}
	return els[0], nil
}

func (d *fakeDriver) FindElements(loc Locator) ([]Element, error) {
	if d.lookupErr != nil {
		return nil, d.lookupErr
	}
	els := d.current(loc)
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

func (d *fakeDriver) lookupCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lookups
}

var errBrokenSession = errors.New("session deleted")
