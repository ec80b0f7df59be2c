package page

import "errors"

// ErrNoSuchElement is returned by a Driver when nothing matches a locator right now.
// Drivers must not wait before returning it; polling belongs to Base.
var ErrNoSuchElement = errors.New("no such element")

// Driver is the browser capability set the page objects rely on
type Driver interface {
	Navigate(url string) error
	FindElement(loc Locator) (Element, error)
	// FindElements returns the current matches in document order, possibly none.
	FindElements(loc Locator) ([]Element, error)
}

// Element is a handle to a single node in the current document
type Element interface {
	Click() error
	Clear() error
	SendKeys(text string) error
	Text() (string, error)
	Displayed() (bool, error)
}
