package browser

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/v0xg/webqa/internal/page"
)

// driver adapts a rod page to page.Driver. Lookups never wait: page.Base owns the polling.
type driver struct {
	page          *rod.Page
	actionTimeout time.Duration
}

func (d *driver) Navigate(url string) error {
	if err := d.page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := d.page.WaitLoad(); err != nil {
		return fmt.Errorf("wait for %s to load: %w", url, err)
	}
	return nil
}

func (d *driver) FindElement(loc page.Locator) (page.Element, error) {
	query, isXPath, err := translate(loc)
	if err != nil {
		return nil, err
	}

	var (
		has bool
		el  *rod.Element
	)
	if isXPath {
		has, el, err = d.page.HasX(query)
	} else {
		has, el, err = d.page.Has(query)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", loc, err)
	}
	if !has {
		return nil, page.ErrNoSuchElement
	}
	return &element{el: el, timeout: d.actionTimeout}, nil
}

func (d *driver) FindElements(loc page.Locator) ([]page.Element, error) {
	query, isXPath, err := translate(loc)
	if err != nil {
		return nil, err
	}

	var els rod.Elements
	if isXPath {
		els, err = d.page.ElementsX(query)
	} else {
		els, err = d.page.Elements(query)
	}
	if err != nil {
		return nil, fmt.Errorf("find all %s: %w", loc, err)
	}

	out := make([]page.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el, timeout: d.actionTimeout})
	}
	return out, nil
}

// element bounds every action so a covered or detached node cannot hang the caller
type element struct {
	el      *rod.Element
	timeout time.Duration
}

func (e *element) bounded() *rod.Element {
	return e.el.Timeout(e.timeout)
}

func (e *element) Click() error {
	el := e.bounded()
	defer el.CancelTimeout()
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (e *element) Clear() error {
	el := e.bounded()
	defer el.CancelTimeout()
	if err := el.SelectAllText(); err != nil {
		return err
	}
	// typing over a full selection replaces it
	return el.Input("")
}

func (e *element) SendKeys(text string) error {
	el := e.bounded()
	defer el.CancelTimeout()
	return el.Input(text)
}

func (e *element) Text() (string, error) {
	el := e.bounded()
	defer el.CancelTimeout()
	return el.Text()
}

func (e *element) Displayed() (bool, error) {
	el := e.bounded()
	defer el.CancelTimeout()
	return el.Visible()
}

// translate turns a locator into a CSS selector or, for the text based
// strategies, an XPath expression.
func translate(loc page.Locator) (query string, isXPath bool, err error) {
	v := loc.Value
	switch loc.By {
	case page.ByID:
		return fmt.Sprintf(`[id="%s"]`, escapeSelector(v)), false, nil
	case page.ByName:
		return fmt.Sprintf(`[name="%s"]`, escapeSelector(v)), false, nil
	case page.ByClassName:
		return fmt.Sprintf(`[class~="%s"]`, escapeSelector(v)), false, nil
	case page.ByCSS, page.ByTagName:
		return v, false, nil
	case page.ByXPath:
		return v, true, nil
	case page.ByLinkText:
		return fmt.Sprintf(`//a[normalize-space(.)=%s]`, xpathLiteral(v)), true, nil
	case page.ByPartialLinkText:
		return fmt.Sprintf(`//a[contains(normalize-space(.), %s)]`, xpathLiteral(v)), true, nil
	default:
		return "", false, fmt.Errorf("unsupported locator strategy %s", loc.By)
	}
}

func escapeSelector(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = `"` + p + `"`
	}
	return "concat(" + strings.Join(quoted, `, '"', `) + ")"
}
