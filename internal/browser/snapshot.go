package browser

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

// PageMap summarizes the interactive state of the current page. It is logged
// when a check fails so locator mismatches can be diagnosed from the log alone.
type PageMap struct {
	URL      string    `json:"url"`
	Title    string    `json:"title"`
	Elements []Element `json:"elements"`
}

// Element represents an interactive element on the page
type Element struct {
	Selector string `json:"selector"`
	Type     string `json:"type"` // button, input type, link, select
	Text     string `json:"text,omitempty"`
}

// Snapshot extracts a PageMap from the current page state
func (b *Browser) Snapshot() (*PageMap, error) {
	p := b.page.Timeout(5 * time.Second)
	defer p.CancelTimeout()

	info, err := p.Info()
	if err != nil {
		return nil, fmt.Errorf("read page info: %w", err)
	}

	elements, err := extractElements(p)
	if err != nil {
		return nil, err
	}

	return &PageMap{
		URL:      info.URL,
		Title:    info.Title,
		Elements: elements,
	}, nil
}

// extractElements finds visible buttons, inputs, links and selects
func extractElements(p *rod.Page) ([]Element, error) {
	res, err := p.Eval(`() => {
		const elements = [];
		const seen = new Set();

		function getSelector(el) {
			if (el.id) return '#' + el.id;
			if (el.name) return '[name="' + el.name + '"]';
			if (el.className && typeof el.className === 'string') {
				const classes = el.className.trim().split(/\s+/).filter(c => /^[A-Za-z_][\w-]*$/.test(c)).slice(0, 2);
				if (classes.length > 0) return el.tagName.toLowerCase() + '.' + classes.join('.');
			}
			return el.tagName.toLowerCase();
		}

		function push(el, type, text) {
			if (!el.offsetParent) return;
			const selector = getSelector(el);
			if (seen.has(selector)) return;
			seen.add(selector);
			elements.push({ selector: selector, type: type, text: (text || '').trim().slice(0, 50) });
		}

		document.querySelectorAll('button, [role="button"], input[type="submit"], input[type="button"]')
			.forEach(el => push(el, 'button', el.textContent || el.value));
		document.querySelectorAll('input:not([type="hidden"]):not([type="submit"]):not([type="button"]), textarea')
			.forEach(el => push(el, el.type || 'text', el.placeholder));
		document.querySelectorAll('a[href]').forEach(el => push(el, 'link', el.textContent));
		document.querySelectorAll('select').forEach(el => push(el, 'select', ''));

		return elements;
	}`)
	if err != nil {
		return nil, fmt.Errorf("extract elements: %w", err)
	}

	var elements []Element
	for _, v := range res.Value.Arr() {
		elements = append(elements, Element{
			Selector: v.Get("selector").String(),
			Type:     v.Get("type").String(),
			Text:     v.Get("text").String(),
		})
	}
	return elements, nil
}

// Summary renders the map as one line per element for log output
func (m *PageMap) Summary() []string {
	lines := make([]string, 0, len(m.Elements)+1)
	lines = append(lines, fmt.Sprintf("%s (%s)", m.URL, m.Title))
	for _, el := range m.Elements {
		if el.Text != "" {
			lines = append(lines, fmt.Sprintf("  %s %s %q", el.Type, el.Selector, el.Text))
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s %s", el.Type, el.Selector))
	}
	return lines
}
