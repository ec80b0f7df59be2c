package page

import (
	"fmt"
	"sort"
	"strings"
)

// Strategy tells the driver how to interpret a locator value
type Strategy int

const (
	ByID Strategy = iota + 1
	ByName
	ByClassName
	ByCSS
	ByTagName
	ByXPath
	ByLinkText
	ByPartialLinkText
)

var strategyNames = map[Strategy]string{
	ByID:              "id",
	ByName:            "name",
	ByClassName:       "class name",
	ByCSS:             "css selector",
	ByTagName:         "tag name",
	ByXPath:           "xpath",
	ByLinkText:        "link text",
	ByPartialLinkText: "partial link text",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Valid reports whether s is one of the known strategies
func (s Strategy) Valid() bool {
	_, ok := strategyNames[s]
	return ok
}

// ParseStrategy maps a strategy name (as written in config files) back to a Strategy.
// Dashes and underscores are accepted in place of spaces, so "class_name" works too.
func ParseStrategy(name string) (Strategy, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	switch norm {
	case "css":
		return ByCSS, nil
	case "class":
		return ByClassName, nil
	case "tag":
		return ByTagName, nil
	}
	for s, n := range strategyNames {
		if n == norm {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown locator strategy %q", name)
}

// Locator identifies an element by strategy and selector
type Locator struct {
	By    Strategy
	Value string
}

// ID builds a locator matching the element id attribute.
func ID(v string) Locator { return Locator{By: ByID, Value: v} }

// Name builds a locator matching the name attribute.
func Name(v string) Locator { return Locator{By: ByName, Value: v} }

// Class builds a locator matching a single class name.
func Class(v string) Locator { return Locator{By: ByClassName, Value: v} }

// CSS builds a locator from a CSS selector.
func CSS(v string) Locator { return Locator{By: ByCSS, Value: v} }

// Tag builds a locator matching a tag name.
func Tag(v string) Locator { return Locator{By: ByTagName, Value: v} }

// XPath builds a locator from an XPath expression.
func XPath(v string) Locator { return Locator{By: ByXPath, Value: v} }

// LinkText builds a locator matching anchors by their exact visible text.
func LinkText(v string) Locator { return Locator{By: ByLinkText, Value: v} }

// PartialLinkText builds a locator matching anchors whose text contains v.
func PartialLinkText(v string) Locator { return Locator{By: ByPartialLinkText, Value: v} }

func (l Locator) String() string {
	return l.By.String() + "=" + l.Value
}

// LocatorSet maps symbolic element names to locators
type LocatorSet map[string]Locator

// Merge returns a new set holding every default entry, with overrides replacing
// defaults key by key. Neither input is modified.
func Merge(defaults, overrides LocatorSet) LocatorSet {
	merged := make(LocatorSet, len(defaults)+len(overrides))
	for name, loc := range defaults {
		merged[name] = loc
	}
	for name, loc := range overrides {
		merged[name] = loc
	}
	return merged
}

// Validate checks that every required name is present and that every entry is usable
func (s LocatorSet) Validate(required ...string) error {
	var problems []string
	for _, name := range required {
		if _, ok := s[name]; !ok {
			problems = append(problems, fmt.Sprintf("missing locator %q", name))
		}
	}
	for name, loc := range s {
		if !loc.By.Valid() {
			problems = append(problems, fmt.Sprintf("locator %q has unknown strategy %d", name, int(loc.By)))
		}
		if strings.TrimSpace(loc.Value) == "" {
			problems = append(problems, fmt.Sprintf("locator %q has an empty selector", name))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("invalid locator set: %s", strings.Join(problems, "; "))
}

// MustGet returns the named locator. Asking for a name the set does not hold is a
// programming error and panics.
func (s LocatorSet) MustGet(name string) Locator {
	loc, ok := s[name]
	if !ok {
		panic(fmt.Sprintf("page: no locator named %q", name))
	}
	return loc
}
