package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/webqa/internal/page"
)

func TestTranslate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		loc     page.Locator
		query   string
		isXPath bool
	}{
		{page.ID("user-name"), `[id="user-name"]`, false},
		{page.Name("q"), `[name="q"]`, false},
		{page.Class("inventory_item"), `[class~="inventory_item"]`, false},
		{page.CSS(".inventory_item button"), `.inventory_item button`, false},
		{page.Tag("button"), `button`, false},
		{page.XPath(`//div[@id="x"]`), `//div[@id="x"]`, true},
		{page.LinkText("About"), `//a[normalize-space(.)="About"]`, true},
		{page.PartialLinkText("Ab"), `//a[contains(normalize-space(.), "Ab")]`, true},
		{page.ID(`we"ird`), `[id="we\"ird"]`, false},
	}
	for _, tc := range tests {
		query, isXPath, err := translate(tc.loc)
		require.NoError(t, err, tc.loc.String())
		assert.Equal(t, tc.query, query, tc.loc.String())
		assert.Equal(t, tc.isXPath, isXPath, tc.loc.String())
	}

	_, _, err := translate(page.Locator{By: page.Strategy(77), Value: "x"})
	assert.Error(t, err)
}

func TestXPathLiteral(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"plain"`, xpathLiteral("plain"))
	assert.Equal(t, `'say "hi"'`, xpathLiteral(`say "hi"`))
	assert.Equal(t, `concat("it's ", '"', "quoted", '"', "")`, xpathLiteral(`it's "quoted"`))
}

func TestPageMapSummary(t *testing.T) {
	t.Parallel()

	m := &PageMap{
		URL:   "https://www.saucedemo.com/",
		Title: "Swag Labs",
		Elements: []Element{
			{Selector: "#user-name", Type: "text"},
			{Selector: "#login-button", Type: "button", Text: "Login"},
		},
	}
	assert.Equal(t, []string{
		"https://www.saucedemo.com/ (Swag Labs)",
		"  text #user-name",
		`  button #login-button "Login"`,
	}, m.Summary())
}
