package browser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXPathLiteral(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"plain", "Apply", `"Apply"`},
		{"empty", "", `""`},
		{"apostrophe", "Don't apply", `"Don't apply"`},
		{"double quote", `Say "hi"`, `'Say "hi"'`},
		{"both quotes", `it's "ok"`, `concat("it's ", '"', "ok", '"', "")`},
		{"leading quote", `"x' `, `concat("", '"', "x' ")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, xpathLiteral(tt.in))
		})
	}
}

func TestLocators(t *testing.T) {
	assert.Equal(t, `xpath://button[contains(normalize-space(.), "Easy Apply")]`, Text("button", "Easy Apply").String())
	assert.Equal(t, `[data-autofill-ref="7"]`, Ref("7").String())
	assert.Equal(t, "form input", CSS("form input").String())
	assert.Equal(t, "xpath://a", Locator{CSS: "a", XPath: "//a"}.String(), "xpath wins when both are set")
}

func TestScript(t *testing.T) {
	tests := []struct {
		name     string
		loc      Locator
		extra    []string
		expected string
	}{
		{"css", CSS("button.apply"), nil, `f("css", "button.apply")`},
		{"xpath", XPath("//a"), nil, `f("xpath", "//a")`},
		{"quoted selector", CSS(`a[href*="apply"]`), nil, `f("css", "a[href*=\"apply\"]")`},
		{"both quotes in value", Ref("3"), []string{`it's "ok"`}, `f("css", "[data-autofill-ref=\"3\"]", "it's \"ok\"")`},
		{"html in value", CSS("select"), []string{"</script>"}, `f("css", "select", "\u003c/script\u003e")`},
		{"newline in value", CSS("textarea"), []string{"a\nb"}, `f("css", "textarea", "a\nb")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, script("f", tt.loc, tt.extra...))
		})
	}
}

func TestJSString(t *testing.T) {
	assert.Equal(t, `""`, jsString(""))
	assert.Equal(t, `"back\\slash"`, jsString(`back\slash`))
	assert.Equal(t, `" "`, jsString(" "))
}

func TestError(t *testing.T) {
	err := &Error{Op: "click", Locator: "button", Cause: ErrNotFound}
	assert.Equal(t, "browser click button: element not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Equal(t, "browser launch: boom", (&Error{Op: "launch", Cause: errors.New("boom")}).Error())
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.True(t, opts.Headless)
	assert.Equal(t, DefaultUserAgent, opts.UserAgent)
	assert.Positive(t, opts.ActionTimeout)
}
