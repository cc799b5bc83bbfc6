// Package browser abstracts the headless browser the auto-apply engine drives.
// The production implementation is chromedp; tests use the browsertest fakes.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RefAttr is the attribute Snapshot stamps on every form control so later
// interactions can address the exact control that was classified.
const RefAttr = "data-autofill-ref"

// Locator addresses an element by CSS selector or XPath expression.
type Locator struct {
	CSS   string
	XPath string
}

// CSS returns a CSS locator.
func CSS(sel string) Locator {
	return Locator{CSS: sel}
}

// XPath returns an XPath locator.
func XPath(expr string) Locator {
	return Locator{XPath: expr}
}

// Text locates the first <tag> whose normalized text contains text.
func Text(tag, text string) Locator {
	return XPath(fmt.Sprintf(`//%s[contains(normalize-space(.), %s)]`, tag, xpathLiteral(text)))
}

// Ref locates a control previously stamped by Snapshot.
func Ref(ref string) Locator {
	return CSS(fmt.Sprintf(`[%s="%s"]`, RefAttr, ref))
}

func (l Locator) String() string {
	if l.XPath != "" {
		return "xpath:" + l.XPath
	}
	return l.CSS
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, `'`) {
		return `'` + s + `'`
	}
	parts := strings.Split(s, `"`)
	return `concat("` + strings.Join(parts, `", '"', "`) + `")`
}

// Page is one browser tab. A page is the per-application unit of work: it is opened
// for a single job and closed when that job reaches a terminal state.
type Page interface {
	// Navigate loads url and waits for the document body.
	Navigate(ctx context.Context, url string) error
	// WaitSettled waits up to timeout for the page to finish loading.
	WaitSettled(ctx context.Context, timeout time.Duration) error
	// Snapshot stamps RefAttr on every input, textarea and select, then returns the document HTML.
	Snapshot(ctx context.Context) (string, error)
	// Exists reports whether a visible element matches loc.
	Exists(ctx context.Context, loc Locator) (bool, error)
	// Click clicks the first visible element matching loc.
	Click(ctx context.Context, loc Locator) error
	// Clear empties a text control.
	Clear(ctx context.Context, loc Locator) error
	// SendKeys types keys into a control.
	SendKeys(ctx context.Context, loc Locator, keys string) error
	// SetChecked checks a checkbox or radio if it is not already checked.
	SetChecked(ctx context.Context, loc Locator) error
	// SelectOption sets a select control to the option with the given value.
	SelectOption(ctx context.Context, loc Locator, value string) error
	// Screenshot captures the full page as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	// Close releases the tab. It is safe to call more than once.
	Close() error
}

// Session is a running browser. Cookies and storage persist across its pages.
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Launcher starts browser sessions.
type Launcher interface {
	Launch(ctx context.Context, opts Options) (Session, error)
}

// Options configures a browser session.
type Options struct {
	Headless       bool
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	// ActionTimeout bounds each individual interaction.
	ActionTimeout time.Duration
	// ExecPath overrides the Chrome binary; empty uses the chromedp lookup.
	ExecPath string
}

// DefaultUserAgent is a desktop Chrome user agent.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultOptions returns sensible defaults for a session.
func DefaultOptions() Options {
	return Options{
		Headless:       true,
		UserAgent:      DefaultUserAgent,
		ViewportWidth:  1280,
		ViewportHeight: 800,
		ActionTimeout:  30 * time.Second,
	}
}
