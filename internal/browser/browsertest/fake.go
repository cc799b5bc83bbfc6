// Package browsertest provides in-memory browser fakes for testing code that drives a browser.Page.
package browsertest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/atlas/autoapply/internal/browser"
)

// Launcher is a fake browser.Launcher serving pages from a route table.
type Launcher struct {
	mu sync.Mutex

	// Routes maps a URL to the HTML served after navigation.
	Routes map[string]string
	// Latency delays navigation to a URL.
	Latency map[string]time.Duration
	// OnClick mutates a page when a locator (by Locator.String) is clicked.
	OnClick map[string]func(p *Page)
	// PanicOn makes navigation to a URL panic.
	PanicOn map[string]bool
	// FailOn makes interactions with a locator fail.
	FailOn map[string]error
	// LaunchErr is returned by Launch when set.
	LaunchErr error
	// ScreenshotErr is returned by Screenshot when set.
	ScreenshotErr error

	Launches int
	Sessions []*Session
	Pages    []*Page
	// MaxOpen is the largest number of pages ever open at once.
	MaxOpen int
}

// NewLauncher returns a launcher serving routes.
func NewLauncher(routes map[string]string) *Launcher {
	return &Launcher{
		Routes:  routes,
		Latency: map[string]time.Duration{},
		OnClick: map[string]func(p *Page){},
		PanicOn: map[string]bool{},
		FailOn:  map[string]error{},
	}
}

// Launch implements browser.Launcher.
func (l *Launcher) Launch(_ context.Context, _ browser.Options) (browser.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.LaunchErr != nil {
		return nil, l.LaunchErr
	}
	l.Launches++
	s := &Session{launcher: l}
	l.Sessions = append(l.Sessions, s)
	return s, nil
}

// OpenPages counts pages that were opened and not closed.
func (l *Launcher) OpenPages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.openPages()
}

func (l *Launcher) openPages() int {
	n := 0
	for _, p := range l.Pages {
		if !p.Closed {
			n++
		}
	}
	return n
}

// Session is a fake browser.Session.
type Session struct {
	launcher *Launcher
	Closed   bool
}

// NewPage implements browser.Session.
func (s *Session) NewPage(_ context.Context) (browser.Page, error) {
	l := s.launcher
	l.mu.Lock()
	defer l.mu.Unlock()
	if s.Closed {
		return nil, fmt.Errorf("session closed")
	}
	p := NewPage("")
	p.launcher = l
	l.Pages = append(l.Pages, p)
	if n := l.openPages(); n > l.MaxOpen {
		l.MaxOpen = n
	}
	return p, nil
}

// Close implements browser.Session.
func (s *Session) Close() error {
	s.launcher.mu.Lock()
	defer s.launcher.mu.Unlock()
	s.Closed = true
	return nil
}

// Page is a fake browser.Page backed by an HTML document.
// Interactions are recorded rather than rendered.
type Page struct {
	launcher *Launcher

	HTML      string
	URL       string
	Navigated []string
	Clicked   []string
	Typed     map[string]string
	Cleared   []string
	Checked   []string
	Selected  map[string]string
	Settles   int
	Closed    bool

	// SettleErr is returned by WaitSettled when set.
	SettleErr error
}

// NewPage returns a standalone page showing html.
func NewPage(html string) *Page {
	return &Page{
		HTML:     html,
		Typed:    map[string]string{},
		Selected: map[string]string{},
	}
}

func (p *Page) fail(loc browser.Locator) error {
	if p.launcher == nil {
		return nil
	}
	return p.launcher.FailOn[loc.String()]
}

// Navigate implements browser.Page.
func (p *Page) Navigate(ctx context.Context, url string) error {
	p.Navigated = append(p.Navigated, url)
	p.URL = url
	if p.launcher == nil {
		return nil
	}
	if p.launcher.PanicOn[url] {
		panic("renderer crashed: " + url)
	}
	if d := p.launcher.Latency[url]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	html, ok := p.launcher.Routes[url]
	if !ok {
		return &browser.Error{Op: "navigate", Locator: url, Cause: fmt.Errorf("net::ERR_NAME_NOT_RESOLVED")}
	}
	p.HTML = html
	return nil
}

// WaitSettled implements browser.Page.
func (p *Page) WaitSettled(_ context.Context, _ time.Duration) error {
	p.Settles++
	return p.SettleErr
}

// Snapshot implements browser.Page. It stamps refs like the real browser does.
func (p *Page) Snapshot(_ context.Context) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.HTML))
	if err != nil {
		return "", err
	}
	doc.Find("input, textarea, select").Each(func(i int, s *goquery.Selection) {
		s.SetAttr(browser.RefAttr, strconv.Itoa(i))
	})
	html, err := doc.Html()
	if err != nil {
		return "", err
	}
	p.HTML = html
	return html, nil
}

// Exists implements browser.Page. CSS locators are evaluated against the document;
// XPath locators only match text locators whose tag and text appear in the document.
// Elements hidden by the hidden attribute, an inline display:none or visibility:hidden
// (on themselves or an ancestor), or type="hidden" never match.
func (p *Page) Exists(_ context.Context, loc browser.Locator) (bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.HTML))
	if err != nil {
		return false, err
	}
	if loc.XPath == "" {
		return doc.Find(loc.CSS).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return visible(s)
		}).Length() > 0, nil
	}
	tag, text, ok := parseTextLocator(loc.XPath)
	if !ok {
		return false, nil
	}
	found := false
	doc.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if visible(s) && strings.Contains(strings.Join(strings.Fields(s.Text()), " "), text) {
			found = true
			return false
		}
		return true
	})
	return found, nil
}

func visible(s *goquery.Selection) bool {
	if t, _ := s.Attr("type"); goquery.NodeName(s) == "input" && strings.EqualFold(t, "hidden") {
		return false
	}
	hidden := false
	s.AddSelection(s.Parents()).EachWithBreak(func(_ int, n *goquery.Selection) bool {
		if _, ok := n.Attr("hidden"); ok {
			hidden = true
			return false
		}
		style := strings.ToLower(strings.ReplaceAll(n.AttrOr("style", ""), " ", ""))
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			hidden = true
			return false
		}
		return true
	})
	return !hidden
}

// parseTextLocator reverses browser.Text for double-quoted literals.
func parseTextLocator(xpath string) (tag, text string, ok bool) {
	const marker = `[contains(normalize-space(.), "`
	if !strings.HasPrefix(xpath, "//") {
		return "", "", false
	}
	i := strings.Index(xpath, marker)
	if i < 0 || !strings.HasSuffix(xpath, `")]`) {
		return "", "", false
	}
	return xpath[2:i], xpath[i+len(marker) : len(xpath)-3], true
}

// Click implements browser.Page.
func (p *Page) Click(ctx context.Context, loc browser.Locator) error {
	if err := p.fail(loc); err != nil {
		return err
	}
	ok, err := p.Exists(ctx, loc)
	if err != nil {
		return err
	}
	if !ok {
		return &browser.Error{Op: "click", Locator: loc.String(), Cause: browser.ErrNotFound}
	}
	p.Clicked = append(p.Clicked, loc.String())
	if p.launcher != nil {
		if fn := p.launcher.OnClick[loc.String()]; fn != nil {
			fn(p)
		}
	}
	return nil
}

// Clear implements browser.Page.
func (p *Page) Clear(_ context.Context, loc browser.Locator) error {
	if err := p.fail(loc); err != nil {
		return err
	}
	p.Cleared = append(p.Cleared, loc.String())
	p.Typed[loc.String()] = ""
	return nil
}

// SendKeys implements browser.Page.
func (p *Page) SendKeys(_ context.Context, loc browser.Locator, keys string) error {
	if err := p.fail(loc); err != nil {
		return err
	}
	p.Typed[loc.String()] += keys
	return nil
}

// SetChecked implements browser.Page.
func (p *Page) SetChecked(_ context.Context, loc browser.Locator) error {
	if err := p.fail(loc); err != nil {
		return err
	}
	p.Checked = append(p.Checked, loc.String())
	return nil
}

// SelectOption implements browser.Page.
func (p *Page) SelectOption(_ context.Context, loc browser.Locator, value string) error {
	if err := p.fail(loc); err != nil {
		return err
	}
	p.Selected[loc.String()] = value
	return nil
}

// Screenshot implements browser.Page.
func (p *Page) Screenshot(_ context.Context) ([]byte, error) {
	if p.launcher != nil && p.launcher.ScreenshotErr != nil {
		return nil, p.launcher.ScreenshotErr
	}
	return []byte("\x89PNG fake"), nil
}

// Close implements browser.Page.
func (p *Page) Close() error {
	if p.launcher != nil {
		p.launcher.mu.Lock()
		defer p.launcher.mu.Unlock()
	}
	p.Closed = true
	return nil
}

// TypedInto returns what was typed into the control with the given snapshot ref.
func (p *Page) TypedInto(ref int) string {
	return p.Typed[browser.Ref(strconv.Itoa(ref)).String()]
}

// SelectedIn returns the option value chosen in the control with the given snapshot ref.
func (p *Page) SelectedIn(ref int) (string, bool) {
	v, ok := p.Selected[browser.Ref(strconv.Itoa(ref)).String()]
	return v, ok
}

// IsChecked reports whether the control with the given snapshot ref was checked.
func (p *Page) IsChecked(ref int) bool {
	want := browser.Ref(strconv.Itoa(ref)).String()
	for _, c := range p.Checked {
		if c == want {
			return true
		}
	}
	return false
}
