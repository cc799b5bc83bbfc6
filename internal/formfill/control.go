// Package formfill enumerates the controls of an application form, classifies them,
// and fills them from a user profile.
package formfill

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/atlas/autoapply/internal/browser"
)

// Kind is the interaction strategy a control needs.
type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
	KindRadio    Kind = "radio"
	KindFile     Kind = "file"
)

// Option is one <option> of a select control.
type Option struct {
	Value string
	Text  string
}

// FormControl is one fillable control on a page.
type FormControl interface {
	Kind() Kind
	// Attr returns the raw attribute value, or "" when absent.
	Attr(name string) string
	// Label returns the associated label text, whitespace-normalized.
	Label() string
	// Options lists the options of a select; nil for other kinds.
	Options() []Option
	SetText(ctx context.Context, value string) error
	SetChecked(ctx context.Context) error
	SelectOption(ctx context.Context, opt Option) error
}

// skippedInputTypes are input types that never carry user data.
var skippedInputTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
}

// Enumerate parses a page snapshot and returns its fillable controls in document order.
// Controls must carry browser.RefAttr; anything without one is ignored.
func Enumerate(page browser.Page, html string, pacer Pacer) ([]FormControl, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if pacer == nil {
		pacer = NoDelay{}
	}

	var controls []FormControl
	doc.Find("input, textarea, select").Each(func(_ int, s *goquery.Selection) {
		ref, ok := s.Attr(browser.RefAttr)
		if !ok {
			return
		}
		kind, ok := kindOf(s)
		if !ok {
			return
		}
		c := &pageControl{
			page:  page,
			pacer: pacer,
			loc:   browser.Ref(ref),
			kind:  kind,
			attrs: map[string]string{},
			label: labelFor(doc, s),
		}
		for _, a := range s.Nodes[0].Attr {
			c.attrs[strings.ToLower(a.Key)] = a.Val
		}
		if kind == KindSelect {
			s.Find("option").Each(func(_ int, o *goquery.Selection) {
				text := normalizeSpace(o.Text())
				value, ok := o.Attr("value")
				if !ok {
					value = text
				}
				c.options = append(c.options, Option{Value: value, Text: text})
			})
		}
		controls = append(controls, c)
	})
	return controls, nil
}

func kindOf(s *goquery.Selection) (Kind, bool) {
	switch goquery.NodeName(s) {
	case "textarea":
		return KindTextarea, true
	case "select":
		return KindSelect, true
	}
	typ := strings.ToLower(strings.TrimSpace(s.AttrOr("type", "text")))
	if skippedInputTypes[typ] {
		return "", false
	}
	switch typ {
	case "checkbox":
		return KindCheckbox, true
	case "radio":
		return KindRadio, true
	case "file":
		return KindFile, true
	default:
		return KindText, true
	}
}

// labelFor finds label text from label[for=id], then a wrapping label, then aria-label.
func labelFor(doc *goquery.Document, s *goquery.Selection) string {
	if id := s.AttrOr("id", ""); id != "" {
		var text string
		doc.Find("label").EachWithBreak(func(_ int, l *goquery.Selection) bool {
			if l.AttrOr("for", "") == id {
				text = normalizeSpace(l.Text())
				return text == ""
			}
			return true
		})
		if text != "" {
			return text
		}
	}
	if l := s.Closest("label"); l.Length() > 0 {
		if text := normalizeSpace(l.Text()); text != "" {
			return text
		}
	}
	return normalizeSpace(s.AttrOr("aria-label", ""))
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// pageControl is a FormControl backed by a browser page and a snapshot ref.
type pageControl struct {
	page    browser.Page
	pacer   Pacer
	loc     browser.Locator
	kind    Kind
	attrs   map[string]string
	label   string
	options []Option
}

func (c *pageControl) Kind() Kind              { return c.kind }
func (c *pageControl) Attr(name string) string { return c.attrs[strings.ToLower(name)] }
func (c *pageControl) Label() string           { return c.label }
func (c *pageControl) Options() []Option       { return c.options }
func (c *pageControl) String() string          { return c.loc.String() }

// SetText clears the control, then types value one rune at a time.
func (c *pageControl) SetText(ctx context.Context, value string) error {
	if err := c.page.Clear(ctx, c.loc); err != nil {
		return err
	}
	for _, r := range value {
		if err := c.page.SendKeys(ctx, c.loc, string(r)); err != nil {
			return err
		}
		if err := c.pacer.Keystroke(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *pageControl) SetChecked(ctx context.Context) error {
	return c.page.SetChecked(ctx, c.loc)
}

func (c *pageControl) SelectOption(ctx context.Context, opt Option) error {
	return c.page.SelectOption(ctx, c.loc, opt.Value)
}
