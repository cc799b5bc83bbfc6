package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// settleQuietPeriod is waited after the document reports complete, giving
// client-side frameworks a moment to hydrate.
const settleQuietPeriod = 500 * time.Millisecond

// ChromeLauncher starts headless Chrome sessions through chromedp.
// Requires Chrome/Chromium to be installed on the system.
type ChromeLauncher struct {
	Logger *zap.Logger
}

// Launch starts a browser process. The session outlives ctx; ctx only bounds startup.
func (l ChromeLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = DefaultOptions().ActionTimeout
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(opts.ViewportWidth, opts.ViewportHeight))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithErrorf(logger.Sugar().Debugf))

	stop := context.AfterFunc(ctx, browserCancel)
	err := chromedp.Run(browserCtx)
	stop()
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, &Error{Op: "launch", Cause: err}
	}

	logger.Info("browser launched", zap.Bool("headless", opts.Headless))

	return &chromeSession{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		opts:          opts,
		logger:        logger,
	}, nil
}

type chromeSession struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	opts          Options
	logger        *zap.Logger
	closeOnce     sync.Once
}

// NewPage opens a new tab in the shared browser.
func (s *chromeSession) NewPage(ctx context.Context) (Page, error) {
	tabCtx, cancel := chromedp.NewContext(s.browserCtx)
	p := &chromePage{ctx: tabCtx, cancel: cancel, timeout: s.opts.ActionTimeout}

	actions := []chromedp.Action{}
	if s.opts.ViewportWidth > 0 && s.opts.ViewportHeight > 0 {
		actions = append(actions, chromedp.EmulateViewport(int64(s.opts.ViewportWidth), int64(s.opts.ViewportHeight)))
	}
	if err := p.run(ctx, p.timeout, actions...); err != nil {
		cancel()
		return nil, &Error{Op: "new page", Cause: err}
	}
	return p, nil
}

// Close terminates the browser process.
func (s *chromeSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = chromedp.Cancel(s.browserCtx)
		s.browserCancel()
		s.allocCancel()
		s.logger.Info("browser closed")
	})
	return err
}

type chromePage struct {
	ctx       context.Context
	cancel    context.CancelFunc
	timeout   time.Duration
	clicks    atomic.Uint64
	closeOnce sync.Once
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx.
func (p *chromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func queryOption(loc Locator) (string, chromedp.QueryOption) {
	if loc.XPath != "" {
		return loc.XPath, chromedp.BySearch
	}
	return loc.CSS, chromedp.ByQuery
}

// script renders a JS function call with JSON-encoded locator arguments.
func script(fn string, loc Locator, extra ...string) string {
	kind, sel := "css", loc.CSS
	if loc.XPath != "" {
		kind, sel = "xpath", loc.XPath
	}
	args := []string{jsString(kind), jsString(sel)}
	for _, e := range extra {
		args = append(args, jsString(e))
	}
	call := fn + "("
	for i, a := range args {
		if i > 0 {
			call += ", "
		}
		call += a
	}
	return call + ")"
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// clickAttr marks the element Click resolved, so the click lands on that exact node.
const clickAttr = "data-autofill-click"

const findJS = `function __findAll(kind, sel) {
  if (kind === "xpath") {
    var snap = document.evaluate(sel, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
    var out = [];
    for (var i = 0; i < snap.snapshotLength; i++) out.push(snap.snapshotItem(i));
    return out;
  }
  return Array.prototype.slice.call(document.querySelectorAll(sel));
}
function __find(kind, sel) {
  return __findAll(kind, sel)[0] || null;
}
function __firstVisible(kind, sel) {
  var all = __findAll(kind, sel);
  for (var i = 0; i < all.length; i++) {
    var el = all[i];
    var style = window.getComputedStyle(el);
    if (style.visibility === "hidden" || style.display === "none") continue;
    if (el.offsetWidth || el.offsetHeight || el.getClientRects().length) return el;
  }
  return null;
}`

var visibleJS = `(function(kind, sel) {
  ` + findJS + `
  return !!__firstVisible(kind, sel);
})`

var markJS = `(function(kind, sel, token) {
  ` + findJS + `
  document.querySelectorAll("[` + clickAttr + `]").forEach(function(el) {
    el.removeAttribute("` + clickAttr + `");
  });
  var el = __firstVisible(kind, sel);
  if (!el) return false;
  el.setAttribute("` + clickAttr + `", token);
  return true;
})`

var checkJS = `(function(kind, sel) {
  ` + findJS + `
  var el = __find(kind, sel);
  if (!el) throw new Error("element not found");
  if (!el.checked) el.click();
  return !!el.checked;
})`

var selectJS = `(function(kind, sel, value) {
  ` + findJS + `
  var el = __find(kind, sel);
  if (!el) throw new Error("element not found");
  el.value = value;
  el.dispatchEvent(new Event("input", { bubbles: true }));
  el.dispatchEvent(new Event("change", { bubbles: true }));
  return el.value;
})`

var snapshotJS = fmt.Sprintf(`(function() {
  var i = 0;
  document.querySelectorAll("input, textarea, select").forEach(function(el) {
    el.setAttribute(%q, String(i++));
  });
  return document.documentElement.outerHTML;
})()`, RefAttr)

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	err := p.run(ctx, p.timeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return &Error{Op: "navigate", Locator: url, Cause: err}
	}
	return nil
}

func (p *chromePage) WaitSettled(ctx context.Context, timeout time.Duration) error {
	var ready bool
	err := p.run(ctx, timeout+settleQuietPeriod+time.Second,
		chromedp.Poll(`document.readyState === "complete"`, &ready, chromedp.WithPollingTimeout(timeout)),
		chromedp.Sleep(settleQuietPeriod),
	)
	if err != nil {
		return &Error{Op: "wait settled", Cause: err}
	}
	return nil
}

func (p *chromePage) Snapshot(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, p.timeout, chromedp.Evaluate(snapshotJS, &html)); err != nil {
		return "", &Error{Op: "snapshot", Cause: err}
	}
	return html, nil
}

func (p *chromePage) Exists(ctx context.Context, loc Locator) (bool, error) {
	var visible bool
	if err := p.run(ctx, p.timeout, chromedp.Evaluate(script(visibleJS, loc), &visible)); err != nil {
		return false, &Error{Op: "exists", Locator: loc.String(), Cause: err}
	}
	return visible, nil
}

// Click clicks the first visible element matching loc.
func (p *chromePage) Click(ctx context.Context, loc Locator) error {
	token := strconv.FormatUint(p.clicks.Add(1), 10)
	var marked bool
	if err := p.run(ctx, p.timeout, chromedp.Evaluate(script(markJS, loc, token), &marked)); err != nil {
		return &Error{Op: "click", Locator: loc.String(), Cause: err}
	}
	if !marked {
		return &Error{Op: "click", Locator: loc.String(), Cause: ErrNotFound}
	}
	target := fmt.Sprintf(`[%s="%s"]`, clickAttr, token)
	if err := p.run(ctx, p.timeout, chromedp.Click(target, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return &Error{Op: "click", Locator: loc.String(), Cause: err}
	}
	return nil
}

func (p *chromePage) Clear(ctx context.Context, loc Locator) error {
	sel, by := queryOption(loc)
	if err := p.run(ctx, p.timeout, chromedp.Clear(sel, by)); err != nil {
		return &Error{Op: "clear", Locator: loc.String(), Cause: err}
	}
	return nil
}

func (p *chromePage) SendKeys(ctx context.Context, loc Locator, keys string) error {
	sel, by := queryOption(loc)
	if err := p.run(ctx, p.timeout, chromedp.SendKeys(sel, keys, by)); err != nil {
		return &Error{Op: "type", Locator: loc.String(), Cause: err}
	}
	return nil
}

func (p *chromePage) SetChecked(ctx context.Context, loc Locator) error {
	var checked bool
	if err := p.run(ctx, p.timeout, chromedp.Evaluate(script(checkJS, loc), &checked)); err != nil {
		return &Error{Op: "check", Locator: loc.String(), Cause: err}
	}
	return nil
}

func (p *chromePage) SelectOption(ctx context.Context, loc Locator, value string) error {
	var selected string
	if err := p.run(ctx, p.timeout, chromedp.Evaluate(script(selectJS, loc, value), &selected)); err != nil {
		return &Error{Op: "select", Locator: loc.String(), Cause: err}
	}
	return nil
}

func (p *chromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, p.timeout, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, &Error{Op: "screenshot", Cause: err}
	}
	return buf, nil
}

// Close closes the tab; the browser and its cookies stay alive.
func (p *chromePage) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = chromedp.Cancel(p.ctx)
		p.cancel()
	})
	return err
}
