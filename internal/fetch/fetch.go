// Package fetch retrieves job pages and reduces them to the description text
// used when generating free-text answers.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/atlas/autoapply/internal/browser"
)

const (
	// DefaultTimeout bounds a job page request when Fetcher.Client is not set.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies job page requests.
	DefaultUserAgent = "Mozilla/5.0 (compatible; AtlasApply/1.0)"
	// MaxBodyBytes caps how much of a job page is read. Longer pages are truncated.
	MaxBodyBytes = 5 << 20
)

// ErrInvalidURL is the cause reported for URLs without a scheme or host.
var ErrInvalidURL = errors.New("invalid job URL")

// Error is a failed job page fetch. StatusCode is set when the server answered
// with a non-2xx status.
type Error struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Page is a job page as served over HTTP.
type Page struct {
	URL        string
	HTML       string
	StatusCode int
	// Truncated is set when the body exceeded MaxBodyBytes.
	Truncated bool
}

// Fetcher retrieves job pages and extracts their descriptions.
type Fetcher struct {
	// Client sends job page requests. Nil uses a client with DefaultTimeout.
	Client    *http.Client
	UserAgent string
	// Session renders pages whose static HTML looks like an unrendered app shell.
	// Nil disables rendering.
	Session browser.Session
	// Settle bounds how long a rendered page may take to finish loading.
	Settle time.Duration
	Logger *zap.Logger
}

// NewFetcher returns a Fetcher with default client settings and no browser.
func NewFetcher(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		Client:    &http.Client{Timeout: DefaultTimeout},
		UserAgent: DefaultUserAgent,
		Settle:    DefaultRenderSettle,
		Logger:    logger,
	}
}

func (f *Fetcher) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

// Get downloads a job page. A non-2xx response returns the page alongside an *Error.
func (f *Fetcher) Get(ctx context.Context, jobURL string) (*Page, error) {
	parsed, err := url.Parse(jobURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: jobURL, Cause: ErrInvalidURL}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jobURL, nil)
	if err != nil {
		return nil, &Error{URL: jobURL, Cause: err}
	}
	ua := f.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: jobURL, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, &Error{URL: jobURL, Cause: fmt.Errorf("failed to read body: %w", err)}
	}
	page := &Page{URL: jobURL, StatusCode: resp.StatusCode}
	if len(body) > MaxBodyBytes {
		body = body[:MaxBodyBytes]
		page.Truncated = true
		f.logger().Warn("job page truncated", zap.String("url", jobURL), zap.Int("max_bytes", MaxBodyBytes))
	}
	page.HTML = string(body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return page, &Error{URL: jobURL, StatusCode: resp.StatusCode}
	}
	return page, nil
}

// Description fetches jobURL over HTTP and extracts its description. When the
// text looks like an unrendered app shell and a Session is set, the page is
// rendered in the browser and the longer of the two texts wins.
func (f *Fetcher) Description(ctx context.Context, jobURL string) (string, error) {
	var text string
	page, err := f.Get(ctx, jobURL)
	if err == nil {
		text, err = JobDescription(jobURL, page.HTML)
	}
	if f.Session == nil || (err == nil && !ShouldUseBrowser(text)) {
		return text, err
	}

	log := f.logger().With(zap.String("url", jobURL))
	log.Debug("rendering job page", zap.Int("static_chars", len(text)), zap.Error(err))

	html, renderErr := Render(ctx, f.Session, jobURL, f.Settle)
	if renderErr != nil {
		if err == nil && text != "" {
			log.Warn("render failed, keeping static text", zap.Error(renderErr))
			return text, nil
		}
		return "", renderErr
	}
	rendered, extractErr := JobDescription(jobURL, html)
	if extractErr != nil {
		return "", extractErr
	}
	if len(rendered) < len(text) {
		return text, nil
	}
	return rendered, nil
}
