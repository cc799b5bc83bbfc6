package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atlas/autoapply/internal/browser"
)

// MinContentLength is the minimum extracted text length to consider HTTP fetch successful.
// Shorter text usually means the page renders its content with JavaScript.
const MinContentLength = 500

// DefaultRenderSettle bounds how long a rendered page may take to finish loading.
const DefaultRenderSettle = 10 * time.Second

// ShouldUseBrowser returns true if the extracted text is too short,
// indicating the page is likely a JavaScript-rendered SPA.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Render loads url in a new tab of s and returns the settled HTML.
// The tab is closed before returning.
func Render(ctx context.Context, s browser.Session, url string, settle time.Duration) (string, error) {
	page, err := s.NewPage(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.Navigate(ctx, url); err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}
	// A page that never settles still has usable content.
	_ = page.WaitSettled(ctx, settle)

	html, err := page.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read rendered page: %w", err)
	}
	return html, nil
}
