package autoapply

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/atlas/autoapply/internal/browser"
	"github.com/atlas/autoapply/internal/types"
)

const (
	loginSelector   = `input[type="password"], [class*="login"], [class*="signin"]`
	captchaSelector = `[class*="captcha"], [class*="recaptcha"], iframe[src*="captcha"]`
)

// detectBlocker scans the page for a login wall, then for a CAPTCHA.
// It returns nil when the page can be filled.
func detectBlocker(ctx context.Context, page browser.Page) (*BlockedError, error) {
	html, err := page.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return scanBlockers(html)
}

func scanBlockers(html string) (*BlockedError, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	if doc.Find(loginSelector).Length() > 0 {
		return &BlockedError{Status: types.StatusLoginRequired, Message: "login required to apply"}, nil
	}
	if doc.Find(captchaSelector).Length() > 0 {
		return &BlockedError{Status: types.StatusCaptcha, Message: "CAPTCHA detected"}, nil
	}
	return nil, nil
}
