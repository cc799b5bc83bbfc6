package fetch

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/atlas/autoapply/internal/platform"
)

// JobDescription reduces a job page to its description text. Noise for the platform
// hosting jobURL is stripped first; the first matching content selector wins, and the
// whole body is used when none match.
func JobDescription(jobURL, html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse job page: %w", err)
	}

	p := platform.DetectPlatform(jobURL)
	doc.Find(strings.Join(NoiseSelectors(p), ", ")).Remove()

	content := doc.Find("body")
	for _, sel := range ContentSelectors(p) {
		if match := doc.Find(sel); match.Length() > 0 {
			content = match.First()
			break
		}
	}
	return collapseLines(content.Text()), nil
}

// collapseLines trims every line and drops the empty ones.
func collapseLines(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
