// Package platform selects and drives platform-specific application flows.
package platform

import (
	"net/url"
	"strings"
)

// Platform identifies a family of application-hosting sites.
type Platform string

const (
	// LinkedIn is LinkedIn Easy Apply.
	LinkedIn Platform = "linkedin"
	// Greenhouse is the Greenhouse ATS platform
	Greenhouse Platform = "greenhouse"
	// Lever is the Lever ATS platform
	Lever Platform = "lever"
	// Workday is the Workday ATS platform
	Workday Platform = "workday"
	// Ashby is the Ashby ATS platform
	Ashby Platform = "ashby"
	// Generic is any unrecognized site
	Generic Platform = "generic"
)

// hostPatterns maps each known platform to host substrings, checked in order.
var hostPatterns = []struct {
	platform Platform
	hosts    []string
}{
	{LinkedIn, []string{"linkedin.com"}},
	{Greenhouse, []string{"greenhouse.io", "boards.greenhouse"}},
	{Lever, []string{"lever.co", "jobs.lever"}},
	{Workday, []string{"myworkdayjobs.com", "myworkday", "workday.com"}},
	{Ashby, []string{"ashbyhq.com"}},
}

// DetectPlatform identifies the platform from a URL's host. A URL without a scheme
// ("boards.greenhouse.io/acme/jobs/1") is matched on its leading host-like segment.
func DetectPlatform(urlStr string) Platform {
	raw := strings.ToLower(strings.TrimSpace(urlStr))
	host := ""
	if parsed, err := url.Parse(raw); err == nil {
		host = parsed.Host
	}
	if host == "" {
		host = raw
		if i := strings.IndexAny(host, "/?#"); i >= 0 {
			host = host[:i]
		}
	}
	if host == "" {
		return Generic
	}

	for _, hp := range hostPatterns {
		for _, h := range hp.hosts {
			if strings.Contains(host, h) {
				return hp.platform
			}
		}
	}
	return Generic
}
