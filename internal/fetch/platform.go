package fetch

import (
	"github.com/atlas/autoapply/internal/platform"
)

// ContentSelectors returns content selectors optimized for a specific platform.
func ContentSelectors(p platform.Platform) []string {
	switch p {
	case platform.Greenhouse:
		return []string{
			".job__description.body",
			".job__description",
			".job-description__content",
			"#content",
			".job-post-container",
		}
	case platform.Lever:
		return []string{
			".posting-page",
			".section-wrapper.page-full-width",
			".posting-description",
			".content",
		}
	case platform.Workday:
		return []string{
			"[data-automation-id='jobPostingDescription']",
			"[data-automation-id='jobDescription']",
			".job-description",
		}
	case platform.LinkedIn:
		return []string{
			".jobs-description__content",
			".show-more-less-html__markup",
			".description__text",
		}
	case platform.Ashby:
		return []string{
			"[class*='descriptionText']",
			".ashby-job-posting-right-pane",
		}
	default:
		return []string{
			".job-description",
			"#job-description",
			".job-content",
			".job-details",
			".posting-content",
			"[data-testid='job-description']",
			"main",
			"article",
		}
	}
}

// NoiseSelectors returns noise exclusion selectors for a specific platform.
func NoiseSelectors(p platform.Platform) []string {
	common := []string{
		"nav", "header", "footer", "script", "style", "noscript", "iframe",
		// Application forms
		"form",
		"#application-form",
		".application-form",
		".apply-button-container",

		// EEO and legal
		".voluntary-disclosure",
		".eeo-statement",
		".eeo-section",
		".self-identification",

		".social-share",
		".share-buttons",
		".cookie-banner",
		".cookie-consent",
	}

	switch p {
	case platform.Greenhouse:
		return append(common,
			".application--wrapper",
			".voluntary-self-id",
			"#usa_self_id_section",
		)
	case platform.Lever:
		return append(common,
			".apply-section",
			".posting-apply",
		)
	case platform.Workday:
		return append(common,
			"[data-automation-id='applyButton']",
			"[data-automation-id='jobApplyButton']",
		)
	case platform.LinkedIn:
		return append(common,
			".jobs-apply-button--top-card",
			".jobs-premium-applicant-insights",
		)
	default:
		return common
	}
}
