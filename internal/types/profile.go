// Package types provides type definitions for structured data used throughout the auto-apply system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// UserProfile is the applicant record a fill operation reads from.
// It is owned by the calling application and never mutated by the engine.
type UserProfile struct {
	ID             string   `json:"id,omitempty"`
	FullName       string   `json:"full_name" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	Phone          string   `json:"phone,omitempty"`
	Location       string   `json:"location,omitempty"`
	School         string   `json:"school,omitempty"`
	Major          string   `json:"major,omitempty"`
	GraduationYear int      `json:"graduation_year,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	GPA            string   `json:"gpa,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	LinkedInURL    string   `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	GitHubURL      string   `json:"github_url,omitempty" validate:"omitempty,url"`
	PortfolioURL   string   `json:"portfolio_url,omitempty" validate:"omitempty,url"`
	ResumeURL      string   `json:"resume_url,omitempty"`
	WorkAuthorized bool     `json:"work_authorized,omitempty"`
	AvailableStart string   `json:"available_start,omitempty"`
}

// Validate validates the UserProfile using the validator.
func (p *UserProfile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// Answer keys understood by the free-text resolver.
const (
	AnswerWhyCompany  = "why_company"
	AnswerWhyRole     = "why_role"
	AnswerStrengths   = "strengths"
	AnswerExperience  = "experience"
	AnswerCoverLetter = "cover_letter"
)

// AnswerKeys lists every free-text question key in a stable order.
func AnswerKeys() []string {
	return []string{AnswerWhyCompany, AnswerWhyRole, AnswerStrengths, AnswerExperience, AnswerCoverLetter}
}

// FreeTextAnswers maps a question key to prose supplied by the user or a text generator.
type FreeTextAnswers map[string]string

// Get returns the non-empty answer for key.
func (a FreeTextAnswers) Get(key string) (string, bool) {
	if a == nil {
		return "", false
	}
	v, ok := a[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// JobTarget is one entry of a batch application request.
type JobTarget struct {
	URL           string          `json:"url" validate:"required,url"`
	OpportunityID string          `json:"opportunity_id,omitempty"`
	Answers       FreeTextAnswers `json:"answers,omitempty"`
}
