// Package resolve turns a semantic field category into the literal value to type into a form.
package resolve

import (
	"strconv"
	"strings"

	"github.com/atlas/autoapply/internal/fields"
	"github.com/atlas/autoapply/internal/types"
)

// Resolver produces a value for a category. The bool is false when there is nothing
// to fill; ("", true) is an explicit empty value and is distinct from "no value".
type Resolver interface {
	Resolve(cat fields.Category, profile *types.UserProfile, answers types.FreeTextAnswers) (string, bool)
}

// Chain tries resolvers in order and returns the first value found.
type Chain []Resolver

// Resolve implements Resolver.
func (c Chain) Resolve(cat fields.Category, profile *types.UserProfile, answers types.FreeTextAnswers) (string, bool) {
	for _, r := range c {
		if v, ok := r.Resolve(cat, profile, answers); ok {
			return v, true
		}
	}
	return "", false
}

// Default returns free-text answers first, then profile lookups.
func Default() Chain {
	return Chain{FreeTextResolver{}, ProfileResolver{}}
}

// answerKeys lists, per free-text category, the answer keys consulted in order.
var answerKeys = map[fields.Category][]string{
	fields.WhyInterested: {types.AnswerWhyCompany, types.AnswerWhyRole},
	fields.Experience:    {types.AnswerExperience, types.AnswerStrengths},
	fields.CoverLetter:   {types.AnswerCoverLetter, types.AnswerWhyRole},
}

// FreeTextResolver reads prose from supplied answers. It never generates text itself.
type FreeTextResolver struct{}

// Resolve implements Resolver.
func (FreeTextResolver) Resolve(cat fields.Category, _ *types.UserProfile, answers types.FreeTextAnswers) (string, bool) {
	for _, key := range answerKeys[cat] {
		if v, ok := answers.Get(key); ok {
			return v, true
		}
	}
	return "", false
}

// ProfileResolver reads identity, contact and education values from the profile.
type ProfileResolver struct{}

// Resolve implements Resolver.
func (ProfileResolver) Resolve(cat fields.Category, p *types.UserProfile, _ types.FreeTextAnswers) (string, bool) {
	if p == nil || cat.IsFreeText() {
		return "", false
	}

	switch cat {
	case fields.FirstName:
		first, _, ok := SplitName(p.FullName)
		return first, ok
	case fields.LastName:
		_, last, ok := SplitName(p.FullName)
		return last, ok
	case fields.GraduationYear:
		if p.GraduationYear == 0 {
			return "", false
		}
		return strconv.Itoa(p.GraduationYear), true
	case fields.WorkAuthorization:
		// Only "authorized" is modeled; anything else is left for the applicant.
		if p.WorkAuthorized {
			return "Yes", true
		}
		return "", false
	case fields.Skills:
		return nonEmpty(strings.Join(p.Skills, ", "))
	}

	lookup := map[fields.Category]string{
		fields.FullName:   p.FullName,
		fields.Email:      p.Email,
		fields.Phone:      p.Phone,
		fields.LinkedIn:   p.LinkedInURL,
		fields.GitHub:     p.GitHubURL,
		fields.Portfolio:  p.PortfolioURL,
		fields.University: p.School,
		fields.Major:      p.Major,
		fields.GPA:        p.GPA,
		fields.Location:   p.Location,
		fields.Resume:     p.ResumeURL,
		fields.StartDate:  p.AvailableStart,
	}
	return nonEmpty(lookup[cat])
}

// SplitName splits a full name on whitespace: the first token is the first name and the
// remaining tokens, joined by a single space, are the last name. A single-token name has
// an empty last name. ok is false only for a blank name.
func SplitName(fullName string) (first, last string, ok bool) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", "", false
	}
	return parts[0], strings.Join(parts[1:], " "), true
}

func nonEmpty(v string) (string, bool) {
	v = strings.TrimSpace(v)
	return v, v != ""
}
