// Package fields classifies raw form controls into semantic profile categories.
package fields

import (
	"regexp"
	"strings"
)

// Category is the semantic profile attribute a form control is classified into.
type Category string

// Known categories.
const (
	FirstName         Category = "firstName"
	LastName          Category = "lastName"
	FullName          Category = "fullName"
	Email             Category = "email"
	Phone             Category = "phone"
	LinkedIn          Category = "linkedin"
	GitHub            Category = "github"
	Portfolio         Category = "portfolio"
	University        Category = "university"
	Major             Category = "major"
	GraduationYear    Category = "graduationYear"
	GPA               Category = "gpa"
	Location          Category = "location"
	Resume            Category = "resume"
	CoverLetter       Category = "coverLetter"
	WorkAuthorization Category = "workAuthorization"
	StartDate         Category = "startDate"
	Salary            Category = "salary"
	WhyInterested     Category = "whyInterested"
	Experience        Category = "experience"
	Skills            Category = "skills"
)

// IsFreeText reports whether values for c come from free-text answers rather than the profile.
func (c Category) IsFreeText() bool {
	switch c {
	case WhyInterested, Experience, CoverLetter:
		return true
	}
	return false
}

// PatternRule maps a category to the substrings that identify it.
type PatternRule struct {
	Category Category
	Patterns []string
}

// LabelRule maps a category to a regular expression tested against label text.
type LabelRule struct {
	Category Category
	Regexp   *regexp.Regexp
}

// patternRules is the canonical substring table. Order is significant: the first rule
// with any matching pattern wins. A category may appear more than once so a specific
// pattern set can outrank a generic one ("fullname" must not fall into lastName via
// "lname"). A bare "name" is never matched as a substring; see isBareName.
var patternRules = []PatternRule{
	{FullName, []string{"full_name", "fullname", "full-name", "full name"}},
	{FirstName, []string{
		"first_name", "firstname", "fname", "first-name", "given_name", "givenname",
		"name_first", "applicant_first_name", "candidate_first_name", "first name", "given name", "given-name",
	}},
	{LastName, []string{
		"last_name", "lastname", "lname", "last-name", "surname", "family_name",
		"familyname", "name_last", "applicant_last_name", "candidate_last_name", "last name", "family name", "family-name",
	}},
	{Email, []string{
		"email", "e-mail", "emailaddress", "email_address", "candidate_email",
		"applicant_email", "contact_email", "your_email",
	}},
	{Phone, []string{
		"phone", "telephone", "tel_", "mobile", "phone_number", "phonenumber",
		"cellphone", "cell_phone", "contact_phone", "your_phone",
	}},
	{LinkedIn, []string{
		"linkedin", "linkedin_url", "linkedinurl", "linkedin_profile",
		"social_linkedin", "profile_linkedin",
	}},
	{GitHub, []string{"github", "github_url", "githuburl", "github_profile"}},
	{Portfolio, []string{"portfolio", "portfolio_url", "website", "personal_website", "your_website"}},
	{University, []string{
		"university", "school", "college", "institution", "education_school",
		"alma_mater", "school_name", "university_name",
	}},
	{Major, []string{
		"major", "field_of_study", "degree", "concentration", "study_field",
		"area_of_study", "specialization",
	}},
	{GraduationYear, []string{
		"graduation", "grad_year", "graduation_year", "expected_graduation",
		"graduation_date", "year_of_graduation",
	}},
	{GPA, []string{"gpa", "grade_point", "cumulative_gpa", "academic_gpa"}},
	{Location, []string{"location", "current_city", "city_name", "your_city", "address", "current_location", "your_location"}},
	{Resume, []string{
		"resume", "resume_upload", "upload_resume", "attach_resume",
		"resume_file", "cv_upload", "upload_cv", "cv_file",
	}},
	{CoverLetter, []string{"cover_letter", "coverletter", "cover-letter", "cover letter", "motivation_letter"}},
	{WorkAuthorization, []string{
		"work_auth", "authorization", "work_authorization", "legally_authorized", "right_to_work",
	}},
	{StartDate, []string{"start_date", "availability", "available_date", "earliest_start", "when_can_you_start"}},
	{Salary, []string{
		"salary", "compensation", "salary_expectation", "expected_salary",
		"desired_salary", "pay_expectation",
	}},
	{WhyInterested, []string{
		"why_interested", "interest", "motivation", "why_apply", "why_company",
		"why_role", "about_yourself", "tell_us",
	}},
	{Experience, []string{
		"experience", "relevant_experience", "work_experience", "background",
		"qualifications", "skills_experience",
	}},
	{Skills, []string{"skills", "skill_set", "technologies"}},
	{FullName, []string{"candidate_name", "applicant_name", "your_name"}},
}

// labelRules is the fallback table, tested against label text only.
var labelRules = []LabelRule{
	{FirstName, regexp.MustCompile(`first\s*name|given\s*name|nombre`)},
	{LastName, regexp.MustCompile(`last\s*name|family\s*name|surname|apellido`)},
	{FullName, regexp.MustCompile(`full\s*name|your\s*name|^name\s*\*?:?$`)},
	{Email, regexp.MustCompile(`e-?mail|correo`)},
	{Phone, regexp.MustCompile(`phone|telephone|mobile|\bcell\b|tel[eé]fono`)},
	{LinkedIn, regexp.MustCompile(`linkedin`)},
	{GitHub, regexp.MustCompile(`github`)},
	{Portfolio, regexp.MustCompile(`portfolio|website|personal\s*site`)},
	{University, regexp.MustCompile(`university|school|college|institution|education`)},
	{Major, regexp.MustCompile(`major|field\s*of\s*study|degree|concentration`)},
	{GraduationYear, regexp.MustCompile(`graduat|expected.*year|year.*graduat`)},
	{GPA, regexp.MustCompile(`gpa|grade\s*point`)},
	{Location, regexp.MustCompile(`location|\bcity\b|where.*located|address`)},
	{Resume, regexp.MustCompile(`\bresume\b|\bcv\b|upload.*resume`)},
	{CoverLetter, regexp.MustCompile(`cover\s*letter`)},
	{WorkAuthorization, regexp.MustCompile(`authorized.*work|work.*authori[sz]ation|legally.*authorized|right\s*to\s*work`)},
	{StartDate, regexp.MustCompile(`start\s*date|when.*start|availab|earliest`)},
	{Salary, regexp.MustCompile(`salary|compensation|pay.*expect`)},
	{WhyInterested, regexp.MustCompile(`why.*(interest|apply|join|want)|why.*company|why.*role|tell\s*us|motivation`)},
	{Experience, regexp.MustCompile(`experience|background|qualif`)},
	{Skills, regexp.MustCompile(`\bskills?\b`)},
}

// Classify returns the category for a control described by its text signals.
// The bool is false when nothing matched; such controls must be left untouched.
func Classify(name, id, labelText, placeholder, ariaLabel string) (Category, bool) {
	haystack := strings.ToLower(strings.Join([]string{name, id, labelText, placeholder, ariaLabel}, " "))

	for _, rule := range patternRules {
		for _, p := range rule.Patterns {
			if strings.Contains(haystack, p) {
				return rule.Category, true
			}
		}
	}

	if isBareName(name) || isBareName(id) {
		return FullName, true
	}

	label := strings.ToLower(strings.TrimSpace(labelText))
	if label == "" {
		return "", false
	}
	for _, rule := range labelRules {
		if rule.Regexp.MatchString(label) {
			return rule.Category, true
		}
	}

	return "", false
}

// isBareName reports whether an attribute is exactly "name", alone or as the last
// bracketed segment ("application[name]"). Attributes like company_name or username
// only mention a name and stay unmapped.
func isBareName(attr string) bool {
	attr = strings.ToLower(strings.TrimSpace(attr))
	return attr == "name" || strings.HasSuffix(attr, "[name]")
}

// Patterns returns a copy of the ordered substring table.
func Patterns() []PatternRule {
	out := make([]PatternRule, len(patternRules))
	for i, r := range patternRules {
		out[i] = PatternRule{Category: r.Category, Patterns: append([]string(nil), r.Patterns...)}
	}
	return out
}

// LabelRules returns a copy of the ordered label-regexp table.
func LabelRules() []LabelRule {
	return append([]LabelRule(nil), labelRules...)
}
