package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_EveryPatternInTable(t *testing.T) {
	for _, rule := range Patterns() {
		for _, p := range rule.Patterns {
			t.Run(string(rule.Category)+"/"+p, func(t *testing.T) {
				got, ok := Classify(p, "", "", "", "")
				assert.True(t, ok)
				assert.Equal(t, rule.Category, got)
			})
		}
	}
}

func TestClassify_AttributeSources(t *testing.T) {
	tests := []struct {
		name                                     string
		fieldName, id, label, placeholder, aria string
		expected                                 Category
	}{
		{name: "greenhouse first name", fieldName: "job_application[first_name]", id: "first_name", expected: FirstName},
		{name: "id only", id: "email", expected: Email},
		{name: "placeholder only", placeholder: "LinkedIn Profile URL", expected: LinkedIn},
		{name: "aria label only", aria: "Phone number", expected: Phone},
		{name: "fullname is not lastName", fieldName: "fullname", expected: FullName},
		{name: "school name is university", fieldName: "school_name", expected: University},
		{name: "bare name is full name", fieldName: "name", expected: FullName},
		{name: "bracketed bare name", fieldName: "job_application[name]", expected: FullName},
		{name: "bare name id", fieldName: "q_1", id: "Name", expected: FullName},
		{name: "name label", fieldName: "q_1", label: "Name *", expected: FullName},
		{name: "email address is not location", label: "Email Address", expected: Email},
		{name: "graduation year", fieldName: "grad_year", label: "Expected graduation", expected: GraduationYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.fieldName, tt.id, tt.label, tt.placeholder, tt.aria)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClassify_LabelRegexFallback(t *testing.T) {
	tests := []struct {
		label    string
		expected Category
	}{
		{"Tell us why you want this role", WhyInterested},
		{"Why do you want to join us?", WhyInterested},
		{"Are you legally authorized to work in the United States?", WorkAuthorization},
		{"When can you start?", StartDate},
		{"Given Name", FirstName},
		{"Family Name", LastName},
		{"Which city are you based in?", Location},
		{"Upload your CV", Resume},
		{"Cover Letter", CoverLetter},
		{"Describe your relevant experience", Experience},
		{"Teléfono", Phone},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := Classify("question_1234", "q_1234", tt.label, "", "")
			assert.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClassify_RegexIgnoresNonLabelSignals(t *testing.T) {
	// "when can you start" only as a placeholder: the regex table looks at label text only.
	_, ok := Classify("q_77", "q_77", "", "When can we reach you", "")
	assert.False(t, ok)
}

func TestClassify_Unmapped(t *testing.T) {
	tests := []struct {
		name                        string
		fieldName, id, label, place string
	}{
		{name: "favorite color", fieldName: "favorite_color", id: "favorite_color", label: "What is your favorite color?"},
		{name: "empty", fieldName: "", id: "", label: "", place: ""},
		{name: "ethnicity is not a city", fieldName: "ethnicity", id: "eeo_ethnicity"},
		{name: "free-form question", fieldName: "q_9", label: "Anything else?"},
		{name: "company name", fieldName: "company_name", label: "Current company name"},
		{name: "referrer name", fieldName: "referrer_name", label: "Referrer name"},
		{name: "username", fieldName: "username", id: "username"},
		{name: "emergency contact", fieldName: "emergency_contact_name", label: "Emergency contact name"},
		{name: "employer name", fieldName: "q_12", label: "Employer name"},
		{name: "nickname", fieldName: "nickname", place: "Nickname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.fieldName, tt.id, tt.label, tt.place, "")
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}
}

func TestClassify_DeclarationOrderBreaksTies(t *testing.T) {
	// Both email and location patterns match; email is declared first.
	got, ok := Classify("email_address", "", "", "", "")
	assert.True(t, ok)
	assert.Equal(t, Email, got)

	// Both experience and skills match; experience is declared first.
	got, ok = Classify("skills_experience", "", "", "", "")
	assert.True(t, ok)
	assert.Equal(t, Experience, got)
}

func TestCategory_IsFreeText(t *testing.T) {
	assert.True(t, WhyInterested.IsFreeText())
	assert.True(t, Experience.IsFreeText())
	assert.True(t, CoverLetter.IsFreeText())
	assert.False(t, Email.IsFreeText())
	assert.False(t, WorkAuthorization.IsFreeText())
}

func TestLabelRules_CopyIsIndependent(t *testing.T) {
	rules := LabelRules()
	rules[0] = LabelRule{}
	assert.Equal(t, FirstName, LabelRules()[0].Category)
}
