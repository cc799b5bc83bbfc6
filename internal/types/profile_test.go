//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile UserProfile
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid profile",
			profile: UserProfile{FullName: "Ada Lovelace", Email: "ada@example.com", GraduationYear: 2026},
		},
		{
			name:    "missing name",
			profile: UserProfile{Email: "ada@example.com"},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "bad email",
			profile: UserProfile{FullName: "Ada", Email: "not-an-email"},
			wantErr: true,
			errMsg:  "email",
		},
		{
			name:    "bad linkedin url",
			profile: UserProfile{FullName: "Ada", Email: "ada@example.com", LinkedInURL: "linkedin"},
			wantErr: true,
			errMsg:  "url",
		},
		{
			name:    "graduation year out of range",
			profile: UserProfile{FullName: "Ada", Email: "ada@example.com", GraduationYear: 12},
			wantErr: true,
			errMsg:  "gte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserProfile_JSONTags(t *testing.T) {
	raw := `{"full_name":"Ada Lovelace","email":"ada@example.com","graduation_year":2026,"work_authorized":true,"skills":["Go","SQL"]}`

	var p UserProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, "Ada Lovelace", p.FullName)
	assert.Equal(t, 2026, p.GraduationYear)
	assert.True(t, p.WorkAuthorized)
	assert.Equal(t, []string{"Go", "SQL"}, p.Skills)
}

func TestFreeTextAnswers_Get(t *testing.T) {
	var nilAnswers FreeTextAnswers
	_, ok := nilAnswers.Get(AnswerWhyCompany)
	assert.False(t, ok)

	answers := FreeTextAnswers{AnswerWhyCompany: "Because.", AnswerWhyRole: ""}
	v, ok := answers.Get(AnswerWhyCompany)
	assert.True(t, ok)
	assert.Equal(t, "Because.", v)

	_, ok = answers.Get(AnswerWhyRole)
	assert.False(t, ok, "empty answers count as absent")
}
