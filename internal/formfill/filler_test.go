package formfill

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/atlas/autoapply/internal/browser/browsertest"
	"github.com/atlas/autoapply/internal/fields"
	"github.com/atlas/autoapply/internal/types"
)

const applicationForm = `<html><body><form>
  <input type="hidden" name="csrf" value="abc">
  <label for="fn">First Name</label><input id="fn" name="first_name" type="text">
  <label>Last name <input name="lname"></label>
  <input type="email" name="email" placeholder="you@example.com">
  <input name="favorite_color" aria-label="Favorite color">
  <textarea name="why_interested"></textarea>
  <select name="work_authorization">
    <option value="">Select...</option>
    <option>Yes</option>
    <option>No</option>
    <option>Requires Sponsorship</option>
  </select>
  <input type="file" name="resume">
  <input type="checkbox" name="legally_authorized">
  <input type="radio" name="right_to_work" value="yes">
  <input type="radio" name="right_to_work" value="no">
  <input type="submit" value="Apply">
  <input name="salary_expectation">
</form></body></html>`

func testProfile() *types.UserProfile {
	return &types.UserProfile{
		FullName:       "Ada Lovelace",
		Email:          "ada@example.com",
		ResumeURL:      "https://files.example.com/ada.pdf",
		WorkAuthorized: true,
	}
}

func testFiller(t *testing.T) *Filler {
	f := NewFiller(zaptest.NewLogger(t))
	f.Pacer = NoDelay{}
	return f
}

func TestFill_CountsAndValues(t *testing.T) {
	page := browsertest.NewPage(applicationForm)
	answers := types.FreeTextAnswers{types.AnswerWhyCompany: "Because."}

	result := testFiller(t).Fill(context.Background(), page, testProfile(), answers)

	// 11 fillable controls: hidden and submit inputs are excluded.
	assert.Equal(t, 11, result.FieldsTotal)
	assert.Equal(t, 7, result.FieldsFilled)
	assert.True(t, result.Success)
	assert.LessOrEqual(t, result.FieldsFilled, result.FieldsTotal)

	assert.Equal(t, "Ada", page.TypedInto(1))
	assert.Equal(t, "Lovelace", page.TypedInto(2))
	assert.Equal(t, "ada@example.com", page.TypedInto(3))
	assert.Empty(t, page.TypedInto(4), "unmapped control is left untouched")
	assert.Equal(t, "Because.", page.TypedInto(5))

	selected, ok := page.SelectedIn(6)
	assert.True(t, ok)
	assert.Equal(t, "Yes", selected)

	assert.True(t, page.IsChecked(8))
	assert.True(t, page.IsChecked(9))
	assert.False(t, page.IsChecked(10))
	assert.Empty(t, page.TypedInto(12), "no salary in profile")

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "manual upload required")

	var got []string
	for _, ff := range result.FilledFields {
		got = append(got, ff.Field)
	}
	assert.Equal(t, []string{
		string(fields.FirstName), string(fields.LastName), string(fields.Email),
		string(fields.WhyInterested), string(fields.WorkAuthorization),
		string(fields.WorkAuthorization), string(fields.WorkAuthorization),
	}, got)
	assert.Equal(t, "checked", result.FilledFields[5].Value)
	assert.Equal(t, 1, page.Settles)
}

func TestFill_NothingResolvable(t *testing.T) {
	page := browsertest.NewPage(`<form><input name="favorite_color"><input name="first_name"></form>`)

	result := testFiller(t).Fill(context.Background(), page, &types.UserProfile{}, nil)

	assert.Equal(t, 2, result.FieldsTotal)
	assert.Equal(t, 0, result.FieldsFilled)
	assert.False(t, result.Success)
	assert.Empty(t, result.Errors)
	assert.NotNil(t, result.FilledFields)
}

func TestFill_EmptyResolvedValueIsNotRecorded(t *testing.T) {
	page := browsertest.NewPage(`<form><input name="last_name"></form>`)
	p := testProfile()
	p.FullName = "Prince"

	result := testFiller(t).Fill(context.Background(), page, p, nil)

	assert.Equal(t, 1, result.FieldsTotal)
	assert.Equal(t, 0, result.FieldsFilled)
	assert.False(t, result.Success)
	assert.Empty(t, result.FilledFields)
	assert.Empty(t, page.TypedInto(0))
}

func TestFill_CompanyNameIsLeftAlone(t *testing.T) {
	page := browsertest.NewPage(`<form><input id="c" name="company_name"><input name="name"></form>`)

	result := testFiller(t).Fill(context.Background(), page, testProfile(), nil)

	assert.Equal(t, 1, result.FieldsFilled)
	assert.Empty(t, page.TypedInto(0))
	assert.Equal(t, "Ada Lovelace", page.TypedInto(1))
}

func TestFill_SettleTimeoutIsNotFatal(t *testing.T) {
	page := browsertest.NewPage(`<form><input name="email"></form>`)
	page.SettleErr = errors.New("timed out waiting for network idle")

	result := testFiller(t).Fill(context.Background(), page, testProfile(), nil)

	assert.Equal(t, 1, result.FieldsFilled)
	assert.Empty(t, result.Errors)
}

func TestFill_CheckboxOnlyWhenAuthorized(t *testing.T) {
	page := browsertest.NewPage(`<form><input type="checkbox" name="legally_authorized"><input type="checkbox" name="email_opt_in"></form>`)
	p := testProfile()
	p.WorkAuthorized = false

	result := testFiller(t).Fill(context.Background(), page, p, nil)

	assert.Equal(t, 0, result.FieldsFilled)
	assert.Empty(t, page.Checked)
}

func TestFill_CancelledBetweenFields(t *testing.T) {
	page := browsertest.NewPage(`<form><input name="email"><input name="first_name"></form>`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := testFiller(t).Fill(ctx, page, testProfile(), nil)

	assert.Equal(t, 2, result.FieldsTotal)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[len(result.Errors)-1], "fill interrupted")
}

type staticResolver string

func (s staticResolver) Resolve(fields.Category, *types.UserProfile, types.FreeTextAnswers) (string, bool) {
	return string(s), true
}

func TestFill_SelectWithoutMatchingOption(t *testing.T) {
	page := browsertest.NewPage(`<form><select name="work_authorization">
		<option>Yes</option><option>No</option><option>Requires Sponsorship</option>
	</select></form>`)
	f := testFiller(t)
	f.Resolver = staticResolver("Maybe")

	result := f.Fill(context.Background(), page, testProfile(), nil)

	assert.Equal(t, 1, result.FieldsTotal)
	assert.Equal(t, 0, result.FieldsFilled)
	assert.Empty(t, result.Errors, "an unmatched option is unfilled, not an error")
	assert.Empty(t, page.Selected)
}

// fakeControl is a FormControl that records calls and can fail.
type fakeControl struct {
	kind    Kind
	attrs   map[string]string
	label   string
	options []Option
	err     error

	text     string
	checked  bool
	selected *Option
}

func (c *fakeControl) Kind() Kind              { return c.kind }
func (c *fakeControl) Attr(name string) string { return c.attrs[name] }
func (c *fakeControl) Label() string           { return c.label }
func (c *fakeControl) Options() []Option       { return c.options }

func (c *fakeControl) SetText(_ context.Context, v string) error {
	if c.err != nil {
		return c.err
	}
	c.text = v
	return nil
}

func (c *fakeControl) SetChecked(context.Context) error {
	if c.err != nil {
		return c.err
	}
	c.checked = true
	return nil
}

func (c *fakeControl) SelectOption(_ context.Context, o Option) error {
	if c.err != nil {
		return c.err
	}
	c.selected = &o
	return nil
}

func TestFillControl(t *testing.T) {
	tests := []struct {
		name        string
		control     *fakeControl
		wantFilled  bool
		wantValue   string
		wantErrText string
	}{
		{
			name:       "text uses label when attributes are opaque",
			control:    &fakeControl{kind: KindText, attrs: map[string]string{"name": "q_8812"}, label: "E-mail"},
			wantFilled: true,
			wantValue:  "ada@example.com",
		},
		{
			name:        "interaction failure is recorded",
			control:     &fakeControl{kind: KindTextarea, attrs: map[string]string{"name": "email"}, err: errors.New("element not interactable")},
			wantErrText: "email: element not interactable",
		},
		{
			name: "select matches option value in either direction",
			control: &fakeControl{kind: KindSelect, attrs: map[string]string{"name": "work_auth"}, options: []Option{
				{Value: "", Text: "Choose"}, {Value: "Y", Text: "I am authorized"}, {Value: "yes_sponsor", Text: "Yes, with sponsorship"},
			}},
			wantFilled: true,
			wantValue:  "I am authorized",
		},
		{
			name:       "radio matches case-insensitively",
			control:    &fakeControl{kind: KindRadio, attrs: map[string]string{"name": "work_authorization", "value": "YES"}},
			wantFilled: true,
			wantValue:  "Yes",
		},
		{
			name:       "radio affirmative synonym",
			control:    &fakeControl{kind: KindRadio, attrs: map[string]string{"name": "work_authorization", "value": "true"}},
			wantFilled: true,
			wantValue:  "Yes",
		},
		{
			name:    "radio negative option stays unchecked",
			control: &fakeControl{kind: KindRadio, attrs: map[string]string{"name": "work_authorization", "value": "no"}},
		},
		{
			name:    "checkbox outside work authorization is never ticked",
			control: &fakeControl{kind: KindCheckbox, attrs: map[string]string{"name": "email"}},
		},
		{
			name:        "file is never uploaded",
			control:     &fakeControl{kind: KindFile, attrs: map[string]string{"name": "resume"}},
			wantErrText: "resume: manual upload required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := types.NewFillResult()
			testFiller(t).FillControl(context.Background(), tt.control, testProfile(), nil, result)

			if tt.wantFilled {
				require.Equal(t, 1, result.FieldsFilled)
				assert.Equal(t, tt.wantValue, result.FilledFields[0].Value)
			} else {
				assert.Equal(t, 0, result.FieldsFilled)
			}
			if tt.wantErrText != "" {
				require.Len(t, result.Errors, 1)
				assert.Equal(t, tt.wantErrText, result.Errors[0])
			} else {
				assert.Empty(t, result.Errors)
			}
		})
	}
}

func TestMatchOption(t *testing.T) {
	opts := []Option{
		{Value: "", Text: "Select..."},
		{Value: "Yes", Text: "Yes"},
		{Value: "No", Text: "No"},
		{Value: "Requires Sponsorship", Text: "Requires Sponsorship"},
	}

	tests := []struct {
		value string
		want  string
		ok    bool
	}{
		{"Yes", "Yes", true},
		{"yes", "Yes", true},
		{"sponsorship", "Requires Sponsorship", true},
		{"No, I am not", "No", true},
		{"Maybe", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := MatchOption(opts, tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.Text)
		})
	}
}
