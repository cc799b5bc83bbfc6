package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/atlas/autoapply/internal/types"
)

func TestPrintApplyResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	fill := types.NewFillResult()
	fill.FieldsTotal = 4
	fill.Record("first_name", "Ada")
	fill.Record("email", "ada@example.com")
	fill.AddError("resume: no file input")

	p.PrintApplyResult(&types.ApplyResult{
		JobURL:     "https://boards.greenhouse.io/acme/jobs/1",
		Platform:   "greenhouse",
		Status:     types.StatusFilled,
		FillResult: fill,
	})
	output := buf.String()

	assert.Contains(t, output, "APPLICATION RESULT")
	assert.Contains(t, output, "greenhouse")
	assert.Contains(t, output, "Filled 2 of 4 fields")
	assert.Contains(t, output, "first_name = Ada")
	assert.Contains(t, output, "resume: no file input")
}

func TestPrintApplyResult_Blocked(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintApplyResult(&types.ApplyResult{
		JobURL: "https://careers.example.com/login",
		Status: types.StatusLoginRequired,
		Error:  "login required",
	})
	output := buf.String()

	assert.Contains(t, output, "login_required")
	assert.Contains(t, output, "Error:")
	assert.NotContains(t, output, "Filled")
}

func TestPrintApplyResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintApplyResult(nil)
	assert.Empty(t, buf.String())
}

func TestPrintApplyResult_ManyFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	fill := types.NewFillResult()
	for i := 0; i < 12; i++ {
		fill.Record(fmt.Sprintf("field_%d", i), "value")
	}
	fill.FieldsTotal = 12
	p.PrintApplyResult(&types.ApplyResult{Status: types.StatusFilled, FillResult: fill})

	assert.Contains(t, buf.String(), "... and 4 more")
}

func TestPrintBatchSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBatchSummary([]*types.ApplyResult{
		{JobURL: "https://a.example.com", Status: types.StatusFilled},
		{JobURL: "https://b.example.com", Status: types.StatusCaptcha},
		{JobURL: "https://c.example.com", Status: types.StatusSubmitted},
	})
	output := buf.String()

	assert.Contains(t, output, "BATCH SUMMARY")
	assert.Contains(t, output, "Jobs:            3")
	assert.Contains(t, output, "Needs attention")
	assert.Contains(t, output, "[captcha] https://b.example.com")
	assert.NotContains(t, output, "a.example.com")
}

func TestPrintBatchSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintBatchSummary(nil)
	assert.Empty(t, buf.String())
}

func TestPrintAnswers(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnswers(types.FreeTextAnswers{
		types.AnswerWhyCompany: "Your mission matters to me.",
		types.AnswerWhyRole:    "",
	})
	output := buf.String()

	assert.Contains(t, output, "GENERATED ANSWERS")
	assert.Contains(t, output, "why_company (5 words)")
	assert.NotContains(t, output, "why_role")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
	assert.Contains(t, buf.String(), "...")
}
