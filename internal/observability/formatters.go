// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/atlas/autoapply/internal/autoapply"
	"github.com/atlas/autoapply/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
	// maxValueLen caps a filled value shown next to its field.
	maxValueLen = 28
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintApplyResult outputs a human-readable summary of one application attempt.
func (p *Printer) PrintApplyResult(result *types.ApplyResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("URL:       %s\n", result.JobURL))
	sb.WriteString(fmt.Sprintf("Platform:  %s\n", result.Platform))
	sb.WriteString(fmt.Sprintf("Status:    %s\n", result.Status))
	if result.Error != "" {
		sb.WriteString(fmt.Sprintf("Error:     %s\n", result.Error))
	}
	if result.ScreenshotPath != "" {
		sb.WriteString(fmt.Sprintf("Screenshot: %s\n", result.ScreenshotPath))
	}

	if fill := result.FillResult; fill != nil {
		sb.WriteString(fmt.Sprintf("\nFilled %d of %d fields:\n", fill.FieldsFilled, fill.FieldsTotal))
		count := min(len(fill.FilledFields), maxItemsToShow)
		for i := 0; i < count; i++ {
			f := fill.FilledFields[i]
			sb.WriteString(fmt.Sprintf("  • %s = %s\n", f.Field, truncate(strings.ReplaceAll(f.Value, "\n", " "), maxValueLen)))
		}
		if len(fill.FilledFields) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(fill.FilledFields)-maxItemsToShow))
		}
		if len(fill.Errors) > 0 {
			sb.WriteString(fmt.Sprintf("\n%d field errors:\n", len(fill.Errors)))
			count := min(len(fill.Errors), 3)
			for i := 0; i < count; i++ {
				sb.WriteString(fmt.Sprintf("  ! %s\n", fill.Errors[i]))
			}
		}
	}

	p.printBox("APPLICATION RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatchSummary outputs status counts and the jobs that need attention.
func (p *Printer) PrintBatchSummary(results []*types.ApplyResult) {
	if len(results) == 0 {
		return
	}
	s := autoapply.Summarize(results)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Jobs:            %d\n", s.Total))
	sb.WriteString(fmt.Sprintf("Filled:          %d\n", s.Filled))
	sb.WriteString(fmt.Sprintf("Submitted:       %d\n", s.Submitted))
	sb.WriteString(fmt.Sprintf("CAPTCHA:         %d\n", s.Captcha))
	sb.WriteString(fmt.Sprintf("Login required:  %d\n", s.LoginRequired))
	sb.WriteString(fmt.Sprintf("Errors:          %d\n", s.Errors))

	var attention []*types.ApplyResult
	for _, r := range results {
		if r != nil && !r.Succeeded() {
			attention = append(attention, r)
		}
	}
	if len(attention) > 0 {
		sb.WriteString("\nNeeds attention:\n")
		count := min(len(attention), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • [%s] %s\n", attention[i].Status, attention[i].JobURL))
		}
		if len(attention) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(attention)-maxItemsToShow))
		}
	}

	p.printBox("BATCH SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnswers outputs the generated answers, one short preview per question.
func (p *Printer) PrintAnswers(answers types.FreeTextAnswers) {
	if len(answers) == 0 {
		return
	}

	var sb strings.Builder
	for _, key := range types.AnswerKeys() {
		text, ok := answers.Get(key)
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s (%d words)\n", key, len(strings.Fields(text))))
		sb.WriteString(fmt.Sprintf("  %s\n", truncate(strings.ReplaceAll(text, "\n", " "), boxWidth-8)))
	}

	p.printBox("GENERATED ANSWERS", strings.TrimSuffix(sb.String(), "\n"))
}
