//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// FilledField records one control that received a value.
type FilledField struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// FillResult is the outcome of one form-filling pass over a page.
// FieldsFilled never exceeds FieldsTotal; Success is true iff FieldsFilled > 0.
type FillResult struct {
	Success      bool          `json:"success"`
	FieldsFilled int           `json:"fields_filled"`
	FieldsTotal  int           `json:"fields_total"`
	FilledFields []FilledField `json:"filled_fields"`
	Errors       []string      `json:"errors"`
}

// NewFillResult returns an empty result with non-nil slices.
func NewFillResult() *FillResult {
	return &FillResult{
		FilledFields: []FilledField{},
		Errors:       []string{},
	}
}

// Record appends a filled control.
func (r *FillResult) Record(field, value string) {
	r.FieldsFilled++
	r.FilledFields = append(r.FilledFields, FilledField{Field: field, Value: value})
	r.Success = r.FieldsFilled > 0
}

// AddError appends a non-fatal per-field failure.
func (r *FillResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Merge folds another pass (e.g. the next step of a wizard) into r.
func (r *FillResult) Merge(other *FillResult) {
	if other == nil {
		return
	}
	r.FieldsFilled += other.FieldsFilled
	r.FieldsTotal += other.FieldsTotal
	r.FilledFields = append(r.FilledFields, other.FilledFields...)
	r.Errors = append(r.Errors, other.Errors...)
	r.Success = r.FieldsFilled > 0
}

// ApplyStatus is the state an application attempt stopped in.
type ApplyStatus string

const (
	// StatusFilled means fields were filled and the form awaits human review.
	StatusFilled ApplyStatus = "filled"
	// StatusSubmitted means the form was filled and submitted.
	StatusSubmitted ApplyStatus = "submitted"
	// StatusError means the attempt failed.
	StatusError ApplyStatus = "error"
	// StatusCaptcha means a CAPTCHA blocked the attempt before filling.
	StatusCaptcha ApplyStatus = "captcha"
	// StatusLoginRequired means a login wall blocked the attempt before filling.
	StatusLoginRequired ApplyStatus = "login_required"
)

// Terminal reports whether no further automatic action follows this status.
// StatusFilled is a valid stopping point but not terminal.
func (s ApplyStatus) Terminal() bool {
	return s != StatusFilled
}

// ApplyResult is the outcome of one end-to-end application attempt.
type ApplyResult struct {
	JobURL         string      `json:"job_url"`
	Platform       string      `json:"platform,omitempty"`
	Status         ApplyStatus `json:"status"`
	FillResult     *FillResult `json:"fill_result,omitempty"`
	ScreenshotPath string      `json:"screenshot_path,omitempty"`
	Error          string      `json:"error,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}

// Succeeded reports whether the attempt produced a filled or submitted form.
func (r *ApplyResult) Succeeded() bool {
	return r.Status == StatusFilled || r.Status == StatusSubmitted
}
