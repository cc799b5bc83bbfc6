package autoapply

import (
	"context"

	"github.com/atlas/autoapply/internal/formfill"
	"github.com/atlas/autoapply/internal/types"
)

// ProgressFunc is called once per job, in input order, after the job reaches its final status.
type ProgressFunc func(completed, total int, result *types.ApplyResult)

// ApplyToMultipleJobs applies to jobs strictly one after another, pausing a random
// interval between jobs. A failed job never stops the batch. If ctx ends during a
// pause, every remaining job is reported as an error so results line up with jobs.
func (e *Engine) ApplyToMultipleJobs(ctx context.Context, jobs []types.JobTarget, p *types.UserProfile, onProgress ProgressFunc) []*types.ApplyResult {
	results := make([]*types.ApplyResult, 0, len(jobs))
	report := func(r *types.ApplyResult) {
		results = append(results, r)
		if onProgress != nil {
			onProgress(len(results), len(jobs), r)
		}
	}

	for i, job := range jobs {
		if i > 0 {
			if err := e.sleep(ctx, formfill.Jitter(e.cfg.MinJobDelay, e.cfg.MaxJobDelay)); err != nil {
				for _, skipped := range jobs[i:] {
					report(&types.ApplyResult{
						JobURL:    skipped.URL,
						Status:    types.StatusError,
						Error:     err.Error(),
						Timestamp: e.now(),
					})
				}
				break
			}
		}
		report(e.ApplyToJob(ctx, job.URL, p, job.Answers))
	}
	return results
}

// Summary counts batch results by status.
type Summary struct {
	Total         int `json:"total"`
	Filled        int `json:"filled"`
	Submitted     int `json:"submitted"`
	Errors        int `json:"errors"`
	Captcha       int `json:"captcha"`
	LoginRequired int `json:"login_required"`
}

// Summarize counts results by status.
func Summarize(results []*types.ApplyResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r == nil {
			s.Errors++
			continue
		}
		switch r.Status {
		case types.StatusFilled:
			s.Filled++
		case types.StatusSubmitted:
			s.Submitted++
		case types.StatusCaptcha:
			s.Captcha++
		case types.StatusLoginRequired:
			s.LoginRequired++
		default:
			s.Errors++
		}
	}
	return s
}
