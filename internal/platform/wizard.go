package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/atlas/autoapply/internal/browser"
	"github.com/atlas/autoapply/internal/types"
)

// MaxWizardSteps bounds how many steps of a multi-step form are filled.
const MaxWizardSteps = 5

// wizardStrategy fills a multi-step form: fill the step, advance, repeat.
type wizardStrategy struct {
	selectorStrategy

	next     []browser.Locator
	maxSteps int
	// applyWait and stepWait replace the settle wait after the apply and next clicks.
	applyWait time.Duration
	stepWait  time.Duration
}

func (s *wizardStrategy) FindApplyButton(ctx context.Context, page browser.Page) error {
	clicked, err := clickFirst(ctx, page, s.apply)
	if err != nil || !clicked {
		return err
	}
	return s.sleep(ctx, s.applyWait)
}

// FillForm merges the results of every step. The step after the last one filled is
// never advanced to, so a wizard longer than maxSteps stops on a filled step.
func (s *wizardStrategy) FillForm(ctx context.Context, page browser.Page, p *types.UserProfile, answers types.FreeTextAnswers) *types.FillResult {
	result := types.NewFillResult()
	for step := 1; step <= s.maxSteps; step++ {
		result.Merge(s.filler.Fill(ctx, page, p, answers))
		if step == s.maxSteps {
			break
		}

		clicked, err := clickFirst(ctx, page, s.next)
		if err != nil {
			result.AddError(fmt.Sprintf("step %d: %v", step, err))
			break
		}
		if !clicked {
			break
		}
		if err := s.sleep(ctx, s.stepWait); err != nil {
			result.AddError(fmt.Sprintf("step %d: %v", step, err))
			break
		}
	}
	return result
}
