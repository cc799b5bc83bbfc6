package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/atlas/autoapply/internal/browser"
	"github.com/atlas/autoapply/internal/types"
)

// Strategy drives one platform family's application flow.
type Strategy interface {
	Name() Platform
	Match(url string) bool
	// Navigate loads url and waits for it to settle.
	Navigate(ctx context.Context, page browser.Page, url string) error
	// FindApplyButton clicks the first visible apply control. It is a no-op when none
	// exists, since the page may already be the form.
	FindApplyButton(ctx context.Context, page browser.Page) error
	FillForm(ctx context.Context, page browser.Page, p *types.UserProfile, answers types.FreeTextAnswers) *types.FillResult
	// Submit clicks the first visible submit control, or does nothing.
	Submit(ctx context.Context, page browser.Page) error
}

// Filler fills the form on the current page.
type Filler interface {
	Fill(ctx context.Context, page browser.Page, p *types.UserProfile, answers types.FreeTextAnswers) *types.FillResult
}

// SleepFunc waits for d unless ctx ends first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// selectorStrategy is a Strategy driven by ordered locator lists.
type selectorStrategy struct {
	name   Platform
	match  func(url string) bool
	filler Filler

	apply  []browser.Locator
	submit []browser.Locator

	settle time.Duration
	// extraWait follows navigation and the apply click, for platforms that hydrate slowly.
	extraWait time.Duration
	sleep     SleepFunc
}

func (s *selectorStrategy) Name() Platform { return s.name }

func (s *selectorStrategy) Match(url string) bool {
	if s.match == nil {
		return true
	}
	return s.match(url)
}

func (s *selectorStrategy) Navigate(ctx context.Context, page browser.Page, url string) error {
	if err := page.Navigate(ctx, url); err != nil {
		return err
	}
	return s.waitLoaded(ctx, page)
}

func (s *selectorStrategy) FindApplyButton(ctx context.Context, page browser.Page) error {
	clicked, err := clickFirst(ctx, page, s.apply)
	if err != nil || !clicked {
		return err
	}
	return s.waitLoaded(ctx, page)
}

func (s *selectorStrategy) FillForm(ctx context.Context, page browser.Page, p *types.UserProfile, answers types.FreeTextAnswers) *types.FillResult {
	return s.filler.Fill(ctx, page, p, answers)
}

func (s *selectorStrategy) Submit(ctx context.Context, page browser.Page) error {
	_, err := clickFirst(ctx, page, s.submit)
	return err
}

// waitLoaded waits for the page to settle, then for the platform's extra delay.
// A settle timeout is not an error.
func (s *selectorStrategy) waitLoaded(ctx context.Context, page browser.Page) error {
	_ = page.WaitSettled(ctx, s.settle)
	if s.extraWait > 0 {
		return s.sleep(ctx, s.extraWait)
	}
	return ctx.Err()
}

// clickFirst clicks the first visible element among locators.
func clickFirst(ctx context.Context, page browser.Page, locators []browser.Locator) (bool, error) {
	for _, loc := range locators {
		ok, err := page.Exists(ctx, loc)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		if err := page.Click(ctx, loc); err != nil {
			return false, fmt.Errorf("failed to click %s: %w", loc, err)
		}
		return true, nil
	}
	return false, nil
}
