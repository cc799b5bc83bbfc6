package platform

import (
	"sync"
	"time"

	"github.com/atlas/autoapply/internal/browser"
	"github.com/atlas/autoapply/internal/formfill"
)

// DefaultSettleTimeout bounds each wait for a page to settle.
const DefaultSettleTimeout = 10 * time.Second

// WorkdayExtraWait follows Workday navigations, whose forms hydrate late.
const WorkdayExtraWait = 2 * time.Second

type options struct {
	settle time.Duration
	sleep  SleepFunc
}

// Option configures the default strategies.
type Option func(*options)

// WithSettleTimeout overrides DefaultSettleTimeout.
func WithSettleTimeout(d time.Duration) Option {
	return func(o *options) { o.settle = d }
}

// WithSleep replaces the function used for fixed platform waits.
func WithSleep(fn SleepFunc) Option {
	return func(o *options) { o.sleep = fn }
}

// Registry is an ordered list of strategies ending in the generic fallback.
type Registry struct {
	mu         sync.RWMutex
	strategies []Strategy
}

// NewRegistry returns a registry holding the built-in strategies, most specific first.
func NewRegistry(filler Filler, opts ...Option) *Registry {
	o := &options{settle: DefaultSettleTimeout, sleep: formfill.Sleep}
	for _, opt := range opts {
		opt(o)
	}
	return &Registry{strategies: defaultStrategies(filler, o)}
}

// Register adds s ahead of the generic fallback and behind every strategy already registered.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.strategies)
	if n > 0 && r.strategies[n-1].Name() == Generic {
		generic := r.strategies[n-1]
		r.strategies = append(r.strategies[:n-1], s, generic)
		return
	}
	r.strategies = append(r.strategies, s)
}

// Select returns the first strategy matching url.
func (r *Registry) Select(url string) Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.strategies {
		if s.Match(url) {
			return s
		}
	}
	// Unreachable while the generic strategy is registered.
	return r.strategies[len(r.strategies)-1]
}

// Strategies returns the registered strategies in priority order.
func (r *Registry) Strategies() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Strategy(nil), r.strategies...)
}

func matches(p Platform) func(string) bool {
	return func(url string) bool { return DetectPlatform(url) == p }
}

var (
	css  = browser.CSS
	text = browser.Text
)

func defaultStrategies(f Filler, o *options) []Strategy {
	base := func(name Platform, apply, submit []browser.Locator) selectorStrategy {
		s := selectorStrategy{
			name:   name,
			match:  matches(name),
			filler: f,
			apply:  apply,
			submit: submit,
			settle: o.settle,
			sleep:  o.sleep,
		}
		if name == Generic {
			s.match = nil
		}
		return s
	}

	linkedIn := &wizardStrategy{
		selectorStrategy: base(LinkedIn,
			[]browser.Locator{css("button.jobs-apply-button"), text("button", "Easy Apply")},
			[]browser.Locator{css(`button[aria-label="Submit application"]`), text("button", "Submit")},
		),
		next: []browser.Locator{
			css(`button[aria-label="Continue to next step"]`),
			text("button", "Next"),
			text("button", "Continue"),
		},
		maxSteps:  MaxWizardSteps,
		applyWait: 1500 * time.Millisecond,
		stepWait:  time.Second,
	}

	greenhouse := base(Greenhouse,
		[]browser.Locator{css(`a[href*="apply"]`), text("button", "Apply")},
		[]browser.Locator{css(`button[type="submit"]`), css(`input[type="submit"]`), text("button", "Submit")},
	)

	lever := base(Lever,
		[]browser.Locator{css(".posting-btn-submit"), css(`a[href*="apply"]`), text("button", "Apply")},
		[]browser.Locator{css(`button[type="submit"]`), css("button.postings-btn")},
	)

	workday := base(Workday,
		[]browser.Locator{css(`button[data-automation-id="jobApplyButton"]`), text("button", "Apply")},
		[]browser.Locator{css(`button[data-automation-id="bottom-navigation-next-button"]`)},
	)
	workday.extraWait = WorkdayExtraWait

	ashby := base(Ashby,
		[]browser.Locator{text("button", "Apply"), text("a", "Apply")},
		[]browser.Locator{css(`button[type="submit"]`)},
	)

	generic := base(Generic,
		[]browser.Locator{
			text("button", "Apply"),
			text("a", "Apply"),
			text("button", "Submit Application"),
			text("a", "Submit Application"),
			css(`[class*="apply"]`),
			css(`[id*="apply"]`),
		},
		[]browser.Locator{
			css(`button[type="submit"]`),
			css(`input[type="submit"]`),
			text("button", "Submit"),
			text("button", "Apply"),
			text("button", "Send"),
		},
	)

	return []Strategy{linkedIn, &greenhouse, &lever, &workday, &ashby, &generic}
}
