// Package autoapply drives job applications end to end: it owns the browser session,
// picks a platform strategy per job, detects blocking pages, fills and optionally submits.
package autoapply

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/atlas/autoapply/internal/browser"
	"github.com/atlas/autoapply/internal/formfill"
	"github.com/atlas/autoapply/internal/platform"
	"github.com/atlas/autoapply/internal/types"
)

// ScreenshotStore persists completion screenshots and returns where they were stored.
type ScreenshotStore interface {
	Save(ctx context.Context, name string, png []byte) (string, error)
}

// Observer receives one observation per application attempt.
type Observer interface {
	ObserveApply(platform string, status types.ApplyStatus, elapsed time.Duration, fieldsFilled int)
}

// Engine applies to jobs one page at a time over a shared browser session.
// Cookies and storage persist across the jobs of a session.
type Engine struct {
	cfg         Config
	launcher    browser.Launcher
	registry    *platform.Registry
	screenshots ScreenshotStore
	observer    Observer
	logger      *zap.Logger
	sleep       platform.SleepFunc
	now         func() time.Time

	// sem admits one page at a time.
	sem *semaphore.Weighted

	mu      sync.Mutex
	session browser.Session
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry replaces the default platform registry.
func WithRegistry(r *platform.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithScreenshotStore stores screenshots when Config.ScreenshotOnComplete is set.
func WithScreenshotStore(s ScreenshotStore) Option {
	return func(e *Engine) { e.screenshots = s }
}

// WithObserver reports every attempt to o.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSleep replaces the function used for the pause between batch jobs.
func WithSleep(fn platform.SleepFunc) Option {
	return func(e *Engine) { e.sleep = fn }
}

// New returns an engine. The browser is not launched until the first application.
func New(cfg Config, launcher browser.Launcher, opts ...Option) *Engine {
	if cfg.MaxJobDelay < cfg.MinJobDelay {
		cfg.MaxJobDelay = cfg.MinJobDelay
	}
	e := &Engine{
		cfg:      cfg,
		launcher: launcher,
		sleep:    formfill.Sleep,
		now:      time.Now,
		sem:      semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.registry == nil {
		e.registry = platform.NewRegistry(formfill.NewFiller(e.logger))
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// ensureSession launches the browser on first use.
func (e *Engine) ensureSession(ctx context.Context) (browser.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return e.session, nil
	}
	s, err := e.launcher.Launch(ctx, e.cfg.BrowserOptions())
	if err != nil {
		return nil, err
	}
	e.session = s
	return s, nil
}

// Close terminates the browser. It is safe to call repeatedly; a later
// application launches a new browser.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil
	}
	err := e.session.Close()
	e.session = nil
	return err
}

// ApplyToJob runs one application. It never returns an error: every failure,
// including a panic in the automation runtime, becomes a result with StatusError.
// The page opened for the job is always closed before returning.
func (e *Engine) ApplyToJob(ctx context.Context, jobURL string, p *types.UserProfile, answers types.FreeTextAnswers) *types.ApplyResult {
	start := time.Now()
	strategy := e.registry.Select(jobURL)
	result := &types.ApplyResult{
		JobURL:    jobURL,
		Platform:  string(strategy.Name()),
		Status:    types.StatusError,
		Timestamp: e.now(),
	}
	log := e.logger.With(zap.String("job_url", jobURL), zap.String("platform", result.Platform))

	if err := e.sem.Acquire(ctx, 1); err != nil {
		result.Error = err.Error()
		e.finish(log, result, start)
		return result
	}
	defer e.sem.Release(1)

	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Status = types.StatusError
				result.Error = fmt.Sprintf("panic: %v", r)
				log.Error("recovered from panic", zap.Any("panic", r), zap.Stack("stack"))
			}
		}()
		e.apply(ctx, log, strategy, jobURL, p, answers, result)
	}()

	e.finish(log, result, start)
	return result
}

func (e *Engine) apply(ctx context.Context, log *zap.Logger, strategy platform.Strategy, jobURL string, p *types.UserProfile, answers types.FreeTextAnswers, result *types.ApplyResult) {
	session, err := e.ensureSession(ctx)
	if err != nil {
		result.Error = (&StageError{Stage: "launch", Cause: err}).Error()
		return
	}
	page, err := session.NewPage(ctx)
	if err != nil {
		result.Error = (&StageError{Stage: "open page", Cause: err}).Error()
		return
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Warn("failed to close page", zap.Error(err))
		}
	}()

	if err := strategy.Navigate(ctx, page, jobURL); err != nil {
		result.Error = (&StageError{Stage: "navigate", Cause: err}).Error()
		return
	}

	blocked, err := detectBlocker(ctx, page)
	if err != nil {
		result.Error = (&StageError{Stage: "inspect page", Cause: err}).Error()
		return
	}
	if blocked != nil {
		result.Status = blocked.Status
		result.Error = blocked.Error()
		return
	}

	if err := strategy.FindApplyButton(ctx, page); err != nil {
		result.Error = (&StageError{Stage: "apply button", Cause: err}).Error()
		return
	}

	fill := strategy.FillForm(ctx, page, p, answers)
	result.FillResult = fill
	if !fill.Success {
		result.Error = ErrNoFieldsFilled.Error()
	} else {
		result.Status = types.StatusFilled
		if e.cfg.AutoSubmit {
			if err := strategy.Submit(ctx, page); err != nil {
				result.Status = types.StatusError
				result.Error = (&StageError{Stage: "submit", Cause: err}).Error()
			} else {
				result.Status = types.StatusSubmitted
			}
		}
	}

	if e.cfg.ScreenshotOnComplete {
		e.screenshot(ctx, log, page, result)
	}
}

// screenshot is best-effort and never changes the result status.
func (e *Engine) screenshot(ctx context.Context, log *zap.Logger, page browser.Page, result *types.ApplyResult) {
	if e.screenshots == nil {
		return
	}
	png, err := page.Screenshot(ctx)
	if err != nil {
		log.Warn("screenshot failed", zap.Error(err))
		return
	}
	name := fmt.Sprintf("%s-%s.png", result.Platform, uuid.NewString())
	location, err := e.screenshots.Save(ctx, name, png)
	if err != nil {
		log.Warn("failed to store screenshot", zap.Error(err))
		return
	}
	result.ScreenshotPath = location
}

func (e *Engine) finish(log *zap.Logger, result *types.ApplyResult, start time.Time) {
	elapsed := time.Since(start)
	filled := 0
	if result.FillResult != nil {
		filled = result.FillResult.FieldsFilled
	}
	if e.observer != nil {
		e.observer.ObserveApply(result.Platform, result.Status, elapsed, filled)
	}

	fields := []zap.Field{
		zap.String("status", string(result.Status)),
		zap.Int("fields_filled", filled),
		zap.Duration("elapsed", elapsed),
	}
	if result.Status == types.StatusError {
		log.Warn("application failed", append(fields, zap.String("error", result.Error))...)
		return
	}
	log.Info("application finished", fields...)
}
