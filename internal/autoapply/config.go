package autoapply

import (
	"time"

	"github.com/atlas/autoapply/internal/browser"
)

// Config controls how the engine drives applications.
type Config struct {
	Headless bool
	// Timeout bounds each browser interaction.
	Timeout time.Duration
	// AutoSubmit submits filled forms. Off by default: a filled form awaits human review.
	AutoSubmit           bool
	ScreenshotOnComplete bool
	// MinJobDelay and MaxJobDelay bound the random pause between batch jobs.
	MinJobDelay    time.Duration
	MaxJobDelay    time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	// ChromePath overrides the browser binary.
	ChromePath string
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	opts := browser.DefaultOptions()
	return Config{
		Headless:       true,
		Timeout:        opts.ActionTimeout,
		MinJobDelay:    30 * time.Second,
		MaxJobDelay:    90 * time.Second,
		UserAgent:      opts.UserAgent,
		ViewportWidth:  opts.ViewportWidth,
		ViewportHeight: opts.ViewportHeight,
	}
}

// BrowserOptions converts the config into launch options, filling unset values.
func (c Config) BrowserOptions() browser.Options {
	opts := browser.DefaultOptions()
	opts.Headless = c.Headless
	if c.Timeout > 0 {
		opts.ActionTimeout = c.Timeout
	}
	if c.UserAgent != "" {
		opts.UserAgent = c.UserAgent
	}
	if c.ViewportWidth > 0 && c.ViewportHeight > 0 {
		opts.ViewportWidth = c.ViewportWidth
		opts.ViewportHeight = c.ViewportHeight
	}
	opts.ExecPath = c.ChromePath
	return opts
}
