package formfill

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atlas/autoapply/internal/browser"
	"github.com/atlas/autoapply/internal/fields"
	"github.com/atlas/autoapply/internal/resolve"
	"github.com/atlas/autoapply/internal/types"
)

// DefaultSettleTimeout bounds the wait for a page to settle before enumerating controls.
const DefaultSettleTimeout = 10 * time.Second

// CheckedValue is recorded for checkboxes that were ticked.
const CheckedValue = "checked"

// affirmatives are radio values treated as "yes".
var affirmatives = map[string]bool{"yes": true, "y": true, "true": true}

// Filler fills every recognizable control on the current page.
type Filler struct {
	Resolver      resolve.Resolver
	Pacer         Pacer
	SettleTimeout time.Duration
	Logger        *zap.Logger
}

// NewFiller returns a Filler with the default resolver chain and human pacing.
func NewFiller(logger *zap.Logger) *Filler {
	return &Filler{
		Resolver:      resolve.Default(),
		Pacer:         DefaultPacer(),
		SettleTimeout: DefaultSettleTimeout,
		Logger:        logger,
	}
}

func (f *Filler) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

func (f *Filler) pacer() Pacer {
	if f.Pacer == nil {
		return NoDelay{}
	}
	return f.Pacer
}

func (f *Filler) resolver() resolve.Resolver {
	if f.Resolver == nil {
		return resolve.Default()
	}
	return f.Resolver
}

// Fill classifies and fills the controls of page. Per-control failures are recorded
// in the result's Errors and never stop the pass.
func (f *Filler) Fill(ctx context.Context, page browser.Page, p *types.UserProfile, answers types.FreeTextAnswers) *types.FillResult {
	result := types.NewFillResult()
	log := f.logger()

	timeout := f.SettleTimeout
	if timeout <= 0 {
		timeout = DefaultSettleTimeout
	}
	if err := page.WaitSettled(ctx, timeout); err != nil {
		log.Debug("page did not settle, filling anyway", zap.Error(err))
	}

	html, err := page.Snapshot(ctx)
	if err != nil {
		result.AddError(fmt.Sprintf("failed to read form: %v", err))
		return result
	}
	controls, err := Enumerate(page, html, f.pacer())
	if err != nil {
		result.AddError(err.Error())
		return result
	}

	result.FieldsTotal = len(controls)
	for i, c := range controls {
		if i > 0 {
			if err := f.pacer().BetweenFields(ctx); err != nil {
				result.AddError(fmt.Sprintf("fill interrupted: %v", err))
				break
			}
		}
		f.FillControl(ctx, c, p, answers, result)
	}
	result.Success = result.FieldsFilled > 0

	log.Info("form filled",
		zap.Int("fields_filled", result.FieldsFilled),
		zap.Int("fields_total", result.FieldsTotal),
		zap.Int("errors", len(result.Errors)),
	)
	return result
}

// FillControl classifies, resolves and applies a single control, recording the outcome in result.
func (f *Filler) FillControl(ctx context.Context, c FormControl, p *types.UserProfile, answers types.FreeTextAnswers, result *types.FillResult) {
	cat, ok := fields.Classify(c.Attr("name"), c.Attr("id"), c.Label(), c.Attr("placeholder"), c.Attr("aria-label"))
	if !ok {
		return
	}
	value, ok := f.resolver().Resolve(cat, p, answers)
	if !ok {
		return
	}

	filled, recorded, err := apply(ctx, c, cat, value)
	if err != nil {
		result.AddError(fmt.Sprintf("%s: %v", cat, err))
		f.logger().Debug("control not filled", zap.String("field", string(cat)), zap.Error(err))
		return
	}
	if filled {
		result.Record(string(cat), recorded)
	}
}

// apply sets value on c according to its kind. It reports whether the control was
// filled and the value to record for it.
func apply(ctx context.Context, c FormControl, cat fields.Category, value string) (bool, string, error) {
	switch c.Kind() {
	case KindText, KindTextarea:
		if strings.TrimSpace(value) == "" {
			return false, "", nil
		}
		if err := c.SetText(ctx, value); err != nil {
			return false, "", err
		}
		return true, value, nil

	case KindSelect:
		opt, ok := MatchOption(c.Options(), value)
		if !ok {
			return false, "", nil
		}
		if err := c.SelectOption(ctx, opt); err != nil {
			return false, "", err
		}
		return true, opt.Text, nil

	case KindCheckbox:
		if cat != fields.WorkAuthorization || !affirmative(value) {
			return false, "", nil
		}
		if err := c.SetChecked(ctx); err != nil {
			return false, "", err
		}
		return true, CheckedValue, nil

	case KindRadio:
		rv := strings.TrimSpace(c.Attr("value"))
		if !strings.EqualFold(rv, strings.TrimSpace(value)) && !(affirmative(rv) && affirmative(value)) {
			return false, "", nil
		}
		if err := c.SetChecked(ctx); err != nil {
			return false, "", err
		}
		return true, value, nil

	case KindFile:
		return false, "", fmt.Errorf("manual upload required")
	}
	return false, "", fmt.Errorf("unsupported control kind %q", c.Kind())
}

func affirmative(v string) bool {
	return affirmatives[strings.ToLower(strings.TrimSpace(v))]
}

// MatchOption returns the first option whose text or value contains value, or is
// contained in it, ignoring case. Options with neither text nor value never match.
func MatchOption(opts []Option, value string) (Option, bool) {
	want := strings.ToLower(strings.TrimSpace(value))
	if want == "" {
		return Option{}, false
	}
	for _, o := range opts {
		for _, candidate := range []string{o.Text, o.Value} {
			c := strings.ToLower(strings.TrimSpace(candidate))
			if c == "" {
				continue
			}
			if strings.Contains(c, want) || strings.Contains(want, c) {
				return o, true
			}
		}
	}
	return Option{}, false
}
