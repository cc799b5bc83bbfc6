package formfill

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pacer inserts human-like pauses while filling.
type Pacer interface {
	// Keystroke pauses between typed characters.
	Keystroke(ctx context.Context) error
	// BetweenFields pauses between two controls.
	BetweenFields(ctx context.Context) error
}

// RandomPacer draws each pause uniformly from its range.
type RandomPacer struct {
	KeyMin, KeyMax     time.Duration
	FieldMin, FieldMax time.Duration
}

// DefaultPacer types at roughly 30ms per key and waits 100-400ms between fields.
func DefaultPacer() RandomPacer {
	return RandomPacer{
		KeyMin:   20 * time.Millisecond,
		KeyMax:   45 * time.Millisecond,
		FieldMin: 100 * time.Millisecond,
		FieldMax: 400 * time.Millisecond,
	}
}

func (p RandomPacer) Keystroke(ctx context.Context) error {
	return Sleep(ctx, Jitter(p.KeyMin, p.KeyMax))
}

func (p RandomPacer) BetweenFields(ctx context.Context) error {
	return Sleep(ctx, Jitter(p.FieldMin, p.FieldMax))
}

// NoDelay never pauses. Used in tests.
type NoDelay struct{}

func (NoDelay) Keystroke(ctx context.Context) error     { return ctx.Err() }
func (NoDelay) BetweenFields(ctx context.Context) error { return ctx.Err() }

// Jitter returns a uniformly random duration in [lo, hi]. hi <= lo yields lo.
func Jitter(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo+1)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
