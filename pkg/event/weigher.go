package event

import (
	"fmt"
	"time"
)

// Weigher computes an event's flame graph weight. The weighing rule is
// resolved once, when the category is chosen, never per event.
type Weigher struct {
	kind WeightKind
}

// NewWeigher returns the weigher for the category.
func NewWeigher(c Category) (Weigher, error) {
	info, ok := categories[c]
	if !ok {
		return Weigher{}, fmt.Errorf("unknown event category %q", c)
	}
	return Weigher{kind: info.kind}, nil
}

// Kind returns the weigher's weighing rule.
func (w Weigher) Kind() WeightKind {
	return w.kind
}

// Weigh computes the event's weight: occurrence count for count
// categories, milliseconds for duration categories, KiB for size
// categories. Negative measured values are malformed input.
func (w Weigher) Weigh(e Event) (uint64, error) {
	switch w.kind {
	case WeightCount:
		if e.Count < 0 {
			return 0, fmt.Errorf("event %q: negative count %d", e.Type, e.Count)
		}
		if e.Count == 0 {
			return 1, nil
		}
		return uint64(e.Count), nil
	case WeightDuration:
		if e.DurationNanos < 0 {
			return 0, fmt.Errorf("event %q: negative duration %dns", e.Type, e.DurationNanos)
		}
		return uint64(e.DurationNanos / int64(time.Millisecond)), nil
	case WeightSize:
		if e.Bytes < 0 {
			return 0, fmt.Errorf("event %q: negative size %dB", e.Type, e.Bytes)
		}
		return uint64(e.Bytes / 1024), nil
	}
	return 0, fmt.Errorf("unknown weight kind %q", w.kind)
}
