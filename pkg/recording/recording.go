// Package recording reads profiling events out of recorded inputs: the
// native JSONL format, pprof protobuf profiles, and perf script text.
package recording

import (
	"errors"
	"io"
	"sort"
	"time"

	"github.com/flamefold/flamefold/pkg/event"
)

// Source streams profiling events from a recording. Next returns io.EOF
// after the last event.
type Source interface {
	Next() (event.Event, error)
	Close() error
}

// TimeRange limits events to those intersecting [StartNanos, EndNanos].
// A zero bound is open.
type TimeRange struct {
	StartNanos int64
	EndNanos   int64
}

// IsZero reports whether the range is unbounded on both sides.
func (r TimeRange) IsZero() bool {
	return r.StartNanos == 0 && r.EndNanos == 0
}

// Contains reports whether the event's own [start, end] interval
// intersects the range.
func (r TimeRange) Contains(e event.Event) bool {
	if r.StartNanos != 0 && e.EndNanos() < r.StartNanos {
		return false
	}
	if r.EndNanos != 0 && e.StartNanos > r.EndNanos {
		return false
	}
	return true
}

// Filter narrows a source to one category inside a time range.
type Filter struct {
	src      Source
	category event.Category
	window   TimeRange
	seen     uint64
	kept     uint64
}

// NewFilter wraps src, keeping only events matching category whose time
// interval intersects window.
func NewFilter(src Source, category event.Category, window TimeRange) *Filter {
	return &Filter{src: src, category: category, window: window}
}

// Next returns the next matching event.
func (f *Filter) Next() (event.Event, error) {
	for {
		e, err := f.src.Next()
		if err != nil {
			return event.Event{}, err
		}
		f.seen++
		if !f.category.Matches(e.Type) {
			continue
		}
		if !f.window.Contains(e) {
			continue
		}
		f.kept++
		return e, nil
	}
}

// Close closes the underlying source.
func (f *Filter) Close() error {
	return f.src.Close()
}

// Seen returns how many events the underlying source produced.
func (f *Filter) Seen() uint64 { return f.seen }

// Kept returns how many events passed the filter.
func (f *Filter) Kept() uint64 { return f.kept }

// TypeCount is one event type's tally in a recording.
type TypeCount struct {
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
	Count    uint64 `json:"count"`
}

// Details summarizes what a recording contains.
type Details struct {
	Types      []TypeCount `json:"types"`
	EventCount uint64      `json:"event_count"`
	StartNanos int64       `json:"start_nanos"`
	EndNanos   int64       `json:"end_nanos"`
}

// Duration returns the time span the recording covers.
func (d Details) Duration() time.Duration {
	if d.EndNanos <= d.StartNanos {
		return 0
	}
	return time.Duration(d.EndNanos - d.StartNanos)
}

// Summarize drains src and tallies per-type event counts and the
// recording's time span. Types are reported in name order.
func Summarize(src Source) (Details, error) {
	var d Details
	counts := make(map[string]uint64)
	for {
		e, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Details{}, err
		}
		counts[e.Type]++
		d.EventCount++
		if e.StartNanos != 0 {
			if d.StartNanos == 0 || e.StartNanos < d.StartNanos {
				d.StartNanos = e.StartNanos
			}
			if e.EndNanos() > d.EndNanos {
				d.EndNanos = e.EndNanos()
			}
		}
	}

	d.Types = make([]TypeCount, 0, len(counts))
	for name, count := range counts {
		tc := TypeCount{Type: name, Count: count}
		if c, ok := event.CategoryOf(name); ok {
			tc.Category = string(c)
		}
		d.Types = append(d.Types, tc)
	}
	sort.Slice(d.Types, func(i, j int) bool { return d.Types[i].Type < d.Types[j].Type })
	return d, nil
}
