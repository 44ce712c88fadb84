// Package event defines profiling event categories and their weighing
// rules.
package event

import (
	"fmt"
	"strings"

	"github.com/flamefold/flamefold/pkg/frame"
)

// Category identifies a class of profiling events that aggregate into
// one flame graph.
type Category string

const (
	CategoryCPU          Category = "cpu"
	CategoryAllocTLAB    Category = "allocation-tlab"
	CategoryAllocOutside Category = "allocation-outside-tlab"
	CategoryExceptions   Category = "exceptions"
	CategoryMonitor      Category = "monitor-blocked"
	CategoryIO           Category = "io"
)

// WeightKind selects how events of a category are weighed.
type WeightKind string

const (
	WeightCount    WeightKind = "count"
	WeightDuration WeightKind = "duration"
	WeightSize     WeightKind = "size"
)

// Event is one profiling event. Type is the recording's event name,
// either a canonical category name or one of its aliases. The stack is
// leaf first, the way profilers deliver it.
type Event struct {
	Type          string        `json:"type"`
	StartNanos    int64         `json:"start_nanos,omitempty"`
	DurationNanos int64         `json:"duration_nanos,omitempty"`
	Bytes         int64         `json:"bytes,omitempty"`
	Count         int64         `json:"count,omitempty"`
	Stack         []frame.Frame `json:"stack,omitempty"`
}

// EndNanos returns the event's end time.
func (e Event) EndNanos() int64 {
	return e.StartNanos + e.DurationNanos
}

// categoryInfo ties a category to its weighing rule, the unit weights
// are reported in, and the recording event names it matches.
type categoryInfo struct {
	kind    WeightKind
	unit    string
	aliases []string
}

var categoryOrder = []Category{
	CategoryCPU,
	CategoryAllocTLAB,
	CategoryAllocOutside,
	CategoryExceptions,
	CategoryMonitor,
	CategoryIO,
}

var categories = map[Category]categoryInfo{
	CategoryCPU: {
		kind:    WeightCount,
		unit:    "samples",
		aliases: []string{"jdk.ExecutionSample", "Method Profiling Sample"},
	},
	CategoryAllocTLAB: {
		kind:    WeightSize,
		unit:    "KiB",
		aliases: []string{"jdk.ObjectAllocationInNewTLAB", "Allocation in new TLAB"},
	},
	CategoryAllocOutside: {
		kind:    WeightSize,
		unit:    "KiB",
		aliases: []string{"jdk.ObjectAllocationOutsideTLAB", "Allocation outside TLAB"},
	},
	CategoryExceptions: {
		kind:    WeightCount,
		unit:    "exceptions",
		aliases: []string{"jdk.JavaExceptionThrow", "Java Exception"},
	},
	CategoryMonitor: {
		kind:    WeightDuration,
		unit:    "ms",
		aliases: []string{"jdk.JavaMonitorEnter", "Java Monitor Blocked"},
	},
	CategoryIO: {
		kind: WeightDuration,
		unit: "ms",
		aliases: []string{
			"jdk.FileRead", "jdk.FileWrite",
			"jdk.SocketRead", "jdk.SocketWrite",
		},
	},
}

// Categories returns all categories in their reference order.
func Categories() []Category {
	return append([]Category(nil), categoryOrder...)
}

// Kind returns the category's weighing rule.
func (c Category) Kind() WeightKind {
	return categories[c].kind
}

// Unit returns the unit the category's weights are measured in.
func (c Category) Unit() string {
	return categories[c].unit
}

// Aliases returns the recording event names the category matches in
// addition to its canonical name.
func (c Category) Aliases() []string {
	return append([]string(nil), categories[c].aliases...)
}

// Matches reports whether a recording event name belongs to the
// category, either as the canonical name or as one of its aliases.
func (c Category) Matches(name string) bool {
	if string(c) == name {
		return true
	}
	for _, a := range categories[c].aliases {
		if a == name {
			return true
		}
	}
	return false
}

// CategoryOf resolves a recording event name to its category.
func CategoryOf(name string) (Category, bool) {
	for _, c := range categoryOrder {
		if c.Matches(name) {
			return c, true
		}
	}
	return "", false
}

// ParseCategory resolves a category name or recording alias. Unknown
// names are rejected up front so a misconfiguration never surfaces
// mid-stream.
func ParseCategory(name string) (Category, error) {
	if c, ok := CategoryOf(name); ok {
		return c, nil
	}
	known := make([]string, len(categoryOrder))
	for i, c := range categoryOrder {
		known[i] = string(c)
	}
	return "", fmt.Errorf("unknown event category %q (known: %s)", name, strings.Join(known, ", "))
}
