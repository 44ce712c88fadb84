package recording

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/pprof/profile"

	"github.com/flamefold/flamefold/pkg/event"
	"github.com/flamefold/flamefold/pkg/frame"
)

// PprofSource replays the samples of a pprof profile as events of one
// category. pprof samples carry no timestamps, so time filtering is not
// available for this source.
type PprofSource struct {
	prof     *profile.Profile
	category event.Category
	valueIdx int
	idx      int
}

// NewPprofSource parses a pprof profile, gzipped or raw, and selects the
// sample value column matching the category.
func NewPprofSource(r io.Reader, category event.Category) (*PprofSource, error) {
	prof, err := profile.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("recording: pprof: %w", err)
	}
	return NewPprofProfileSource(prof, category)
}

// NewPprofProfileSource wraps an already-parsed profile.
func NewPprofProfileSource(prof *profile.Profile, category event.Category) (*PprofSource, error) {
	idx, err := pprofValueIndex(prof, category)
	if err != nil {
		return nil, err
	}
	return &PprofSource{prof: prof, category: category, valueIdx: idx}, nil
}

// pprofValueIndex maps a category onto the profile's sample value
// columns. Categories with no pprof equivalent are rejected here, before
// any sample is read.
func pprofValueIndex(prof *profile.Profile, category event.Category) (int, error) {
	var want []string
	switch category {
	case event.CategoryCPU:
		want = []string{"samples", "cpu"}
	case event.CategoryAllocTLAB, event.CategoryAllocOutside:
		want = []string{"alloc_space", "inuse_space"}
	case event.CategoryMonitor:
		want = []string{"delay"}
	default:
		return 0, fmt.Errorf("recording: pprof profiles carry no %s events", category)
	}

	for _, typ := range want {
		for i, st := range prof.SampleType {
			if st.Type == typ {
				return i, nil
			}
		}
	}

	have := make([]string, len(prof.SampleType))
	for i, st := range prof.SampleType {
		have[i] = st.Type
	}
	return 0, fmt.Errorf("recording: no %s sample type in profile (have: %s)",
		category, strings.Join(have, ", "))
}

// Next returns the next sample as an event.
func (s *PprofSource) Next() (event.Event, error) {
	if s.idx >= len(s.prof.Sample) {
		return event.Event{}, io.EOF
	}
	sample := s.prof.Sample[s.idx]
	s.idx++

	e := event.Event{
		Type:  string(s.category),
		Stack: pprofStack(sample),
	}
	value := sample.Value[s.valueIdx]
	switch s.category.Kind() {
	case event.WeightSize:
		e.Bytes = value
	case event.WeightDuration:
		e.DurationNanos = value
	default:
		e.Count = value
	}
	return e, nil
}

// pprofStack expands a sample's locations into leaf-first frames.
// Within a location, line 0 is the innermost inlined call; every line
// but the outermost is marked inlined.
func pprofStack(sample *profile.Sample) []frame.Frame {
	stack := make([]frame.Frame, 0, len(sample.Location))
	for _, loc := range sample.Location {
		for j, line := range loc.Line {
			name := ""
			if line.Function != nil {
				name = line.Function.Name
				if name == "" {
					name = line.Function.SystemName
				}
			}
			if name != "" && j != len(loc.Line)-1 {
				name += " (inlined)"
			}
			stack = append(stack, frame.Frame{
				Function: name,
				Line:     int(line.Line),
			})
		}

		if len(loc.Line) == 0 {
			name := fmt.Sprintf("0x%x", loc.Address)
			if loc.Mapping != nil {
				name = fmt.Sprintf("0x%x @%s", loc.Address, loc.Mapping.File)
			}
			stack = append(stack, frame.Frame{Function: name})
		}
	}
	return stack
}

// Close is a no-op; the profile was fully parsed up front.
func (s *PprofSource) Close() error {
	return nil
}
