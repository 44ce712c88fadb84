package recording

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/flamefold/flamefold/pkg/event"
	"github.com/flamefold/flamefold/pkg/frame"
)

// perf script sample header: "comm 1234 cycles:".
var perfHeaderRe = regexp.MustCompile(`^(?P<comm>\S.+?)\s+(?P<period>\d+)\s+(?P<event>\S+):\s*$`)

// PerfScriptSource reads `perf script` text output. perf script carries
// only CPU samples, so every event is a cpu event weighing 1; stacks are
// leaf first as printed. Lines carry no parseable timestamps, so time
// filtering is not available for this source.
type PerfScriptSource struct {
	scanner *bufio.Scanner
	line    int
	stack   []frame.Frame
	inBody  bool
	done    bool
}

// NewPerfScriptSource wraps perf script output.
func NewPerfScriptSource(r io.Reader) *PerfScriptSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<20), 1<<30)
	return &PerfScriptSource{scanner: scanner}
}

// Next returns the next sample. A sample is one header line followed by
// frame lines, terminated by a blank line or end of input.
func (s *PerfScriptSource) Next() (event.Event, error) {
	if s.done {
		return event.Event{}, io.EOF
	}
	for s.scanner.Scan() {
		s.line++
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			if e, ok := s.flush(); ok {
				return e, nil
			}
			continue
		}
		if !s.inBody {
			if perfHeaderRe.FindStringSubmatch(line) == nil {
				return event.Event{}, fmt.Errorf("perf: line %d: malformed sample header %q", s.line, line)
			}
			s.inBody = true
			continue
		}
		f, err := parsePerfFrame(line)
		if err != nil {
			return event.Event{}, fmt.Errorf("perf: line %d: %w", s.line, err)
		}
		s.stack = append(s.stack, f)
	}
	if err := s.scanner.Err(); err != nil {
		return event.Event{}, fmt.Errorf("perf: %w", err)
	}
	s.done = true
	if e, ok := s.flush(); ok {
		return e, nil
	}
	return event.Event{}, io.EOF
}

// flush turns the accumulated sample into an event.
func (s *PerfScriptSource) flush() (event.Event, bool) {
	if !s.inBody {
		return event.Event{}, false
	}
	e := event.Event{
		Type:  string(event.CategoryCPU),
		Count: 1,
		Stack: s.stack,
	}
	s.stack = nil
	s.inBody = false
	return e, true
}

// parsePerfFrame extracts the symbol from a frame line:
// "ffffffff810a4f6a native_write_msr+0xa ([kernel.kallsyms])".
func parsePerfFrame(line string) (frame.Frame, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return frame.Frame{}, fmt.Errorf("malformed frame %q", line)
	}
	if _, err := strconv.ParseUint(fields[0], 16, 64); err != nil {
		return frame.Frame{}, fmt.Errorf("malformed frame address %q: %w", fields[0], err)
	}
	symbol := fields[1]
	// Drop the instruction offset.
	if idx := strings.Index(symbol, "+"); idx > 0 {
		symbol = symbol[:idx]
	}
	if symbol == "[unknown]" {
		symbol = ""
	}
	return frame.Frame{Function: symbol}, nil
}

// Close is a no-op; the caller owns the underlying reader.
func (s *PerfScriptSource) Close() error {
	return nil
}
