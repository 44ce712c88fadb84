package recording

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/flamefold/flamefold/pkg/event"
)

// JSONLSource reads the native recording format: one JSON-encoded event
// per line, optionally gzip- or zstd-compressed as a whole.
type JSONLSource struct {
	rc      io.ReadCloser
	scanner *bufio.Scanner
	line    int
}

// NewJSONLSource opens a JSONL recording. Compression is applied to the
// stream before any line is read.
func NewJSONLSource(r io.Reader, compression Compression) (*JSONLSource, error) {
	rc, err := OpenReader(r, compression)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 1<<20), 1<<30)
	return &JSONLSource{rc: rc, scanner: scanner}, nil
}

// jsonlEvent adds the optional end_nanos wire field: recordings may
// carry an end time instead of a duration.
type jsonlEvent struct {
	event.Event
	EndNanos int64 `json:"end_nanos,omitempty"`
}

// Next returns the next event in the recording. Malformed lines are
// fatal; their position is part of the error.
func (s *JSONLSource) Next() (event.Event, error) {
	for s.scanner.Scan() {
		s.line++
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var we jsonlEvent
		if err := json.Unmarshal(line, &we); err != nil {
			return event.Event{}, fmt.Errorf("recording: line %d: %w", s.line, err)
		}
		e := we.Event
		if e.Type == "" {
			return event.Event{}, fmt.Errorf("recording: line %d: missing event type", s.line)
		}
		if e.DurationNanos == 0 && we.EndNanos > e.StartNanos {
			e.DurationNanos = we.EndNanos - e.StartNanos
		}
		return e, nil
	}
	if err := s.scanner.Err(); err != nil {
		return event.Event{}, fmt.Errorf("recording: %w", err)
	}
	return event.Event{}, io.EOF
}

// Close closes the decompressed stream.
func (s *JSONLSource) Close() error {
	return s.rc.Close()
}
